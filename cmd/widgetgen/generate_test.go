package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kendall-kelly/chatwidget-api/config"
	"github.com/kendall-kelly/chatwidget-api/generator"
	"github.com/kendall-kelly/chatwidget-api/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "github.com/urfave/cli/v3"
)

const orderJSON = `{
  "order_number": "CLI-7",
  "chatbot_config": {"headerTitle": "Shop Help", "primaryColor": "#00ff00"},
  "company_info": {"name": "Shop"}
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		IframeOutputDir:    t.TempDir(),
		IframePublicPrefix: "/iframes",
		ScratchDir:         t.TempDir(),
		StyleCompiler:      "cat",
		ScriptCompiler:     "cat",
		BuildTimeout:       10 * time.Second,
		ArtifactStore:      config.StoreLocal,
	}
}

func TestGenerateWritesArtifacts(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	err := generate(context.Background(), cfg, logger.NewNoOpLogger(), strings.NewReader(orderJSON), &out)
	require.NoError(t, err)

	id := generator.NewIdentifier("CLI-7")
	assert.Equal(t, "/iframes/"+id+".html\n", out.String())

	page, err := os.ReadFile(filepath.Join(cfg.IframeOutputDir, id+".html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Shop Help")
	for _, ext := range []string{".js", ".css"} {
		assert.FileExists(t, filepath.Join(cfg.IframeOutputDir, id+ext))
	}
}

func TestGenerateRejectsMalformedOrder(t *testing.T) {
	var out bytes.Buffer
	err := generate(context.Background(), testConfig(t), logger.NewNoOpLogger(), strings.NewReader("{"), &out)
	assert.ErrorContains(t, err, "failed to decode order")
	assert.Empty(t, out.String())
}

func TestGenerateReportsBuildFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.ScriptCompiler = "false"
	var out bytes.Buffer

	err := generate(context.Background(), cfg, logger.NewNoOpLogger(), strings.NewReader(orderJSON), &out)
	assert.Equal(t, generator.CodeBuildToolFailure, generator.CodeOf(err), "got %v", err)
	entries, _ := os.ReadDir(cfg.IframeOutputDir)
	assert.Empty(t, entries)
}

func newTestCLI(out *bytes.Buffer) *cli.Command {
	return &cli.Command{
		Name:     "widgetgen",
		Writer:   out,
		Commands: []*cli.Command{NewIdentifierCommand()},
	}
}

func TestIdentifierCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newTestCLI(&out).Run(context.Background(), []string{"widgetgen", "identifier", "ORD-1"}))
	assert.Equal(t, generator.NewIdentifier("ORD-1")+"\n", out.String())
}

func TestIdentifierCommandNeedsOrderNumber(t *testing.T) {
	var out bytes.Buffer
	err := newTestCLI(&out).Run(context.Background(), []string{"widgetgen", "identifier"})
	assert.ErrorContains(t, err, "exactly one order number")
}

func TestIdentifierCommandRejectsBlankOrderNumber(t *testing.T) {
	for _, arg := range []string{"", "   ", "\t"} {
		var out bytes.Buffer
		err := newTestCLI(&out).Run(context.Background(), []string{"widgetgen", "identifier", arg})
		assert.ErrorContains(t, err, "order number is required", "arg %q", arg)
		assert.Empty(t, out.String())
	}
}
