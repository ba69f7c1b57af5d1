package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	appConfig "github.com/kendall-kelly/chatwidget-api/config"
	"github.com/kendall-kelly/chatwidget-api/generator"
	"github.com/kendall-kelly/chatwidget-api/logger"
	"github.com/kendall-kelly/chatwidget-api/metrics"
)

// NewPipeline assembles a generator.Pipeline from configuration. The S3
// store uses the instance installed with SetS3Service when there is one.
func NewPipeline(ctx context.Context, cfg *appConfig.Config, log logger.Logger) (*generator.Pipeline, error) {
	var templates fs.FS = generator.DefaultTemplates()
	if cfg.TemplateDir != "" {
		templates = os.DirFS(cfg.TemplateDir)
	}

	style, err := generator.ParseCompiler("style", cfg.StyleCompiler, ".scss")
	if err != nil {
		return nil, err
	}
	script, err := generator.ParseCompiler("script", cfg.ScriptCompiler, ".jsx")
	if err != nil {
		return nil, err
	}

	var store generator.ArtifactStore
	switch cfg.ArtifactStore {
	case appConfig.StoreS3:
		s3 := GetS3Service()
		if s3 == nil {
			if s3, err = InitS3Service(ctx); err != nil {
				return nil, err
			}
		}
		store = NewS3ArtifactStore(s3, cfg.IframePublicPrefix, log)
	case appConfig.StoreLocal:
		store = generator.NewFileStore(cfg.IframeOutputDir)
	default:
		return nil, fmt.Errorf("unknown artifact store %q", cfg.ArtifactStore)
	}

	return &generator.Pipeline{
		Templates: generator.NewTemplateLoader(templates),
		Builder: &generator.Builder{
			Style:      style,
			Script:     script,
			ScratchDir: cfg.ScratchDir,
			Timeout:    cfg.BuildTimeout,
			Observe:    metrics.ObserveBuildTool,
		},
		Store:        store,
		PublicPrefix: cfg.IframePublicPrefix,
		APIURL:       cfg.ChatbotAPIURL,
		Logger:       log,
	}, nil
}
