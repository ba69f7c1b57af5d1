package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kendall-kelly/chatwidget-api/config"
	"github.com/kendall-kelly/chatwidget-api/generator"
	"github.com/kendall-kelly/chatwidget-api/logger"
	"github.com/kendall-kelly/chatwidget-api/models"
	"github.com/kendall-kelly/chatwidget-api/services"
	cli "github.com/urfave/cli/v3"
)

func NewGenerateCommand() *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"g"},
		Usage:   "Build the widget for an order read from a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "order",
				Aliases:  []string{"o"},
				Usage:    "Path to the order JSON, or - for stdin",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output directory for the local artifact store",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Artifact store (local, s3)",
			},
			&cli.StringFlag{
				Name:  "templates",
				Usage: "Directory holding widget.html, widget.js and widget.css",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Build step timeout",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if out := command.String("out"); out != "" {
				cfg.IframeOutputDir = out
			}
			if store := command.String("store"); store != "" {
				cfg.ArtifactStore = store
			}
			if dir := command.String("templates"); dir != "" {
				cfg.TemplateDir = dir
			}
			if timeout := command.Duration("timeout"); timeout > 0 {
				cfg.BuildTimeout = timeout
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logger.NewStructured(command.String("log-level"), "console")
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer log.Sync()

			in, err := openOrder(command.String("order"))
			if err != nil {
				return err
			}
			defer in.Close()

			return generate(ctx, cfg, log, in, command.Root().Writer)
		},
	}
}

func NewIdentifierCommand() *cli.Command {
	return &cli.Command{
		Name:      "identifier",
		Aliases:   []string{"id"},
		Usage:     "Print the artifact identifier of an order number",
		ArgsUsage: "<order-number>",
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.NArg() != 1 {
				return fmt.Errorf("expected exactly one order number")
			}
			orderNumber := command.Args().First()
			if strings.TrimSpace(orderNumber) == "" {
				return fmt.Errorf("order number is required")
			}
			fmt.Fprintln(command.Root().Writer, generator.NewIdentifier(orderNumber))
			return nil
		},
	}
}

func openOrder(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open order: %w", err)
	}
	return f, nil
}

// generate decodes one order and writes its public path to out.
func generate(ctx context.Context, cfg *config.Config, log logger.Logger, in io.Reader, out io.Writer) error {
	var order models.Order
	if err := json.NewDecoder(in).Decode(&order); err != nil {
		return fmt.Errorf("failed to decode order: %w", err)
	}

	pipeline, err := services.NewPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}

	publicPath, err := pipeline.GenerateIframe(ctx, order)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, publicPath)
	return err
}
