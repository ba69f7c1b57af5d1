package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "widgetgen",
		Usage:                 "Generate chat widget iframes outside the API server",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewGenerateCommand(),
			NewIdentifierCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
