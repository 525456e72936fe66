package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

func init() {
	RegisterCommand(&Command{
		Name:  "health",
		Short: "Check that a running app accepts trees",
		Long: `Query a running app's hot reload server and print its vocabulary.

Flags:
  --target URL   App base URL (default from vui.yaml or http://localhost:8080)`,
		Usage: "vui health [--target URL]",
		Run:   runHealth,
	})
}

func runHealth(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fs := pflag.NewFlagSet("health", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	target := fs.String("target", cfg.Target, "app base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h, err := newClient(cfg, *target).Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s (vocabulary %s)\n", h.Status, h.Vocabulary)
	return nil
}
