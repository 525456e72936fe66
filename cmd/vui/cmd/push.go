package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/go-drift/vui/cmd/vui/internal/config"
	"github.com/go-drift/vui/internal/todo"
	"github.com/go-drift/vui/pkg/hotreload"
	"github.com/go-drift/vui/pkg/widgets"
	"github.com/go-drift/vui/pkg/wire"
)

func init() {
	RegisterCommand(&Command{
		Name:  "push",
		Short: "Push a todo tree to a running app",
		Long: `Build the todo view for the given items and push it to a running app.

The app swaps its live widgets for the new tree without restarting. Its
own model is untouched, so the next local interaction renders from the
app's state again. Callbacks are not shipped; the app keeps its own.

Flags:
  --target URL         App base URL (default from vui.yaml or http://localhost:8080)
  --path PATH          Reload endpoint (default /reload)
  --compression NAME   none, zstd or lz4
  --vocabulary VER     Override the vocabulary version sent
  --file FILE          Push an encoded payload file instead of building one
  --timeout DUR        Give up after DUR (default 30s)
  --item TEXT          Todo item (repeatable)
  --text TEXT          Text field contents`,
		Usage: "vui push [flags]",
		Run:   runPush,
	})
}

func runPush(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fs := pflag.NewFlagSet("push", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	target := fs.String("target", cfg.Target, "app base URL")
	path := fs.String("path", cfg.Path, "reload endpoint")
	compression := fs.String("compression", cfg.Compression.String(), "none, zstd or lz4")
	vocabulary := fs.String("vocabulary", widgets.VocabularyVersion, "vocabulary version")
	file := fs.String("file", "", "encoded payload file")
	timeout := fs.Duration("timeout", 30*time.Second, "overall deadline")
	seed := addSeedFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := parseCompression(*compression)
	if err != nil {
		return err
	}
	client := &hotreload.Client{
		BaseURL:     *target,
		Path:        *path,
		Vocabulary:  *vocabulary,
		Compression: c,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var res hotreload.Result
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("reading payload: %w", err)
		}
		res, err = client.PushPayload(ctx, data)
		if err != nil {
			return err
		}
	} else {
		tree, err := todo.Build(seed.model())
		if err != nil {
			return err
		}
		res, err = client.Push(ctx, tree)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "%s: created=%d destroyed=%d applied=%d skipped=%d\n",
		res.Status, res.Created, res.Destroyed, res.Applied, res.Skipped)
	return nil
}

func parseCompression(name string) (wire.Compression, error) {
	c, err := wire.ParseCompression(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return 0, fmt.Errorf("--compression: %w", err)
	}
	return c, nil
}

// newClient returns a client for the app at target.
func newClient(cfg *config.Resolved, target string) *hotreload.Client {
	return &hotreload.Client{BaseURL: target, Path: cfg.Path}
}
