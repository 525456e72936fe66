package cmd

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/go-drift/vui/internal/todo"
	"github.com/go-drift/vui/pkg/hotreload"
	"github.com/go-drift/vui/pkg/loop"
	"github.com/go-drift/vui/pkg/platform"
	"github.com/go-drift/vui/pkg/reconcile"
	"github.com/go-drift/vui/pkg/term"
	"github.com/go-drift/vui/pkg/widgets"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Run the todo app in the terminal",
		Long: `Run the todo app in this terminal with a hot-reload server.

While the app is in the foreground it accepts trees from "vui push" on
the configured listen address. Logs go to --log-file, since the terminal
belongs to the app.

Keys:
  tab, shift+tab   Move focus
  enter            Press the focused button
  pgup, pgdn       Scroll the list
  esc, ctrl+c      Quit

Flags:
  --listen ADDR     Hot reload listen address (default from vui.yaml or :8080)
  --path PATH       Hot reload endpoint (default /reload)
  --no-reload       Do not start the hot reload server
  --log-file FILE   Append logs to FILE
  --item TEXT       Seed a todo item (repeatable)
  --text TEXT       Seed the text field`,
		Usage: "vui run [flags]",
		Run:   runApp,
	})
}

type seedFlags struct {
	items []string
	text  string
}

func addSeedFlags(fs *pflag.FlagSet) *seedFlags {
	s := &seedFlags{}
	fs.StringArrayVar(&s.items, "item", nil, "todo item (repeatable)")
	fs.StringVar(&s.text, "text", "", "text field contents")
	return s
}

func (s *seedFlags) model() todo.Model {
	return todo.Model{Todos: slices.Clone(s.items), Text: s.text}
}

func runApp(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	listen := fs.String("listen", cfg.Listen, "hot reload listen address")
	path := fs.String("path", cfg.Path, "hot reload endpoint")
	noReload := fs.Bool("no-reload", cfg.ReloadDisabled, "do not start the hot reload server")
	logFile := fs.String("log-file", cfg.LogFile, "append logs to this file")
	seed := addSeedFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	out, err := openLogFile(*logFile)
	if err != nil {
		return err
	}
	defer out.Close()
	logger := newLogger(cfg, out)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := term.NewHost()
	root := host.NewRoot()
	session := reconcile.NewSession(reconcile.New(host, logger), root)
	app := loop.New[todo.Model, todo.Msg](todo.App{Initial: seed.model()}, session, logger)

	lc := platform.NewLifecycle()
	program := term.NewProgram(term.NewModel(root), lc, tea.WithAltScreen())

	var wg sync.WaitGroup
	if !*noReload {
		reloadCfg := hotreload.Config{
			Address:    *listen,
			Path:       *path,
			Registry:   widgets.Registry(),
			Target:     app,
			MaxPayload: cfg.MaxPayload,
			Timeout:    cfg.Timeout,
			Logger:     logger,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := hotreload.Follow(ctx, lc, reloadCfg, func(s *hotreload.Server) {
				logger.Info("accepting trees", "address", s.Addr().String(), "path", *path)
			})
			if err != nil {
				logger.Error("hot reload unavailable", "error", err)
			}
		}()
	}

	logger.Info("starting", "items", len(seed.items))
	err = program.Run(ctx, app.Start)
	stop()
	wg.Wait()
	return err
}
