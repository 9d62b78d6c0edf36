package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Jumpaku/go-drivetree"
	"github.com/Jumpaku/go-drivetree/auth"
	"github.com/Jumpaku/go-drivetree/config"
	"github.com/Jumpaku/go-drivetree/errors"
	"github.com/Jumpaku/go-drivetree/gdrive"
	"github.com/Jumpaku/go-drivetree/logging"
	"github.com/Jumpaku/go-drivetree/metrics"
	"github.com/Jumpaku/go-drivetree/prompt"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/term"
	"google.golang.org/api/option"
)

// application holds the state shared by the commands of one process, including every line of a shell.
type application struct {
	tree    *drivetree.DriveTree
	sess    *drivetree.Session
	term    *prompt.Terminal
	out     io.Writer
	logger  *zap.Logger
	level   zap.AtomicLevel
	tty     bool
	inShell bool
	metrics *http.Server
}

func newApplication(in io.Reader, out io.Writer) *application {
	return &application{
		term:   prompt.NewTerminal(in, out),
		out:    out,
		logger: logging.Nop(),
		level:  zap.NewAtomicLevel(),
	}
}

// init connects to Drive once. Later calls do nothing.
func (a *application) init(ctx context.Context, configPath string, assumeYes bool) error {
	if a.tree != nil {
		return nil
	}

	cfg := config.NewDefaultConfig()
	if err := config.LoadOptional(configPath, cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, level, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.logger, a.level = logger, level

	client, err := auth.NewClient(ctx, cfg.Auth, a.consent)
	if err != nil {
		return fmt.Errorf("failed to authorize: %w", err)
	}
	remote, err := gdrive.NewWithOptions(ctx, option.WithHTTPClient(client))
	if err != nil {
		return err
	}

	opts := []drivetree.Option{drivetree.WithLogger(logger)}
	var prompter drivetree.Prompter = a.term
	if assumeYes {
		prompter = prompt.AssumeYes(prompter)
	}
	opts = append(opts, drivetree.WithPrompter(prompter))
	if cfg.Metrics.Enabled() {
		reg := prometheus.NewRegistry()
		opts = append(opts, drivetree.WithMetrics(metrics.New(reg)))
		a.serveMetrics(cfg.Metrics.Listen, reg)
	}

	a.attach(drivetree.New(remote, osfs.New("/"), opts...), drivetree.NewSession(cfg.Local.BaseDir))
	a.tty = isTerminal(os.Stdin) && isTerminal(os.Stdout)
	return nil
}

// attach sets the tree and session the commands work on.
func (a *application) attach(tree *drivetree.DriveTree, sess *drivetree.Session) {
	a.tree, a.sess = tree, sess
}

func (a *application) consent(ctx context.Context, url string) (string, error) {
	fmt.Fprintf(a.out, "Open the following URL in a browser and authorize drivetree:\n\n  %s\n\n", url)
	return a.term.ReadLine(ctx, "Authorization code: ")
}

func (a *application) serveMetrics(listen string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	a.metrics = &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	a.logger.Info("serving metrics", zap.String("listen", listen))
}

func (a *application) close(ctx context.Context) {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = a.metrics.Shutdown(ctx)
	}
	_ = a.logger.Sync()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
