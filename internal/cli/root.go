// Package cli implements the socialmap command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kevinxuez/social-map/internal/apiclient"
	"github.com/kevinxuez/social-map/internal/config"
	"github.com/kevinxuez/social-map/internal/editor"
	"github.com/kevinxuez/social-map/internal/telemetry"
	"github.com/kevinxuez/social-map/internal/ui"
	"github.com/kevinxuez/social-map/internal/viewmodel"
)

var version = "0.3.0"

// app is the state shared by every command of one invocation.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	apiFlag   string
	tokenFlag string
	verbose   bool

	client *apiclient.Client
	events *telemetry.Sender
}

func NewRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "socialmap",
		Short: "socialmap: a map of the people you know",
		Long: ui.Brand.Sprint("socialmap") + ": keep track of people, groups and how they connect\n" +
			ui.Subtle.Sprint("Talks to the socialmap API; see `socialmap config show` for the endpoint in use"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetVersionTemplate("socialmap {{ .Version }}\n")
	root.PersistentFlags().StringVar(&a.apiFlag, "api", "", "API base URL (overrides SOCIALMAP_API and config)")
	root.PersistentFlags().StringVar(&a.tokenFlag, "token", "", "session token (overrides config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests and background work")

	root.AddCommand(
		graphCmd(a),
		entityCmd(a),
		groupCmd(a),
		edgeCmd(a),
		positionsCmd(a),
		exportCmd(a),
		importCmd(a),
		contactsCmd(a),
		whoamiCmd(a),
		configCmd(a),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		ui.Bad.Fprintf(os.Stderr, "socialmap: %s\n", describeError(err))
		stop()
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	level := zerolog.WarnLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(level).
		With().
		Timestamp().
		Str("service", "socialmap").
		Logger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) apiBase() string {
	if a.apiFlag != "" {
		return a.apiFlag
	}
	if v := strings.TrimSpace(os.Getenv("SOCIALMAP_API")); v != "" {
		return v
	}
	return a.cfg.APIBase
}

func (a *app) api() *apiclient.Client {
	if a.client != nil {
		return a.client
	}
	token := a.tokenFlag
	if token == "" {
		token = a.cfg.Token
	}
	a.client = apiclient.New(a.apiBase(),
		apiclient.WithToken(token),
		apiclient.WithLogger(a.log),
		apiclient.WithBreaker("socialmap-api"),
	)
	a.events = telemetry.NewSender(a.log, a.client, a.cfg.User.Email)
	return a.client
}

// session loads the current graph into a fresh view.
func (a *app) session(ctx context.Context) (*viewmodel.Session, error) {
	s := viewmodel.NewSession(a.log, a.api(), viewmodel.Options{})
	if err := s.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	return s, nil
}

// controller wires the drawer controller to a freshly loaded view.
func (a *app) controller(ctx context.Context) (*editor.Controller, *viewmodel.Session, error) {
	s, err := a.session(ctx)
	if err != nil {
		return nil, nil, err
	}
	return editor.NewController(a.log, a.api(), s, syncEvents{a.events}), s, nil
}

// syncEvents delivers controller events before the process exits.
type syncEvents struct {
	s *telemetry.Sender
}

func (e syncEvents) Event(ctx context.Context, typ string, data map[string]any) {
	e.s.Send(ctx, typ, data)
}

func describeError(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code != "" {
			return fmt.Sprintf("%s (%s)", apiErr.Message, apiErr.Code)
		}
		return apiErr.Message
	}
	return err.Error()
}
