package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"contentadmin/internal/apiclient"
	"contentadmin/internal/auth"
	"contentadmin/internal/config"
	"contentadmin/internal/logging"
	"contentadmin/internal/telemetry"
	"contentadmin/internal/ui"
)

// annotationAuth marks commands that need a signed-in session.
const annotationAuth = "contentadmin/auth"

var requiresAuth = map[string]string{annotationAuth: "required"}

// env is everything a command needs, built once in PersistentPreRunE.
type env struct {
	cfg       *config.Config
	logger    *zap.Logger
	closeLog  func()
	telemetry *telemetry.Provider
	api       *apiclient.Client
	auth      *auth.Service
}

func (e *env) close() {
	if e.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.telemetry.Shutdown(ctx)
	}
	if e.closeLog != nil {
		e.closeLog()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := &env{}
	err := newRootCmd(e).ExecuteContext(ctx)
	e.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(e *env) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "contentadmin",
		Short: "Terminal admin dashboard for categories, subcategories and blog posts",
		Long: `contentadmin manages the content of a storefront API from the terminal.

Run without a command to open the dashboard. Sign in with an admin account,
then browse categories (Enter opens a category's subcategories) or blog
posts. Press SPC for the command menu.

Settings come from contentadmin.yaml, .env, CONTENTADMIN_* environment
variables and flags, in increasing priority.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.setup(cmd.Context(), configFile, cmd.Flags()); err != nil {
				return err
			}
			if cmd.Annotations[annotationAuth] != "" && !e.auth.IsAuthenticated() {
				return errors.New("not signed in: run `contentadmin login` first")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd.Context(), e)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file (default ./contentadmin.yaml or ~/.contentadmin/contentadmin.yaml)")
	addConfigFlags(pf)

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Open the dashboard (the default when no command is given)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runDashboard(cmd.Context(), e)
			},
		},
		newLoginCmd(e),
		newLogoutCmd(e),
		newListCmd(e),
		newDeleteCmd(e),
		newMockAPICmd(e),
	)
	return root
}

// addConfigFlags declares the config keys that can be set from the command
// line. config.Load binds them by name.
func addConfigFlags(fs *pflag.FlagSet) {
	fs.String(config.FlagName("api.base_url"), "", "API base URL")
	fs.Duration(config.FlagName("api.timeout"), 0, "per-request timeout")
	fs.Float64(config.FlagName("api.rate_limit"), 0, "client request rate limit per second")
	fs.Int(config.FlagName("ui.page_size"), 0, "rows per page")
	fs.String(config.FlagName("log.file"), "", "log file")
	fs.String(config.FlagName("log.level"), "", "log level (debug, info, warn, error)")
	fs.String(config.FlagName("session.dir"), "", "directory holding the saved session")
	fs.String(config.FlagName("telemetry.otlp_endpoint"), "", "OTLP/HTTP endpoint for traces")
}

func (e *env) setup(ctx context.Context, configFile string, fs *pflag.FlagSet) error {
	cfg, err := config.Load(configFile, fs)
	if err != nil {
		return err
	}
	e.cfg = cfg

	logger, closeLog, err := logging.Install(cfg.Log)
	if err != nil {
		return errors.Wrap(err, "logging")
	}
	e.logger, e.closeLog = logger, closeLog

	tp, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		return errors.Wrap(err, "telemetry")
	}
	e.telemetry = tp

	store, err := auth.NewStore(cfg.Session.Dir)
	if err != nil {
		return errors.Wrap(err, "session store")
	}

	// The token source reads the service, which needs the client first.
	api, err := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		apiclient.WithTracer(tp.Tracer()),
		apiclient.WithLogger(logger),
		apiclient.WithTokenSource(func() string {
			if e.auth == nil {
				return ""
			}
			return e.auth.Token()
		}),
	)
	if err != nil {
		return errors.Wrap(err, "api client")
	}
	e.api = api
	e.auth = auth.NewService(api, store, logger)

	logger.Debug("configured",
		zap.String("api", cfg.API.BaseURL),
		zap.Bool("tracing", tp.Enabled()),
		zap.String("session", store.Path()))
	return nil
}

func runDashboard(ctx context.Context, e *env) error {
	model := ui.NewAppModel(ui.AppConfig{
		Ctx:       ctx,
		Auth:      e.auth,
		Transport: e.api,
		PageSize:  e.cfg.UI.PageSize,
		Logger:    e.logger,
	}).AsTeaModel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
