// Package cli implements the tripmate command
package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/jrsteele09/tripmate-client/api"
	"github.com/jrsteele09/tripmate-client/fetch"
	"github.com/jrsteele09/tripmate-client/internal/config"
	"github.com/jrsteele09/tripmate-client/sessions"
	"github.com/jrsteele09/tripmate-client/sessions/filerepo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app holds the global flags and the lazily built client shared by the
// subcommands of one invocation
type app struct {
	out    io.Writer
	errOut io.Writer

	apiURL     string
	jsonOutput bool
	logLevel   string

	cfg    config.Config
	client *api.Client
}

// NewRootCmd builds the command tree writing results to out and logs to
// errOut
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "tripmate",
		Short: "Command line client for the Tripmate API",
		Long: `tripmate signs in to the Tripmate API, keeps the session alive and
runs the local role-gated dashboard.

Environment Variables:
  TRIPMATE_API_URL           API base URL (default: http://localhost:8000)
  TRIPMATE_RETRIES           Retries per request (default: 10)
  TRIPMATE_RETRY_DELAY_MS    First backoff delay (default: 500)
  TRIPMATE_BACKOFF_FACTOR    Backoff growth factor (default: 2)
  TRIPMATE_TOKEN_FILE        Where the credentials are kept
  TRIPMATE_TOKEN_PASSPHRASE  Seals the credentials file when set
  TRIPMATE_CONFIG            Optional YAML config file`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "API base URL (overrides TRIPMATE_API_URL)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output JSON instead of human-readable text")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (overrides TRIPMATE_LOG_LEVEL)")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.meCmd(),
		a.chooseRoleCmd(),
		a.fetchCmd(),
		a.serveCmd(),
		a.bannerCmd(),
	)
	return root
}

// Execute runs the tripmate command against the process streams
func Execute() error {
	return NewRootCmd(os.Stdout, os.Stderr).Execute()
}

func (a *app) init() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.initLogger()
	return nil
}

func (a *app) initLogger() {
	levelName := a.logLevel
	if levelName == "" {
		levelName = a.cfg.GetLogLevel()
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: a.errOut, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func (a *app) baseURL() string {
	if a.apiURL != "" {
		return strings.TrimRight(a.apiURL, "/")
	}
	return a.cfg.GetAPIBaseURL()
}

// api returns the client, restoring the stored session on first use
func (a *app) api() (*api.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	session := sessions.New(filerepo.New(a.cfg.GetTokenFile(), a.cfg.GetTokenPassphrase()))
	if err := session.Restore(); err != nil {
		return nil, err
	}
	log.Debug().Str("state", session.State().String()).Msg("Session restored")

	client, err := api.New(a.baseURL(), session,
		api.WithLogger(log.Logger),
		api.WithFetchOptions(
			fetch.WithRetries(a.cfg.GetRetries()),
			fetch.WithRetryDelay(a.cfg.GetRetryDelay()),
			fetch.WithFactor(a.cfg.GetBackoffFactor()),
		),
	)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}
