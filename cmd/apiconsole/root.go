package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/apiconsole/internal/console"
	"github.com/nerrad567/apiconsole/internal/infrastructure/config"
	"github.com/nerrad567/apiconsole/internal/infrastructure/logging"
)

// defaultConfigPath is used when neither --config nor APICONSOLE_CONFIG is set.
const defaultConfigPath = "configs/config.yaml"

// errReported marks a failure whose message was already printed as a notice.
var errReported = errors.New("reported")

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
	output     string
	url        string
	apiKey     string
	token      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "apiconsole",
		Short: "Console for JSON REST APIs and the DTH22 readings service",
		Long: `apiconsole probes a REST endpoint for the HTTP methods it accepts, renders
its JSON as a table and sends POST, PUT and DELETE requests against it.

It also serves the DTH22 sensor-readings API (serve) and follows that
service's event stream (watch).`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			_, err := parseOutputFormat(opts.output)
			return err
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default $APICONSOLE_CONFIG or "+defaultConfigPath+")")
	flags.StringVarP(&opts.output, "output", "o", "table", "Output format: table, json, yaml")
	flags.StringVar(&opts.url, "url", "", "Target API URL (default console.url)")
	flags.StringVar(&opts.apiKey, "api-key", "", "Value sent as X-API-Key (default console.api_key)")
	flags.StringVar(&opts.token, "token", "", "Bearer token sent as Authorization (default console.token)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newProbeCmd(opts),
		newFetchCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newShellCmd(opts),
		newWatchCmd(opts),
		newTokenCmd(opts),
	)

	return rootCmd
}

// loadConfig reads the config file. An explicitly named file must exist;
// the default path falls back to built-in defaults.
func (o *options) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadOptional(defaultConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// format returns the validated output format.
func (o *options) format() outputFormat {
	f, _ := parseOutputFormat(o.output) //nolint:errcheck // validated in PersistentPreRunE
	return f
}

// connection merges the console flags over the config defaults.
func (o *options) connection(cfg *config.Config) console.ConnectionConfig {
	conn := console.ConnectionConfig{
		URL:    cfg.Console.URL,
		APIKey: cfg.Console.APIKey,
		Token:  cfg.Console.Token,
	}
	if o.url != "" {
		conn.URL = o.url
	}
	if o.apiKey != "" {
		conn.APIKey = o.apiKey
	}
	if o.token != "" {
		conn.Token = o.token
	}
	return conn
}

// newSession builds a console session whose notices go to errOut.
func (o *options) newSession(errOut io.Writer) (*console.Session, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewWithWriter(errOut, config.LoggingConfig{
		Level:  "warn",
		Format: "text",
	}, version)

	client := console.NewClient(cfg.GetConsoleTimeout(), logger)
	session := console.NewSession(client, noticePrinter(errOut))
	session.SetConfig(o.connection(cfg))
	return session, cfg, nil
}

// noticePrinter writes each notice as "level: message".
func noticePrinter(w io.Writer) console.Notifier {
	return console.NotifierFunc(func(n console.Notice) {
		fmt.Fprintf(w, "%s: %s\n", n.Level, n.Message)
	})
}

// reported converts a session error, already shown as a notice, into
// errReported so main does not print it twice.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", errReported, err)
}
