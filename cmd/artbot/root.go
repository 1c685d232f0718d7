package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"artbot/internal/config"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

// buildRootCmd constructs the command tree. Output streams are injected so
// tests can capture them.
func buildRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags cliFlags

	root := &cobra.Command{
		Use:           "artbot",
		Short:         "Slack slash-command art bot backed by a Stable Diffusion web API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (.yaml, .json, .toml); defaults to ./artbot.yaml or ~/.config/artbot/config.yaml")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults ARTBOT_LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "json", "Log format: json|console")
	root.PersistentFlags().StringVar(&flags.backendURL, "backend-url", "", "Image backend base URL (defaults BACKEND_URL or "+config.DefaultBackendURL+")")

	// resolve loads settings and installs the logger for a subcommand.
	resolve := func(cmd *cobra.Command) (settings, error) {
		flags.corsSet = cmd.Flags().Changed("cors-enabled")
		cfg, path, err := loadSettings(flags, osLookup)
		if err != nil {
			return settings{}, err
		}
		log := newLogger(stderr, cfg.LogLevel, flags.logFormat)
		if path != "" {
			log.Debug().Str("path", path).Msg("config loaded")
		}
		return settings{cfg: cfg, log: log}, nil
	}

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Connect to Slack over Socket Mode and serve the operations API",
		Example: "  SLACK_APP_TOKEN=xapp-... SLACK_BOT_TOKEN=xoxb-... artbot serve --addr :8080",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolve(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), s)
		},
	}
	serveCmd.Flags().StringVar(&flags.addr, "addr", "", "HTTP listen address for the operations API (defaults ARTBOT_ADDR or :8080)")
	serveCmd.Flags().BoolVar(&flags.corsEnabled, "cors-enabled", false, "Enable CORS on the operations API")
	serveCmd.Flags().StringVar(&flags.corsOrigins, "cors-origins", "", "Comma-separated list of allowed CORS origins")

	var prompt, out string
	generateCmd := &cobra.Command{
		Use:     "generate",
		Short:   "Draw one prompt and write the composite PNG to disk",
		Example: "  artbot generate --prompt \"a lighthouse at dusk\" --out lighthouse.png",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolve(cmd)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), s, prompt, out, stdout)
		},
	}
	generateCmd.Flags().StringVar(&prompt, "prompt", "", "Prompt text (required)")
	generateCmd.Flags().StringVarP(&out, "out", "o", "", "Output file; defaults to <timestamp>.png in the working directory")
	_ = generateCmd.MarkFlagRequired("prompt")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(stdout, "artbot", version)
		},
	}

	root.AddCommand(serveCmd, generateCmd, versionCmd)
	return root
}

// settings is the resolved configuration plus the logger built from it.
type settings struct {
	cfg config.Config
	log zerolog.Logger
}
