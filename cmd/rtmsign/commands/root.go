package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/oktsec/rtmsign/internal/config"
	"github.com/oktsec/rtmsign/internal/signature"
)

var (
	cfgFile  string
	logLevel string
	trace    bool
)

// NewRoot builds the rtmsign command tree.
func NewRoot() *cobra.Command {
	return newRoot(nil)
}

// newRoot lets tests pin the clock and random source of every signer the
// commands create.
func newRoot(signerOpts []signature.Option) *cobra.Command {
	opts := &signOptions{signerOpts: signerOpts}

	root := &cobra.Command{
		Use:   "rtmsign [action]",
		Short: "Sign RTM session and conversation operations",
		Long: `rtmsign computes the HMAC-SHA1 signature an RTM server expects for
open, start, add and remove operations, and prints a debug record or the
ready-to-send JSON command.

"rtmsign <action> ..." is shorthand for "rtmsign sign <action> ...".`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runSign(cmd, args[0], opts)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().BoolVar(&trace, "trace", false, "export an OpenTelemetry span for each signature to stderr")
	opts.bind(root)

	root.AddCommand(
		newSignCmd(signerOpts),
		newInitCmd(),
		newValidateCmd(),
		newMCPCmd(signerOpts),
		newVersionCmd(),
	)

	return root
}

// loadConfig reads the config file, falling back to defaults when the
// default file does not exist, and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit := cmd.Flags().Changed("config")
	cfg, err := config.LoadOrDefault(cfgFile, explicit)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("trace") {
		cfg.Trace = trace
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
