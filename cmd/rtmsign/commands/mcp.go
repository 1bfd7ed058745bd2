package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oktsec/rtmsign/internal/config"
	mcpserver "github.com/oktsec/rtmsign/internal/mcp"
	"github.com/oktsec/rtmsign/internal/signature"
	"github.com/oktsec/rtmsign/internal/telemetry"
)

func newMCPCmd(signerOpts []signature.Option) *cobra.Command {
	var envFiles []string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start rtmsign as an MCP server (stdio)",
		Long: `Exposes rtmsign as an MCP tool server. Add to your MCP client config:

  {
    "mcpServers": {
      "rtmsign": {
        "command": "rtmsign",
        "args": ["mcp", "--config", "./rtmsign.yaml"]
      }
    }
  }

The master key is read from the config file or $RTM_MASTER_KEY at each call.

Tools: rtm_sign`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(envFiles...); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// stdout carries the MCP protocol; logs and traces go to stderr.
			logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			tp, err := telemetry.New(cfg.Trace, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			defer func() { _ = tp.Shutdown(ctx) }()

			opts := append([]signature.Option{
				signature.WithLogger(logger),
				signature.WithTracer(tp.Tracer()),
			}, signerOpts...)

			mcpserver.Version = version
			s := mcpserver.NewServer(
				signature.NewSigner(opts...),
				cfg.ResolveMasterKey,
				mcpserver.Defaults{AppID: cfg.AppID, ClientID: cfg.ClientID},
				logger,
			)
			logger.Info("serving MCP on stdio")
			return mcpserver.Serve(ctx, s)
		},
	}
	cmd.Flags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv file(s) to load at startup")
	return cmd
}
