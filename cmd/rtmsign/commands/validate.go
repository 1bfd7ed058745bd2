package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oktsec/rtmsign/internal/config"
	"github.com/oktsec/rtmsign/internal/safefile"
)

func newValidateCmd() *cobra.Command {
	var envFiles []string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the rtmsign configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(envFiles...); err != nil {
				return err
			}

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("validation error: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config %s is valid\n", cfgFile)
			fmt.Fprintf(out, "  App id: %s\n", cfg.AppID)
			fmt.Fprintf(out, "  Client id: %s\n", cfg.ClientID)
			fmt.Fprintf(out, "  Master key: %s\n", keySource(cfg))
			fmt.Fprintf(out, "  Output: %s\n", cfg.Output)
			fmt.Fprintf(out, "  Log level: %s\n", cfg.LogLevel)

			if cfg.MasterKey != "" {
				private, err := safefile.IsPrivate(cfgFile)
				if err == nil && !private {
					fmt.Fprintf(out, "  Warning: %s holds master_key but is readable by other users\n", cfgFile)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv file(s) to load before resolving the master key")
	return cmd
}

func keySource(cfg *config.Config) string {
	switch {
	case cfg.MasterKeyEnv != "" && cfg.ResolveMasterKey() != cfg.MasterKey:
		return "from $" + cfg.MasterKeyEnv
	case cfg.MasterKey != "":
		return "set in config file"
	default:
		return "not configured"
	}
}
