package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/oktsec/rtmsign/internal/config"
)

func newInitCmd() *cobra.Command {
	var appID, clientID, output, keyEnv string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter rtmsign.yaml",
		Long: `Writes a config file with the given defaults. The master key is never
written; export it in the variable named by --master-key-env or put it in .env.`,
		Example: `  rtmsign init --appid APP --clientid alice
  rtmsign init --config ./conf/rtmsign.yaml --output command --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Lstat(cfgFile); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("checking %s: %w", cfgFile, err)
				}
			}

			cfg := config.Defaults()
			cfg.AppID = appID
			cfg.ClientID = clientID
			cfg.Output = output
			cfg.MasterKeyEnv = keyEnv
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("validation error: %w", err)
			}
			if err := cfg.Save(cfgFile); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", cfgFile)
			fmt.Fprintf(out, "  Set the master key with: export %s=...\n", cfg.MasterKeyEnv)
			return nil
		},
	}

	cmd.Flags().StringVar(&appID, "appid", "", "default application id")
	cmd.Flags().StringVar(&clientID, "clientid", "", "default client (peer) id")
	cmd.Flags().StringVar(&output, "output", "debug", "default output: debug or command")
	cmd.Flags().StringVar(&keyEnv, "master-key-env", config.DefaultMasterKeyEnv, "environment variable holding the master key")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
