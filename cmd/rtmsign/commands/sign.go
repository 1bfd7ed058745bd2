package commands

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oktsec/rtmsign/internal/config"
	"github.com/oktsec/rtmsign/internal/render"
	"github.com/oktsec/rtmsign/internal/signature"
	"github.com/oktsec/rtmsign/internal/telemetry"
)

// signOptions holds the flags shared by the root shortcut and "sign".
type signOptions struct {
	appID     string
	clientID  string
	convID    string
	members   string
	masterKey string
	cmdOutput bool
	envFiles  []string

	signerOpts []signature.Option
}

func (o *signOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.appID, "appid", "", "application id")
	f.StringVar(&o.clientID, "clientid", "", "client (peer) id")
	f.StringVar(&o.convID, "convid", "", "conversation id (add, remove)")
	f.StringVar(&o.members, "members", "", "colon-separated member ids (start, add, remove)")
	f.StringVar(&o.masterKey, "masterkey", "", "master key used for signing")
	f.BoolVar(&o.cmdOutput, "cmd-output", false, "print the JSON command instead of the debug record")
	f.StringSliceVar(&o.envFiles, "env-file", []string{".env"}, "dotenv file(s) to load before resolving the master key")
}

func newSignCmd(signerOpts []signature.Option) *cobra.Command {
	opts := &signOptions{signerOpts: signerOpts}
	cmd := &cobra.Command{
		Use:   "sign <action>",
		Short: "Sign an open, start, add or remove operation",
		Example: `  rtmsign sign open --appid APP --clientid alice --masterkey KEY
  rtmsign sign start --appid APP --clientid alice --members bob:carol --cmd-output
  rtmsign add --appid APP --clientid alice --convid CONV --members dave
  RTM_MASTER_KEY=KEY rtmsign remove --appid APP --clientid alice --convid CONV --members bob`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd, args[0], opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runSign(cmd *cobra.Command, rawAction string, opts *signOptions) error {
	if err := config.LoadEnv(opts.envFiles...); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	if opts.cmdOutput {
		format = render.FormatCommand
	}

	action := signature.ParseAction(rawAction)
	if err := render.CheckAction(format, action); err != nil {
		return err
	}
	if !action.Supported() {
		logger.Warn("unknown action, signing like start", "action", rawAction)
	}

	key := opts.masterKey
	if key == "" {
		key = cfg.ResolveMasterKey()
	}
	if key == "" {
		key, err = promptMasterKey(cmd)
		if err != nil {
			return err
		}
	}

	tp, err := telemetry.New(cfg.Trace, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	signerOpts := append([]signature.Option{
		signature.WithLogger(logger),
		signature.WithTracer(tp.Tracer()),
	}, opts.signerOpts...)
	signer := signature.NewSigner(signerOpts...)

	res, err := signer.Sign(ctx, signature.Request{
		Action:         action,
		AppID:          cmp.Or(opts.appID, cfg.AppID),
		ClientID:       cmp.Or(opts.clientID, cfg.ClientID),
		ConversationID: opts.convID,
		Members:        opts.members,
		MasterKey:      key,
	})
	if err != nil {
		return err
	}
	return render.Write(cmd.OutOrStdout(), format, res)
}

// promptMasterKey reads the key from the terminal without echo. Piped or
// redirected stdin never prompts.
func promptMasterKey(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w (use --masterkey or $%s)", signature.ErrMissingMasterKey, config.DefaultMasterKeyEnv)
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Master key: ")
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading master key: %w", err)
	}
	if len(key) == 0 {
		return "", errors.New("empty master key")
	}
	return string(key), nil
}
