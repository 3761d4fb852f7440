package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/joncooperworks/coreextract/config"
	"github.com/joncooperworks/coreextract/keystore"
	"github.com/joncooperworks/coreextract/logging"
	"github.com/joncooperworks/coreextract/scan"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "coreextract",
		Usage:     "Extract add-on metadata and settings from libretro cores",
		ArgsUsage: "<path to any core in the directory to scan>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file path (toml, yaml or json)",
			},
			&cli.StringFlag{
				Name:  "output-root",
				Usage: "Extraction root; relative roots sit three levels above the core directory",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (text, json)",
			},
			&cli.BoolFlag{
				Name:  "abort-on-load-failure",
				Usage: "Stop at the first core that cannot be loaded instead of skipping it",
			},
			&cli.StringFlag{
				Name:  "sign-key",
				Usage: "Keyring id of the key that signs checksum manifests",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		fmt.Println("Must call with libretro core as first argument")
		return nil
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	logging.SetLogger(logger)

	var opts []scan.Option
	if cfg.SigningKey != "" {
		ks, err := keystore.NewKeyringKeystore()
		if err != nil {
			return err
		}
		signer, err := keystore.NewSigner(ks, cfg.SigningKey)
		if err != nil {
			return fmt.Errorf("failed to load signing key %s: %w", cfg.SigningKey, err)
		}
		defer signer.Close()
		logger.Info("Signing checksum manifests", "key", signer.KeyID())
		opts = append(opts, scan.WithSigner(signer))
	}

	_, err = scan.New(cfg, opts...).Run(ctx, cmd.Args().First())
	return err
}

// applyFlags lets explicitly set flags override file and environment
// values.
func applyFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("output-root") {
		cfg.OutputRoot = cmd.String("output-root")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Log.Format = cmd.String("log-format")
	}
	if cmd.IsSet("abort-on-load-failure") {
		cfg.AbortOnLoadFailure = cmd.Bool("abort-on-load-failure")
	}
	if cmd.IsSet("sign-key") {
		cfg.SigningKey = cmd.String("sign-key")
	}
}
