package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/joncooperworks/coreextract/checksum"
	"github.com/joncooperworks/coreextract/keystore"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	keyID := &cli.StringFlag{
		Name:     "key-id",
		Usage:    "Keyring id of the signing key",
		Required: true,
	}

	return &cli.Command{
		Name:  "keygen",
		Usage: "Manage the key that signs checksum manifests",
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Generate a signing key and store it in the OS keyring",
				Flags:  []cli.Flag{keyID},
				Action: generate,
			},
			{
				Name:   "public",
				Usage:  "Print the base64 public key of a stored signing key",
				Flags:  []cli.Flag{keyID},
				Action: public,
			},
			{
				Name:   "list",
				Usage:  "List stored signing keys",
				Action: list,
			},
			{
				Name:  "verify",
				Usage: "Verify the signed checksum manifest in an add-on directory",
				Flags: []cli.Flag{
					keyID,
					&cli.StringFlag{
						Name:     "dir",
						Usage:    "Add-on directory containing checksums.txt",
						Required: true,
					},
				},
				Action: verify,
			},
		},
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	ks, err := keystore.NewKeyringKeystore()
	if err != nil {
		return err
	}

	id := cmd.String("key-id")
	publicKey, err := keystore.Generate(ks, id)
	if err != nil {
		return err
	}

	fmt.Printf("Signing key generated successfully:\n")
	fmt.Printf("  Keystore ID: %s\n", id)
	fmt.Printf("  Public key: %s\n", base64.StdEncoding.EncodeToString(publicKey))
	return nil
}

func public(ctx context.Context, cmd *cli.Command) error {
	signer, err := loadSigner(cmd.String("key-id"))
	if err != nil {
		return err
	}
	defer signer.Close()

	fmt.Println(base64.StdEncoding.EncodeToString(signer.PublicKey()))
	return nil
}

func list(ctx context.Context, cmd *cli.Command) error {
	ks, err := keystore.NewKeyringKeystore()
	if err != nil {
		return err
	}
	keys, err := ks.ListKeys()
	if err != nil {
		return err
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

func verify(ctx context.Context, cmd *cli.Command) error {
	signer, err := loadSigner(cmd.String("key-id"))
	if err != nil {
		return err
	}
	defer signer.Close()

	dir := cmd.String("dir")
	if err := checksum.Verify(dir, signer.PublicKey()); err != nil {
		return err
	}
	fmt.Printf("%s: manifest signature OK\n", dir)
	return nil
}

func loadSigner(id string) (*keystore.Signer, error) {
	ks, err := keystore.NewKeyringKeystore()
	if err != nil {
		return nil, err
	}
	return keystore.NewSigner(ks, id)
}
