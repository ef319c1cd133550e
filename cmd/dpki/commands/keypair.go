package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"dpki-lite/go-core/internal/identity"
	"dpki-lite/go-core/internal/seed"
)

func keypairCmd(e *env, pass passphraseFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keypair",
		Short: "Derive and inspect application keypairs",
	}
	cmd.AddCommand(keypairDeriveCmd(e, pass), keypairIDCmd(e, pass))
	return cmd
}

func keypairDeriveCmd(e *env, pass passphraseFunc) *cobra.Command {
	var hint string
	cmd := &cobra.Command{
		Use:   "derive <pin-seed> <index> <name>",
		Short: "Derive an application keypair from a stored PIN seed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := seed.ParseIndex(args[1])
			if err != nil {
				return err
			}
			p, err := pass()
			if err != nil {
				return err
			}
			pinSeed, err := e.store.UnlockSeed(args[0], p)
			if err != nil {
				return err
			}
			defer pinSeed.Wipe()
			kp, err := pinSeed.ApplicationKeypair(index)
			if err != nil {
				return err
			}
			defer kp.Wipe()
			b, err := kp.Bundle(p, hint)
			if err != nil {
				return err
			}
			if err := e.store.Put(args[2], b); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), kp.ID())
			return nil
		},
	}
	cmd.Flags().StringVar(&hint, "hint", "application keypair", "passphrase hint stored in clear")
	return cmd
}

func keypairIDCmd(e *env, pass passphraseFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "id <name>",
		Short: "Print the identity string and fingerprint of a stored keypair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := unlockKeypair(e, pass, args[0])
			if err != nil {
				return err
			}
			defer kp.Wipe()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", kp.ID(), kp.Fingerprint())
			return nil
		},
	}
}

func unlockKeypair(e *env, pass passphraseFunc, name string) (*identity.Keypair, error) {
	p, err := pass()
	if err != nil {
		return nil, err
	}
	return e.store.UnlockKeypair(name, p)
}
