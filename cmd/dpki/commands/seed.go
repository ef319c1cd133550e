package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dpki-lite/go-core/internal/seed"
)

type passphraseFunc func() (string, error)

func seedCmd(e *env, pass passphraseFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create, restore and derive seeds",
	}
	cmd.AddCommand(
		seedNewCmd(e, pass),
		seedRestoreCmd(e, pass),
		seedMnemonicCmd(e, pass),
		seedDeviceCmd(e, pass),
		seedPinCmd(e, pass),
	)
	return cmd
}

func seedNewCmd(e *env, pass passphraseFunc) *cobra.Command {
	var hint string
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Generate a random root seed and print its recovery phrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pass()
			if err != nil {
				return err
			}
			root, err := e.hier.NewRandomRoot()
			if err != nil {
				return err
			}
			defer root.Wipe()
			mnemonic, err := root.Mnemonic()
			if err != nil {
				return err
			}
			if err := storeSeed(e, args[0], root, p, hint); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Root seed %q stored.\nRecovery phrase:\n%s\n", args[0], mnemonic)
			return nil
		},
	}
	cmd.Flags().StringVar(&hint, "hint", "root seed", "passphrase hint stored in clear")
	return cmd
}

func seedRestoreCmd(e *env, pass passphraseFunc) *cobra.Command {
	var (
		hint     string
		kind     string
		mnemonic string
	)
	cmd := &cobra.Command{
		Use:   "restore <name>",
		Short: "Restore a seed from its recovery phrase (read from stdin unless --mnemonic)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pass()
			if err != nil {
				return err
			}
			if strings.TrimSpace(mnemonic) == "" {
				raw, err := readInput(cmd, "-")
				if err != nil {
					return err
				}
				mnemonic = string(raw)
			}
			s, err := e.hier.FromMnemonic(seed.Kind(kind), mnemonic)
			if err != nil {
				return err
			}
			defer s.Wipe()
			if err := storeSeed(e, args[0], s, p, hint); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q restored.\n", s.Kind(), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&hint, "hint", "restored seed", "passphrase hint stored in clear")
	cmd.Flags().StringVar(&kind, "kind", string(seed.KindRoot), "seed kind: RootSeed, DeviceSeed or DevicePinSeed")
	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "recovery phrase (prefer stdin)")
	return cmd
}

func seedMnemonicCmd(e *env, pass passphraseFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "mnemonic <name>",
		Short: "Print the recovery phrase of a stored seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := unlockSeed(e, pass, args[0])
			if err != nil {
				return err
			}
			defer s.Wipe()
			m, err := s.Mnemonic()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m)
			return nil
		},
	}
}

func seedDeviceCmd(e *env, pass passphraseFunc) *cobra.Command {
	var hint string
	cmd := &cobra.Command{
		Use:   "device <root> <index> <name>",
		Short: "Derive a device seed from a stored root seed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := seed.ParseIndex(args[1])
			if err != nil {
				return err
			}
			root, err := unlockSeed(e, pass, args[0])
			if err != nil {
				return err
			}
			defer root.Wipe()
			dev, err := root.DeviceSeed(index)
			if err != nil {
				return err
			}
			defer dev.Wipe()
			return storeDerived(cmd, e, pass, args[2], dev, hint)
		},
	}
	cmd.Flags().StringVar(&hint, "hint", "device seed", "passphrase hint stored in clear")
	return cmd
}

func seedPinCmd(e *env, pass passphraseFunc) *cobra.Command {
	var (
		hint   string
		pinEnv string
	)
	cmd := &cobra.Command{
		Use:   "pin <device-or-root> <name>",
		Short: "Derive a PIN seed; the PIN is read from --pin-env",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin := os.Getenv(pinEnv)
			if pin == "" {
				return fmt.Errorf("pin required: set %s", pinEnv)
			}
			parent, err := unlockSeed(e, pass, args[0])
			if err != nil {
				return err
			}
			defer parent.Wipe()
			child, err := parent.DevicePinSeed(pin)
			if err != nil {
				return err
			}
			defer child.Wipe()
			return storeDerived(cmd, e, pass, args[1], child, hint)
		},
	}
	cmd.Flags().StringVar(&hint, "hint", "pin seed", "passphrase hint stored in clear")
	cmd.Flags().StringVar(&pinEnv, "pin-env", "DPKI_PIN", "environment variable holding the PIN")
	return cmd
}

func unlockSeed(e *env, pass passphraseFunc, name string) (*seed.Seed, error) {
	p, err := pass()
	if err != nil {
		return nil, err
	}
	return e.store.UnlockSeed(name, p)
}

func storeSeed(e *env, name string, s *seed.Seed, passphrase, hint string) error {
	b, err := s.Bundle(passphrase, hint)
	if err != nil {
		return err
	}
	return e.store.Put(name, b)
}

func storeDerived(cmd *cobra.Command, e *env, pass passphraseFunc, name string, s *seed.Seed, hint string) error {
	p, err := pass()
	if err != nil {
		return err
	}
	if err := storeSeed(e, name, s, p, hint); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %q stored.\n", s.Kind(), name)
	return nil
}
