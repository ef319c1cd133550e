package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var errBadSignature = errors.New("signature does not verify")

func signCmd(e *env, pass passphraseFunc) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "sign <keypair>",
		Short: "Sign input with a stored keypair and print the base64 signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			kp, err := unlockKeypair(e, pass, args[0])
			if err != nil {
				return err
			}
			defer kp.Wipe()
			sig, err := kp.Sign(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), encodeBase64(sig))
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "input file, - for stdin")
	return cmd
}

func verifyCmd(e *env) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "verify <identity> <signature>",
		Short: "Verify a base64 signature over input against an identity string",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := decodeBase64(args[1])
			if err != nil {
				return err
			}
			data, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			if !e.suite.Verify(args[0], sig, data) {
				return errBadSignature
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "input file, - for stdin")
	return cmd
}

func encryptCmd(e *env, pass passphraseFunc) *cobra.Command {
	var in, out, aad string
	cmd := &cobra.Command{
		Use:   "encrypt <keypair> <recipient-identity>...",
		Short: "Encrypt input for one or more identities; output is base64",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			kp, err := unlockKeypair(e, pass, args[0])
			if err != nil {
				return err
			}
			defer kp.Wipe()
			sealed, err := kp.Encrypt(args[1:], data, aadBytes(aad))
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, []byte(encodeBase64(sealed)+"\n"))
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "input file, - for stdin")
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&aad, "aad", "", "associated data bound to the envelope")
	return cmd
}

func decryptCmd(e *env, pass passphraseFunc) *cobra.Command {
	var in, out, aad string
	cmd := &cobra.Command{
		Use:   "decrypt <keypair> <sender-identity>",
		Short: "Decrypt a base64 envelope sent by an identity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			envelope, err := decodeBase64(string(raw))
			if err != nil {
				return err
			}
			kp, err := unlockKeypair(e, pass, args[0])
			if err != nil {
				return err
			}
			defer kp.Wipe()
			plain, err := kp.Decrypt(args[1], envelope, aadBytes(aad))
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, plain)
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "input file, - for stdin")
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&aad, "aad", "", "associated data the envelope was bound to")
	return cmd
}

func aadBytes(s string) []byte {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return []byte(s)
}
