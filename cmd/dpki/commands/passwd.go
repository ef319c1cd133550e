package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func passwdCmd(e *env, pass passphraseFunc) *cobra.Command {
	var newEnv string
	cmd := &cobra.Command{
		Use:   "passwd <name>",
		Short: "Re-seal a keystore entry under a new passphrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldPass, err := pass()
			if err != nil {
				return err
			}
			newPass, err := passphraseFrom(newEnv)
			if err != nil {
				return err
			}
			if err := e.store.Rekey(args[0], oldPass, newPass); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q re-sealed.\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&newEnv, "new-passphrase-env", "DPKI_NEW_PASSPHRASE", "environment variable holding the new passphrase")
	return cmd
}
