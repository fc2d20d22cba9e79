package cli

import (
	"encoding/base64"
	"fmt"

	"github.com/example/srt-reserver/internal/infrastructure/vault"
	"github.com/spf13/cobra"
)

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Generate VAULT_HASH_KEY and VAULT_BLOCK_KEY values (base64)",
		Run: func(cmd *cobra.Command, args []string) {
			hash, block := vault.GenerateKeys()
			fmt.Fprintf(cmd.OutOrStdout(), "export VAULT_HASH_KEY=%s\n", base64.StdEncoding.EncodeToString(hash))
			fmt.Fprintf(cmd.OutOrStdout(), "export VAULT_BLOCK_KEY=%s\n", base64.StdEncoding.EncodeToString(block))
		},
	}
}
