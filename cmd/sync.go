package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <url-or-id>",
		Short: "Runs one synchronization and prints the result",
		Long: `Resolves the place identity from a source URL or bare numeric id,
runs one full sync, and prints the result as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: runSyncCommand,
	}
}

func runSyncCommand(cmd *cobra.Command, args []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	identity, _, err := a.Resolver.Resolve(args[0], nil)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", args[0], err)
	}

	result, err := a.Syncer.Run(cmd.Context(), identity)
	if err != nil {
		return fmt.Errorf("sync %s: %w", identity.ID, err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
