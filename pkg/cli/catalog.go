package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modelscout/modelscout/pkg/gateway"
)

func NewCatalogCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Model catalog commands",
		Long: `Work with the cached OpenRouter model catalog.

The catalog is fetched lazily and kept for a configurable TTL;
sync refreshes it on demand.`,
	}

	cmd.AddCommand(NewCatalogSyncCommand(root))

	return cmd
}

func NewCatalogSyncCommand(root *RootCommand) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the model catalog",
		Long: `Fetch the model catalog, honoring the freshness gate.

Without --force a still-valid cache is reused and no network call
is made.`,
		Example: `  # Refresh only if the cache has expired
  modelscout catalog sync

  # Force a live fetch
  modelscout catalog sync --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogSync(cmd.Context(), root, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Bypass the freshness gate")

	return cmd
}

func runCatalogSync(ctx context.Context, root *RootCommand, force bool) error {
	gw := root.Gateway()
	opts := root.OutputOptions()

	req := &gateway.Request{
		Type: gateway.TypeCommand,
		Unit: "catalog.sync",
		Input: map[string]any{
			"force": force,
		},
	}

	resp := gw.Handle(ctx, req)

	if !resp.Success {
		PrintError(fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message), opts)
		return fmt.Errorf("catalog sync failed: %s", resp.Error.Message)
	}

	return PrintOutput(resp.Data, opts)
}
