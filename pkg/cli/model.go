package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modelscout/modelscout/pkg/gateway"
)

func NewModelCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Model inspection commands",
	}

	cmd.AddCommand(NewModelProfileCommand(root))

	return cmd
}

func NewModelProfileCommand(root *RootCommand) *cobra.Command {
	var (
		includeEndpoints  bool
		includeParameters bool
	)

	cmd := &cobra.Command{
		Use:   "profile <model-id>",
		Short: "Show one model's catalog record",
		Long: `Show the catalog record for a model.

With --endpoints or --parameters the live upstream detail is fetched
as well, which requires an API key.`,
		Example: `  # Basic catalog record
  modelscout model profile anthropic/claude-sonnet-4

  # Include the hosted endpoint list
  modelscout model profile anthropic/claude-sonnet-4 --endpoints`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModelProfile(cmd.Context(), root, args[0], includeEndpoints, includeParameters)
		},
	}

	cmd.Flags().BoolVar(&includeEndpoints, "endpoints", false, "Fetch the live endpoint list")
	cmd.Flags().BoolVar(&includeParameters, "parameters", false, "Fetch the supported-parameter detail")

	return cmd
}

func runModelProfile(ctx context.Context, root *RootCommand, modelID string, includeEndpoints, includeParameters bool) error {
	gw := root.Gateway()
	opts := root.OutputOptions()

	req := &gateway.Request{
		Type: gateway.TypeQuery,
		Unit: "catalog.profile",
		Input: map[string]any{
			"model_id":           modelID,
			"include_endpoints":  includeEndpoints,
			"include_parameters": includeParameters,
		},
	}

	resp := gw.Handle(ctx, req)

	if !resp.Success {
		PrintError(fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message), opts)
		return fmt.Errorf("model profile failed: %s", resp.Error.Message)
	}

	return PrintOutput(resp.Data, opts)
}
