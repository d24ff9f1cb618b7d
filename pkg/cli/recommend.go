package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modelscout/modelscout/pkg/gateway"
)

func NewRecommendCommand(root *RootCommand) *cobra.Command {
	var (
		minContext       int
		inputModalities  []string
		outputModalities []string
		maxPromptPrice   float64
		maxCompletion    float64
		requiredParams   []string
		providers        []string
		minAgeDays       int
		maxAgeDays       int
		excludeFree      bool

		strategy    string
		routing     string
		preferNewer bool
		exacto      bool

		limit          int
		verbosity      string
		forceRefresh   bool
		checkEndpoints bool
		noSkeleton     bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <task description>",
		Short: "Recommend models for a task",
		Long: `Recommend models from the catalog for a natural-language task.

Hard constraints exclude models outright; preferences only reorder
the survivors. Prices are stated per 1M tokens.`,
		Example: `  # Cheap tool-capable models with a big context window
  modelscout recommend "summarize legal contracts" \
    --min-context 200000 --require-param tools --routing price

  # Top three IDs only, forcing a catalog refresh
  modelscout recommend "quick chat replies" --limit 3 --verbosity ids --force-refresh`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := strings.Join(args, " ")

			if cfg := root.Config(); cfg != nil {
				if !cmd.Flags().Changed("limit") {
					limit = cfg.Recommend.DefaultLimit
				}
				if !cmd.Flags().Changed("verbosity") {
					verbosity = cfg.Recommend.DefaultVerbosity
				}
				if !cmd.Flags().Changed("strategy") && strategy == "" {
					strategy = cfg.Recommend.DefaultStrategy
				}
			}

			constraints := map[string]any{}
			if minContext > 0 {
				constraints["min_context"] = minContext
			}
			if len(inputModalities) > 0 {
				constraints["input_modalities"] = inputModalities
			}
			if len(outputModalities) > 0 {
				constraints["output_modalities"] = outputModalities
			}
			if cmd.Flags().Changed("max-prompt-price") {
				constraints["max_prompt_price"] = maxPromptPrice
			}
			if cmd.Flags().Changed("max-completion-price") {
				constraints["max_completion_price"] = maxCompletion
			}
			if len(requiredParams) > 0 {
				constraints["required_parameters"] = requiredParams
			}
			if len(providers) > 0 {
				constraints["providers"] = providers
			}
			if cmd.Flags().Changed("min-age-days") {
				constraints["min_age_days"] = minAgeDays
			}
			if cmd.Flags().Changed("max-age-days") {
				constraints["max_age_days"] = maxAgeDays
			}
			if excludeFree {
				constraints["exclude_free"] = true
			}

			preferences := map[string]any{}
			if strategy != "" {
				preferences["strategy"] = strategy
			}
			if routing != "" {
				preferences["routing"] = routing
			}
			if preferNewer {
				preferences["prefer_newer"] = true
			}
			if exacto {
				preferences["prefer_exacto_for_tools"] = true
			}

			options := map[string]any{
				"limit":     limit,
				"verbosity": verbosity,
			}
			if forceRefresh {
				options["force_refresh"] = true
			}
			if checkEndpoints {
				options["check_endpoints"] = true
			}
			if noSkeleton {
				options["include_skeleton"] = false
			}

			input := map[string]any{"task": task}
			if len(constraints) > 0 {
				input["constraints"] = constraints
			}
			if len(preferences) > 0 {
				input["preferences"] = preferences
			}
			input["options"] = options

			return runRecommend(cmd.Context(), root, input)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&minContext, "min-context", 0, "Minimum context window in tokens")
	flags.StringSliceVar(&inputModalities, "input-modality", nil, "Required input modality (repeatable)")
	flags.StringSliceVar(&outputModalities, "output-modality", nil, "Required output modality (repeatable)")
	flags.Float64Var(&maxPromptPrice, "max-prompt-price", 0, "Max prompt price per 1M tokens")
	flags.Float64Var(&maxCompletion, "max-completion-price", 0, "Max completion price per 1M tokens")
	flags.StringSliceVar(&requiredParams, "require-param", nil, "Required API parameter (repeatable)")
	flags.StringSliceVar(&providers, "provider", nil, "Allowed provider prefix (repeatable)")
	flags.IntVar(&minAgeDays, "min-age-days", 0, "Exclude models younger than this")
	flags.IntVar(&maxAgeDays, "max-age-days", 0, "Exclude models older than this")
	flags.BoolVar(&excludeFree, "exclude-free", false, "Exclude free models")

	flags.StringVar(&strategy, "strategy", "", "Ranking strategy (ordinal, weighted)")
	flags.StringVar(&routing, "routing", "", "Provider routing preference (price, throughput, latency)")
	flags.BoolVar(&preferNewer, "prefer-newer", false, "Break ordinal ties toward newer models")
	flags.BoolVar(&exacto, "exacto", false, "Prefer :exacto variants when tools are required")

	flags.IntVarP(&limit, "limit", "n", 5, "Shortlist size")
	flags.StringVar(&verbosity, "verbosity", "compact", "Response shape (ids, compact, standard, raw)")
	flags.BoolVar(&forceRefresh, "force-refresh", false, "Bypass the catalog freshness gate")
	flags.BoolVar(&checkEndpoints, "check-endpoints", false, "Flag endpoints missing required parameters")
	flags.BoolVar(&noSkeleton, "no-skeleton", false, "Omit the request skeleton at standard verbosity")

	return cmd
}

func runRecommend(ctx context.Context, root *RootCommand, input map[string]any) error {
	gw := root.Gateway()
	opts := root.OutputOptions()

	req := &gateway.Request{
		Type:  gateway.TypeQuery,
		Unit:  "recommend.task2model",
		Input: input,
	}

	resp := gw.Handle(ctx, req)

	if !resp.Success {
		PrintError(fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message), opts)
		return fmt.Errorf("recommend failed: %s", resp.Error.Message)
	}

	return PrintOutput(resp.Data, opts)
}
