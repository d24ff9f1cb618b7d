package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
	"github.com/modelscout/modelscout/pkg/unit/catalog"
)

type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
	OutputYAML  OutputFormat = "yaml"
)

type OutputOptions struct {
	Format OutputFormat
	Quiet  bool
	Writer io.Writer
}

func NewOutputOptions() *OutputOptions {
	return &OutputOptions{
		Format: OutputTable,
		Quiet:  false,
		Writer: os.Stdout,
	}
}

func FormatOutput(data any, format OutputFormat) (string, error) {
	switch format {
	case OutputJSON:
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal JSON: %w", err)
		}
		return string(b), nil
	case OutputYAML:
		b, err := yaml.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("marshal YAML: %w", err)
		}
		return string(b), nil
	default:
		return formatTable(data), nil
	}
}

// formatTable renders gateway response payloads for the terminal. The
// recommendation envelope and the model profile get dedicated layouts;
// anything else falls back to a sorted key/value listing.
func formatTable(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case map[string]any:
		if _, ok := v["models"]; ok {
			return renderShortlist(v)
		}
		if _, ok := v["model"]; ok {
			return renderProfile(v)
		}
		return renderKeyValues(v)
	default:
		return renderKeyValues(toMap(data))
	}
}

// renderShortlist prints the ranked models as a table followed by the
// exclusion tally and any degradation note.
func renderShortlist(envelope map[string]any) string {
	var sb strings.Builder

	models, _ := envelope["models"].([]any)
	if len(models) == 0 {
		sb.WriteString("No models matched the constraints.\n")
	} else {
		w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tCONTEXT\tPROMPT $/1M\tCOMPLETION $/1M\tSCORE")
		for _, m := range models {
			switch entry := m.(type) {
			case string:
				fmt.Fprintf(w, "%s\t\t\t\t\n", entry)
			case map[string]any:
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					cell(entry["id"]),
					cell(entry["context"]),
					cell(entry["prompt_per_1m"]),
					cell(entry["completion_per_1m"]),
					cell(entry["score"]))
			case *openrouter.Model:
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t\n",
					entry.ID, entry.ContextLength,
					pricePerM(catalog.PromptPricePerM(entry)),
					pricePerM(catalog.CompletionPricePerM(entry)))
			default:
				fmt.Fprintf(w, "%s\t\t\t\t\n", cell(m))
			}
		}
		w.Flush()
	}

	if total, ok := envelope["total"]; ok {
		fmt.Fprintf(&sb, "\n%d of %s matching models shown\n", len(models), cell(total))
	}
	if pr, ok := envelope["price_range"].(string); ok && pr != "" {
		fmt.Fprintf(&sb, "Price range: %s\n", pr)
	}
	if exclusions, ok := envelope["exclusions"].(map[string]int); ok && len(exclusions) > 0 {
		sb.WriteString("Excluded: ")
		sb.WriteString(formatTally(exclusions))
		sb.WriteString("\n")
	}
	if note, ok := envelope["note"].(string); ok && note != "" {
		fmt.Fprintf(&sb, "Note: %s\n", note)
	}

	return sb.String()
}

func renderProfile(result map[string]any) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	if m, ok := result["model"].(*openrouter.Model); ok {
		fmt.Fprintf(w, "ID\t%s\n", m.ID)
		fmt.Fprintf(w, "Name\t%s\n", m.Name)
		fmt.Fprintf(w, "Context\t%d\n", m.ContextLength)
		fmt.Fprintf(w, "Prompt\t%s per 1M tokens\n", pricePerM(catalog.PromptPricePerM(m)))
		fmt.Fprintf(w, "Completion\t%s per 1M tokens\n", pricePerM(catalog.CompletionPricePerM(m)))
		if m.Architecture.Modality != "" {
			fmt.Fprintf(w, "Modality\t%s\n", m.Architecture.Modality)
		}
		if len(m.SupportedParameters) > 0 {
			fmt.Fprintf(w, "Parameters\t%s\n", strings.Join(m.SupportedParameters, ", "))
		}
	} else {
		fmt.Fprintf(w, "Model\t%s\n", cell(result["model"]))
	}

	if endpoints, ok := result["endpoints"].([]openrouter.Endpoint); ok {
		fmt.Fprintf(w, "Endpoints\t%d\n", len(endpoints))
		for _, ep := range endpoints {
			fmt.Fprintf(w, "  %s\t%s, context %d\n", ep.Name, ep.ProviderName, ep.ContextLength)
		}
	}
	if params, ok := result["parameters"].([]string); ok {
		fmt.Fprintf(w, "Endpoint parameters\t%s\n", strings.Join(params, ", "))
	}
	fmt.Fprintf(w, "Auth used\t%s\n", cell(result["auth_used"]))

	w.Flush()
	return sb.String()
}

func renderKeyValues(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%s\n", k, cell(m[k]))
	}
	w.Flush()
	return sb.String()
}

// toMap flattens arbitrary payloads (structs, typed maps) through JSON
// so the fallback renderer only deals with one shape.
func toMap(data any) map[string]any {
	b, err := json.Marshal(data)
	if err != nil {
		return map[string]any{"value": fmt.Sprintf("%v", data)}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{"value": string(b)}
	}
	return m
}

func formatTally(tally map[string]int) string {
	reasons := make([]string, 0, len(tally))
	for r := range tally {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)

	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, fmt.Sprintf("%s=%d", r, tally[r]))
	}
	return strings.Join(parts, ", ")
}

func pricePerM(price float64, known bool) string {
	if !known {
		return "unknown"
	}
	if price == 0 {
		return "free"
	}
	return fmt.Sprintf("$%.2f", price)
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return fmt.Sprintf("%t", val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.3f", val)
	case int, int64:
		return fmt.Sprintf("%d", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

func PrintOutput(data any, opts *OutputOptions) error {
	if opts.Quiet {
		return nil
	}

	output, err := FormatOutput(data, opts.Format)
	if err != nil {
		return err
	}

	fmt.Fprint(opts.Writer, output)
	return nil
}

func PrintError(err error, opts *OutputOptions) {
	switch opts.Format {
	case OutputJSON, OutputYAML:
		payload := map[string]any{
			"success": false,
			"error":   map[string]string{"message": err.Error()},
		}
		out, ferr := FormatOutput(payload, opts.Format)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(os.Stderr, strings.TrimRight(out, "\n"))
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func PrintSuccess(message string, opts *OutputOptions) {
	if opts.Quiet {
		return
	}

	switch opts.Format {
	case OutputJSON, OutputYAML:
		payload := map[string]any{"success": true, "message": message}
		out, err := FormatOutput(payload, opts.Format)
		if err != nil {
			fmt.Fprintln(opts.Writer, message)
			return
		}
		fmt.Fprintln(opts.Writer, strings.TrimRight(out, "\n"))
	default:
		fmt.Fprintln(opts.Writer, message)
	}
}
