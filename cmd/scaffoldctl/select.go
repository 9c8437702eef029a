package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/scaffold-engine/internal/selection"
)

// #region select-cmd

func newSelectCmd() *cobra.Command {
	var (
		toolName      string
		callerID      string
		domain        string
		priorID       string
		minConfidence float64
		margin        float64
		topN          int
	)

	cmd := &cobra.Command{
		Use:   "select [input text]",
		Short: "Dry-run template selection against an input",
		Args:  cobra.MinimumNArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}

			p := selection.DefaultParams()
			p.MinConfidence = minConfidence
			p.AmbiguityMargin = margin
			if domain != "" || priorID != "" {
				p.Context = map[string]string{}
				if domain != "" {
					p.Context[selection.ContextDomain] = domain
				}
				if priorID != "" {
					p.Context[selection.ContextPriorTemplate] = priorID
				}
			}

			input := strings.Join(args, " ")
			engine := selection.NewEngine(nil)
			_, expl := engine.Match(reg, toolName, input, callerID, p)

			if flagJSON {
				return printSelectJSON(expl, topN)
			}
			printSelectTable(expl, topN)
			return nil
		},
	}

	cmd.Flags().StringVar(&toolName, "tool", "", "tool name for direct binding")
	cmd.Flags().StringVar(&callerID, "caller", "", "caller template id")
	cmd.Flags().StringVar(&domain, "domain", "", "active domain context")
	cmd.Flags().StringVar(&priorID, "prior", "", "prior template id context")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "confidence floor (0 disables)")
	cmd.Flags().Float64Var(&margin, "margin", 0, "ambiguity margin (0 disables)")
	cmd.Flags().IntVar(&topN, "top", 5, "show top N scored templates")
	return cmd
}

// #endregion select-cmd

// #region select-output

type selectRow struct {
	TemplateID    string  `json:"template_id"`
	Total         float64 `json:"total"`
	Surface       float64 `json:"surface"`
	Intent        float64 `json:"intent"`
	Structural    float64 `json:"structural"`
	Contextual    float64 `json:"contextual"`
	Reinforcement float64 `json:"reinforcement"`
	Bias          float64 `json:"bias"`
}

type selectOutput struct {
	SelectedID string      `json:"selected_id"`
	Mode       string      `json:"mode"`
	Confidence float64     `json:"confidence"`
	Ambiguous  bool        `json:"ambiguous"`
	Scores     []selectRow `json:"scores,omitempty"`
}

func buildSelectOutput(expl selection.Explanation, topN int) selectOutput {
	out := selectOutput{
		SelectedID: expl.SelectedID,
		Mode:       string(expl.Mode),
		Confidence: expl.Confidence,
		Ambiguous:  expl.Ambiguous,
	}
	for i, s := range expl.Scores {
		if topN > 0 && i >= topN {
			break
		}
		out.Scores = append(out.Scores, selectRow{
			TemplateID:    s.TemplateID,
			Total:         s.Total,
			Surface:       s.Layers.Surface,
			Intent:        s.Layers.Intent,
			Structural:    s.Layers.Structural,
			Contextual:    s.Layers.Contextual,
			Reinforcement: s.Reinforcement,
			Bias:          s.Bias,
		})
	}
	return out
}

func printSelectJSON(expl selection.Explanation, topN int) error {
	data, err := json.MarshalIndent(buildSelectOutput(expl, topN), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printSelectTable(expl selection.Explanation, topN int) {
	out := buildSelectOutput(expl, topN)
	fmt.Printf("selected: %s (mode=%s confidence=%.4f ambiguous=%v)\n\n",
		orDash(out.SelectedID), out.Mode, out.Confidence, out.Ambiguous)
	if len(out.Scores) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TEMPLATE\tTOTAL\tSURFACE\tINTENT\tSTRUCT\tCONTEXT\tREINF\tBIAS")
	for _, r := range out.Scores {
		fmt.Fprintf(w, "%s\t%.4f\t%.3f\t%.3f\t%.3f\t%.3f\t%.2f\t%.2f\n",
			r.TemplateID, r.Total, r.Surface, r.Intent, r.Structural, r.Contextual, r.Reinforcement, r.Bias)
	}
	w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// #endregion select-output
