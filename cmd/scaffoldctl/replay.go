package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/scaffold-engine/internal/replay"
)

// #region replay-cmd

func newReplayCmd() *cobra.Command {
	var fixturePath string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a recorded selection fixture and report drift",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			fixture, err := replay.LoadFixture(fixturePath)
			if err != nil {
				return err
			}

			results := replay.Replay(reg, fixture)
			summary := replay.Summarize(results)

			if flagJSON {
				return printReplayJSON(results, summary)
			}
			printReplayTable(results, summary)

			if summary.Mismatches > 0 {
				return fmt.Errorf("%d of %d turns drifted from expectations",
					summary.Mismatches, summary.TotalTurns)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fixturePath, "fixture", "", "path to replay fixture JSON")
	_ = cmd.MarkFlagRequired("fixture")
	return cmd
}

// #endregion replay-cmd

// #region replay-output

type replayTurnRow struct {
	TurnID     string  `json:"turn_id"`
	SelectedID string  `json:"selected_id"`
	Mode       string  `json:"mode"`
	Confidence float64 `json:"confidence"`
	ExpectedID string  `json:"expected_id,omitempty"`
	Matched    *bool   `json:"matched,omitempty"`
}

type replayOutput struct {
	Turns      []replayTurnRow `json:"turns"`
	Matches    int             `json:"matches"`
	Mismatches int             `json:"mismatches"`
	NoExpected int             `json:"no_expected"`
}

func buildReplayOutput(results []replay.TurnResult, summary replay.Summary) replayOutput {
	out := replayOutput{
		Matches:    summary.Matches,
		Mismatches: summary.Mismatches,
		NoExpected: summary.NoExpected,
	}
	for _, r := range results {
		row := replayTurnRow{
			TurnID:     r.TurnID,
			SelectedID: r.SelectedID,
			Mode:       string(r.Mode),
			Confidence: r.Confidence,
		}
		if r.HasExpected {
			matched := r.Matched
			row.ExpectedID = r.ExpectedID
			row.Matched = &matched
		}
		out.Turns = append(out.Turns, row)
	}
	return out
}

func printReplayJSON(results []replay.TurnResult, summary replay.Summary) error {
	data, err := json.MarshalIndent(buildReplayOutput(results, summary), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printReplayTable(results []replay.TurnResult, summary replay.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TURN\tSELECTED\tMODE\tCONFIDENCE\tEXPECTED\tOK")
	for _, r := range results {
		expected, ok := "-", "-"
		if r.HasExpected {
			expected = r.ExpectedID
			ok = fmt.Sprintf("%v", r.Matched)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%s\t%s\n",
			r.TurnID, orDash(r.SelectedID), r.Mode, r.Confidence, expected, ok)
	}
	w.Flush()
	fmt.Printf("\nturns=%d matches=%d mismatches=%d unchecked=%d\n",
		summary.TotalTurns, summary.Matches, summary.Mismatches, summary.NoExpected)
}

// #endregion replay-output
