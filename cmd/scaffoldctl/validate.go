package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/scaffold-engine/internal/template"
)

// #region validate-cmd

type validateRow struct {
	TemplateID string `json:"template_id"`
	Passed     bool   `json:"passed"`
	Reason     string `json:"reason"`
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate every template definition in the templates directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := template.LoadDir(flagTemplatesDir)
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				return fmt.Errorf("no templates found in %s", flagTemplatesDir)
			}

			rows := make([]validateRow, 0, len(templates))
			failures := 0
			for _, tpl := range templates {
				result := template.Validate(tpl)
				if !result.Passed {
					failures++
				}
				rows = append(rows, validateRow{
					TemplateID: tpl.ID,
					Passed:     result.Passed,
					Reason:     result.Reason,
				})
			}

			if flagJSON {
				data, err := json.MarshalIndent(rows, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			} else {
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TEMPLATE\tPASSED\tREASON")
				for _, r := range rows {
					fmt.Fprintf(w, "%s\t%v\t%s\n", r.TemplateID, r.Passed, r.Reason)
				}
				w.Flush()
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d templates failed validation", failures, len(templates))
			}
			return nil
		},
	}
}

// #endregion validate-cmd
