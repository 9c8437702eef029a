package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/scaffold-engine/internal/health"
)

// #region health-cmd

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report per-template layer coverage and portfolio balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			report, err := health.AnalyzePortfolio(reg.All())
			if err != nil {
				return err
			}

			if flagJSON {
				out, err := health.FormatJSON(report)
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			}
			fmt.Print(health.FormatTable(report))
			return nil
		},
	}
}

// #endregion health-cmd
