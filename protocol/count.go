package protocol

import (
	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count the rows matching all constraints",
	RunE: func(cmd *cobra.Command, _ []string) error {
		request, err := loadRequest(true)
		if err != nil {
			return err
		}

		eval, err := evaluate(cmd.Context(), request, true)
		if err != nil {
			return err
		}
		return printReport(cmd.OutOrStdout(), eval.report)
	},
}
