package protocol

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd checks constraints against the schema without touching any dataset
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate constraints against the schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		request, err := loadRequest(false)
		if err != nil {
			return err
		}

		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		set, rejected, err := buildConstraints(registry, request)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			accepted := make([]string, 0, len(set))
			for _, c := range set {
				accepted = append(accepted, c.String())
			}
			if err := writeJSON(out, map[string]any{"accepted": accepted, "rejected": rejected}); err != nil {
				return err
			}
		} else {
			for _, c := range set {
				fmt.Fprintf(out, "ok: %s\n", c)
			}
			for _, r := range rejected {
				fmt.Fprintf(out, "rejected: %s\n", r.Error)
			}
		}

		if len(rejected) > 0 {
			return fmt.Errorf("%d of %d constraints rejected", len(rejected), len(set)+len(rejected))
		}
		return nil
	},
}
