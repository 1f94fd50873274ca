package protocol

import (
	"strings"

	"github.com/datazip-inc/slicer/types"
	"github.com/spf13/cobra"
)

// fieldsCmd lists the queryable fields with their types and operators
var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List queryable fields, their types and operators",
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), registry.Fields())
		}

		rows := make([][]string, 0, registry.Len())
		for _, field := range registry.Fields() {
			rows = append(rows, []string{field.Name, string(field.Type), operatorList(field.Type), field.Description})
		}
		writeTable(cmd.OutOrStdout(), []string{"FIELD", "TYPE", "OPERATORS", "DESCRIPTION"}, rows)
		return nil
	},
}

func operatorList(d types.DataType) string {
	ops := types.Operators(d)
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, op.String())
	}
	return strings.Join(names, ", ")
}
