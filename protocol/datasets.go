package protocol

import (
	"errors"

	"github.com/datazip-inc/slicer/dataset"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the dataset files under the data directory",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if config.DataDir == "" {
			return errors.New("--data-dir not passed")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		infos, err := dataset.List(fs, config.DataDir)
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), infos)
		}

		rows := make([][]string, 0, len(infos))
		for _, info := range infos {
			rows = append(rows, []string{info.Name, string(info.Format), humanize.Bytes(uint64(info.Size))})
		}
		writeTable(cmd.OutOrStdout(), []string{"NAME", "FORMAT", "SIZE"}, rows)
		return nil
	},
}
