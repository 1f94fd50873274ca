/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package protocol

import (
	"fmt"

	"github.com/datazip-inc/slicer/destination"
	"github.com/datazip-inc/slicer/utils/logger"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	// register writers
	_ "github.com/datazip-inc/slicer/destination/local"
	_ "github.com/datazip-inc/slicer/destination/parquet"
)

// filterCmd evaluates a request and emits the matching rows when they fit under the export cap
var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter a dataset and export the matching rows",
	RunE: func(cmd *cobra.Command, _ []string) error {
		request, err := loadRequest(true)
		if err != nil {
			return err
		}

		eval, err := evaluate(cmd.Context(), request, false)
		if err != nil {
			return err
		}
		report, result := eval.report, eval.result

		if !result.Materialized() {
			if err := printReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			return fmt.Errorf("%s rows match, more than the export limit of %s; add constraints to narrow the result",
				humanize.Comma(result.Count), humanize.Comma(int64(config.MaxExportRows)))
		}

		// the emitter probes the output directory, so it is only built for a result it will write
		emitter, err := destination.NewEmitter(cmd.Context(), fs, config.OutputDir, config.Destination,
			destination.WithFields(eval.registry))
		if err != nil {
			return err
		}

		artifact, err := emitter.Emit(cmd.Context(), result)
		if artifact != nil {
			report.Artifact = artifact
		}
		if err != nil {
			// a failed upload still leaves the local files behind
			if perr := printReport(cmd.OutOrStdout(), report); perr != nil {
				logger.Errorf("failed to print report: %s", perr)
			}
			return err
		}

		logger.Infof("request[%s]: wrote %s", report.RequestID, artifact.DataPath)
		return printReport(cmd.OutOrStdout(), report)
	},
}
