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

package destination

import (
	"context"
	"io"

	"github.com/datazip-inc/slicer/types"
)

type Config interface {
	Validate() error
}

// Table is what a writer serializes: the columns of the dataset, their declared types where the
// schema knows them, and the matching rows.
type Table struct {
	Columns []string
	// Types is parallel to Columns; types.Unknown marks columns missing from the schema.
	Types []types.DataType
	Rows  []types.Row
}

type Writer interface {
	// GetConfigRef allocates the writer's zero config, keeps it and returns a pointer to it, so
	// the caller can decode user settings into it. A zero config means defaults.
	GetConfigRef() Config
	Spec() any
	Type() string
	// Extension of the data file, without the dot.
	Extension() string
	// Check validates the writer config; it must not touch the output location.
	Check(ctx context.Context) error
	// Write serializes the whole table to w. The emitter owns w and its file.
	Write(ctx context.Context, w io.Writer, table *Table) error
}
