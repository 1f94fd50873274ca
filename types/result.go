package types

// Result is produced once per evaluation request and discarded after emission.
type Result struct {
	// Count is always the exact number of matching rows.
	Count       int64
	Columns     []string
	Rows        []Row
	Constraints ConstraintSet

	materialized bool
}

// NewCountResult is a result whose rows were not kept because Count exceeded the cap.
func NewCountResult(count int64, columns []string, constraints ConstraintSet) *Result {
	return &Result{Count: count, Columns: columns, Constraints: constraints}
}

func NewMaterializedResult(count int64, columns []string, rows []Row, constraints ConstraintSet) *Result {
	if rows == nil {
		rows = []Row{}
	}
	return &Result{Count: count, Columns: columns, Rows: rows, Constraints: constraints, materialized: true}
}

// Materialized reports whether Rows holds the matching rows. A zero match result is materialized
// with no rows; an over-cap result is not.
func (r *Result) Materialized() bool {
	return r != nil && r.materialized
}

// Artifact locates what an emission wrote.
type Artifact struct {
	DataPath        string `json:"data_path"`
	DescriptionPath string `json:"description_path"`
	ArchivePath     string `json:"archive_path,omitempty"`
	RemoteURI       string `json:"remote_uri,omitempty"`
}
