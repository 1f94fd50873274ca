package types

// Row is one dataset row as raw cells, in the dataset's column order.
type Row []string

// Header maps column names to their cell index within a Row.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader indexes the column names; when a name repeats, the first column wins.
func NewHeader(names []string) *Header {
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, exists := index[name]; !exists {
			index[name] = i
		}
	}
	return &Header{names: names, index: index}
}

func (h *Header) Names() []string {
	return h.names
}

func (h *Header) Index(name string) (int, bool) {
	idx, ok := h.index[name]
	return idx, ok
}

// Record is a Row viewed through its Header.
type Record struct {
	header *Header
	row    Row
}

func NewRecord(header *Header, row Row) Record {
	return Record{header: header, row: row}
}

// RecordFromMap builds a single-row Record, mostly useful for callers holding map shaped data.
func RecordFromMap(values map[string]string) Record {
	names := make([]string, 0, len(values))
	row := make(Row, 0, len(values))
	for name, value := range values {
		names = append(names, name)
		row = append(row, value)
	}
	return NewRecord(NewHeader(names), row)
}

// Get returns the raw cell for a column; ok is false when the column is absent from the dataset
// or the row is too short to hold it.
func (r Record) Get(name string) (string, bool) {
	if r.header == nil {
		return "", false
	}
	idx, ok := r.header.Index(name)
	if !ok || idx >= len(r.row) {
		return "", false
	}
	return r.row[idx], true
}

func (r Record) Row() Row {
	return r.row
}
