package types

// FieldDescriptor is one queryable column declared by the schema source.
type FieldDescriptor struct {
	Name        string   `json:"name"`
	Type        DataType `json:"type"`
	Description string   `json:"description,omitempty"`
}
