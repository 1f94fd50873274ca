package constants

// Schema source column spellings. The first entry of each list is what `slicer fields` prints;
// the rest are accepted aliases found in existing annotation sheets.
var (
	SchemaNameColumns        = []string{"name", "field", "csvheaders", "header"}
	SchemaTypeColumns        = []string{"type", "datatype"}
	SchemaDescriptionColumns = []string{"description", "briefdescription", "desc"}
)
