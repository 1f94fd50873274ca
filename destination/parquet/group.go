package parquet

import (
	"fmt"
	"reflect"
	"strings"

	pqgo "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/parquet-go/parquet-go/encoding"
)

// orderedGroup is a group node whose fields keep the order they were added in. pqgo.Group sorts
// its fields by name, which would reorder the dataset header.
type orderedGroup []pqgo.Field

func (g *orderedGroup) add(name string, node pqgo.Node) {
	*g = append(*g, &orderedField{Node: node, name: name})
}

func (g orderedGroup) ID() int { return 0 }

func (g orderedGroup) String() string {
	names := make([]string, len(g))
	for i, f := range g {
		names[i] = f.Name()
	}
	return fmt.Sprintf("group{%s}", strings.Join(names, ", "))
}

func (g orderedGroup) Type() pqgo.Type { return pqgo.Group{}.Type() }

func (g orderedGroup) Optional() bool { return false }

func (g orderedGroup) Repeated() bool { return false }

func (g orderedGroup) Required() bool { return true }

func (g orderedGroup) Leaf() bool { return false }

func (g orderedGroup) Fields() []pqgo.Field { return g }

func (g orderedGroup) Encoding() encoding.Encoding { return nil }

func (g orderedGroup) Compression() compress.Codec { return nil }

// GoType is a struct with one field per column; column names need not be Go identifiers.
func (g orderedGroup) GoType() reflect.Type {
	fields := make([]reflect.StructField, len(g))
	for i, f := range g {
		fields[i] = reflect.StructField{
			Name: fmt.Sprintf("Field%d", i),
			Type: f.GoType(),
			Tag:  reflect.StructTag(fmt.Sprintf(`parquet:%q`, f.Name())),
		}
	}
	return reflect.StructOf(fields)
}

type orderedField struct {
	pqgo.Node
	name string
}

func (f *orderedField) Name() string { return f.name }

// Value resolves the field in a map[string]T or in the struct returned by GoType.
func (f *orderedField) Value(base reflect.Value) reflect.Value {
	if base.Kind() == reflect.Interface {
		if base.IsNil() {
			return reflect.ValueOf(nil)
		}
		base = base.Elem()
	}
	if base.Kind() == reflect.Pointer {
		if base.IsNil() {
			return reflect.ValueOf(nil)
		}
		base = base.Elem()
	}

	switch base.Kind() {
	case reflect.Map:
		return base.MapIndex(reflect.ValueOf(f.name))
	case reflect.Struct:
		for i := 0; i < base.NumField(); i++ {
			if base.Type().Field(i).Tag.Get("parquet") == f.name {
				return base.Field(i)
			}
		}
	}
	return reflect.ValueOf(nil)
}
