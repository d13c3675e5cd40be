package fhir

import (
	"fmt"
	"strconv"
)

// Field pairs an output column name with the extraction path that fills it.
type Field struct {
	Name string
	Path *Path
}

// Projection is an ordered list of fields describing how to flatten one
// kind of resource into a row.
type Projection []Field

// Row is one flattened resource. A cell holds a single value when the path
// matched once and a slice when it matched several times; columns whose
// path matched nothing are absent.
type Row map[string]interface{}

// ExtractRow flattens one resource according to the projection. Every path
// match is kept, in document order.
func (p Projection) ExtractRow(resource map[string]interface{}) Row {
	row := make(Row, len(p))
	for _, f := range p.Fields() {
		vals := f.Path.Evaluate(resource)
		switch len(vals) {
		case 0:
			// column absent
		case 1:
			row[f.Name] = vals[0]
		default:
			row[f.Name] = vals
		}
	}
	return row
}

// ExtractRows flattens a list of resources, one row per resource.
func (p Projection) ExtractRows(resources []map[string]interface{}) []Row {
	rows := make([]Row, 0, len(resources))
	for _, r := range resources {
		rows = append(rows, p.ExtractRow(r))
	}
	return rows
}

// Fields returns the projection's fields in declaration order.
func (p Projection) Fields() []Field { return p }

// String returns the first match of the named cell rendered as a string,
// or "" when the column is absent.
func (r Row) String(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	if arr, isArr := v.([]interface{}); isArr {
		if len(arr) == 0 {
			return ""
		}
		v = arr[0]
	}
	return fmt.Sprintf("%v", v)
}

// Float returns the first match of the named cell as a float, or nil when
// the column is absent or not numeric.
func (r Row) Float(name string) *float64 {
	v, ok := r[name]
	if !ok || v == nil {
		return nil
	}
	if arr, isArr := v.([]interface{}); isArr {
		if len(arr) == 0 {
			return nil
		}
		v = arr[0]
	}
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return &f
		}
	}
	return nil
}
