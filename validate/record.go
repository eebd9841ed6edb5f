package validate

import (
	"fmt"

	"github.com/syssam/graphbundle"
)

// Record is a validated bundle flattened for persistence.
type Record struct {
	Type graphbundle.EntityType
	// ID is empty for a record that has not been persisted yet.
	ID string
	// Data holds the checked property values in stored form.
	Data map[string]any
	// Unique lists the properties of Data declared unique.
	Unique []string
	// Relations holds the relation targets in bundle order.
	Relations []RelationTarget
}

// RelationTarget is one child of a validated relation.
type RelationTarget struct {
	Name      string
	Label     string
	Direction graphbundle.Direction
	Dependent bool
	Record    *Record
}

// UniqueValues returns the unique properties of the record with their
// values rendered as strings.
func (r *Record) UniqueValues() map[string]string {
	if len(r.Unique) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Unique))
	for _, name := range r.Unique {
		if v, ok := r.Data[name]; ok {
			out[name] = fmt.Sprint(v)
		}
	}
	return out
}

// Targets returns the relation targets with the given name.
func (r *Record) Targets(name string) []*Record {
	var out []*Record
	for _, t := range r.Relations {
		if t.Name == name {
			out = append(out, t.Record)
		}
	}
	return out
}
