package table

// Record is a single row keyed by column name, Fields keeps the order the
// columns were first seen in.
type Record struct {
	Fields []string
	Values map[string]string
}

func NewRecord() Record {
	return Record{Values: map[string]string{}}
}

// Set assigns a value, a field that was not seen before is appended to Fields.
func (r *Record) Set(field, value string) {
	if r.Values == nil {
		r.Values = map[string]string{}
	}
	if _, ok := r.Values[field]; !ok {
		r.Fields = append(r.Fields, field)
	}
	r.Values[field] = value
}

func (r Record) Get(field string) string {
	return r.Values[field]
}

func (r Record) Has(field string) bool {
	_, ok := r.Values[field]
	return ok
}

// SameFields reports whether both records have the same set of fields, regardless of order.
func (r Record) SameFields(other Record) bool {
	if len(r.Fields) != len(other.Fields) {
		return false
	}
	for _, f := range r.Fields {
		if !other.Has(f) {
			return false
		}
	}
	return true
}
