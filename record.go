package blockstate

import (
	"sort"
	"strings"
)

// Record is the structured form of a block state: a namespaced name and a
// string property map. It is used both for historical encodings and for the
// canonical form they migrate to.
//
// Records compare structurally through Key; a nil and an empty property map
// are the same record.
type Record struct {
	Name       string
	Properties map[string]string
}

// NewRecord builds a Record from alternating key/value pairs. A trailing key
// without a value is ignored.
func NewRecord(name string, pairs ...string) Record {
	r := Record{Name: name}
	if len(pairs) < 2 {
		return r
	}
	r.Properties = make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Properties[pairs[i]] = pairs[i+1]
	}
	return r
}

// Field reads a top level field by its grammar name.
func (r Record) Field(name string) (any, bool) {
	switch name {
	case "Name":
		return r.Name, true
	case "Properties":
		if r.Properties == nil {
			return nil, false
		}
		return r.cloneProperties(), true
	default:
		return nil, false
	}
}

// Property returns a single property value.
func (r Record) Property(key string) (string, bool) {
	value, ok := r.Properties[key]
	return value, ok
}

// Namespace returns the part of Name before the first colon, or "minecraft"
// when the name is unqualified.
func (r Record) Namespace() string {
	if ns, _, ok := strings.Cut(r.Name, ":"); ok {
		return ns
	}
	return "minecraft"
}

// Path returns the part of Name after the namespace.
func (r Record) Path() string {
	if _, path, ok := strings.Cut(r.Name, ":"); ok {
		return path
	}
	return r.Name
}

// Equal reports structural equality.
func (r Record) Equal(other Record) bool {
	if r.Name != other.Name || len(r.Properties) != len(other.Properties) {
		return false
	}
	for key, value := range r.Properties {
		if v, ok := other.Properties[key]; !ok || v != value {
			return false
		}
	}
	return true
}

// IsZero reports whether the record carries neither name nor properties.
func (r Record) IsZero() bool {
	return r.Name == "" && len(r.Properties) == 0
}

// Clone returns a copy detached from the receiver's property map.
func (r Record) Clone() Record {
	return Record{Name: r.Name, Properties: r.cloneProperties()}
}

// Key returns the normalized serialization used as a map key.
func (r Record) Key() string {
	return r.String()
}

// String renders the record in the grammar accepted by ParseRecord, with
// property keys sorted. Keys that are not plain identifiers are quoted so
// distinct records never render alike.
func (r Record) String() string {
	var b strings.Builder
	b.WriteString("{Name:")
	writeQuoted(&b, r.Name)
	if len(r.Properties) > 0 {
		b.WriteString(",Properties:{")
		for i, key := range r.propertyKeys() {
			if i > 0 {
				b.WriteByte(',')
			}
			if isBareKey(key) {
				b.WriteString(key)
			} else {
				writeQuoted(&b, key)
			}
			b.WriteByte(':')
			writeQuoted(&b, r.Properties[key])
		}
		b.WriteByte('}')
	}
	b.WriteByte('}')
	return b.String()
}

func (r Record) propertyKeys() []string {
	keys := make([]string, 0, len(r.Properties))
	for key := range r.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (r Record) cloneProperties() map[string]string {
	if r.Properties == nil {
		return nil
	}
	out := make(map[string]string, len(r.Properties))
	for key, value := range r.Properties {
		out[key] = value
	}
	return out
}

func writeQuoted(b *strings.Builder, value string) {
	b.WriteByte('\'')
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '\'' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('\'')
}

// isBareKey reports whether key can be written unquoted: an ASCII letter or
// underscore followed by letters, digits or underscores.
func isBareKey(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
