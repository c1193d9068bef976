package pageinfo

// SchemaOrg is a single Schema.org item found in a JSON-LD script.
type SchemaOrg struct {
	// Type is the item's @type, or the first string of an @type array.
	// Empty when the item declares no usable type.
	Type string `json:"type,omitempty"`

	// Value is the full JSON-LD object.
	Value Value `json:"value"`
}

// GetString returns the named property as a string.
func (s SchemaOrg) GetString(key string) (string, bool) {
	return s.Value.Get(key).AsString()
}

// GetInt returns the named property as an integer.
func (s SchemaOrg) GetInt(key string) (int64, bool) {
	return s.Value.Get(key).AsInt()
}

// GetFloat returns the named property as a float.
func (s SchemaOrg) GetFloat(key string) (float64, bool) {
	return s.Value.Get(key).AsFloat()
}

// GetBool returns the named property as a boolean.
func (s SchemaOrg) GetBool(key string) (bool, bool) {
	return s.Value.Get(key).AsBool()
}

// GetObject returns the named property if it is an object.
func (s SchemaOrg) GetObject(key string) (Value, bool) {
	v := s.Value.Get(key)
	return v, v.Kind() == KindObject
}

// GetArray returns the named property if it is an array.
func (s SchemaOrg) GetArray(key string) ([]Value, bool) {
	return s.Value.Get(key).AsArray()
}

// AppendSchemaOrg parses a JSON-LD document and appends its items to dst
// until dst holds max items. A single object yields one item; a top-level
// array or an object whose @graph member is an array yields one item per
// object element. Non-object elements are skipped. Invalid JSON appends
// nothing.
func AppendSchemaOrg(dst []SchemaOrg, data []byte, max int) []SchemaOrg {
	if len(dst) >= max {
		return dst
	}

	node, err := ParseValue(data)
	if err != nil {
		return dst
	}

	var elems []Value
	switch node.Kind() {
	case KindArray:
		elems, _ = node.AsArray()
	case KindObject:
		if graph, ok := node.Get("@graph").AsArray(); ok {
			elems = graph
		} else {
			elems = []Value{node}
		}
	default:
		return dst
	}

	for _, elem := range elems {
		if len(dst) >= max {
			break
		}
		if elem.Kind() != KindObject {
			continue
		}
		dst = append(dst, SchemaOrg{Type: schemaType(elem), Value: elem})
	}
	return dst
}

func schemaType(v Value) string {
	t := v.Get("@type")
	if s, ok := t.AsString(); ok {
		return s
	}
	if arr, ok := t.AsArray(); ok {
		for _, e := range arr {
			if s, ok := e.AsString(); ok {
				return s
			}
		}
	}
	return ""
}
