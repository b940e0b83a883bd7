package chunk

// Metadata is the constrained chunk metadata schema: a small set of known
// keys plus a string escape hatch for everything else. Offsets are rune
// offsets into the document source text.
type Metadata struct {
	StartOffset int               `json:"start_offset"`
	EndOffset   int               `json:"end_offset"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Equal reports structural equality, including the escape hatch.
func (m Metadata) Equal(other Metadata) bool {
	if m.StartOffset != other.StartOffset || m.EndOffset != other.EndOffset {
		return false
	}
	if len(m.Extra) != len(other.Extra) {
		return false
	}
	for k, v := range m.Extra {
		if other.Extra[k] != v {
			return false
		}
	}
	return true
}

// WithExtra returns a copy with one escape-hatch key set.
func (m Metadata) WithExtra(key, value string) Metadata {
	extra := make(map[string]string, len(m.Extra)+1)
	for k, v := range m.Extra {
		extra[k] = v
	}
	extra[key] = value
	return Metadata{StartOffset: m.StartOffset, EndOffset: m.EndOffset, Extra: extra}
}
