package domain

// Metadata is the open-ended attribute document attached to every entity.
// It has no fixed schema and round-trips through persistence exactly.
type Metadata map[string]any

// Clone returns a deep copy of the metadata, including nested maps and lists.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, nested := range val {
			out[k] = cloneValue(nested)
		}
		return out
	case Metadata:
		return map[string]any(val.Clone())
	case []any:
		out := make([]any, len(val))
		for i, nested := range val {
			out[i] = cloneValue(nested)
		}
		return out
	default:
		return v
	}
}
