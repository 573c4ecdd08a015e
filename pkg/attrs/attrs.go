package attrs

// ToMap converts a key-value attribute slice into a string map, skipping
// malformed pairs. Non-string values are ignored.
func ToMap(attrs []any) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	m := make(map[string]string, len(attrs)/2)
	for i := 0; i < len(attrs)-1; i += 2 {
		k, ok := attrs[i].(string)
		if !ok {
			continue
		}
		if v, ok := attrs[i+1].(string); ok {
			m[k] = v
		}
	}
	return m
}
