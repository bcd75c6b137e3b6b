package config

// asMap/asSlice/asString/asInt coerce the generic any tree produced by
// yaml.v3 (map[string]any, []any, string, int/int64) into the shapes the
// parser expects, reporting ok=false rather than panicking on mismatch so
// callers can turn the mismatch into a ParseError with context.

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}
