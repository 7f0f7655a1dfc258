package postgres

// jsonObject keeps NOT NULL jsonb columns as {} instead of null.
func jsonObject(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
