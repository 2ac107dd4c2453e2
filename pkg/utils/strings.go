package utils

// RemoveEmptyStrings filters blank entries out of a slice, preserving order.
func RemoveEmptyStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
