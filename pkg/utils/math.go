package utils

// CeilDiv returns a divided by b, rounded up. b must be positive.
func CeilDiv(a, b int) int {
	return (a + b - 1) / b
}
