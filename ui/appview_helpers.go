package ui

// boolToString converts a boolean to its string representation
func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// stringToBool converts a string to boolean ("true" -> true, anything else -> false)
func stringToBool(s string) bool {
	return s == "true"
}
