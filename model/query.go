package model

import "strings"

// ragPrefix routes a question through document retrieval on the backend.
const ragPrefix = "ask:"

// BuildQuery turns raw user input into the query string sent to the backend.
// With useRAG set, the trimmed input gets an "ask: " prefix unless it already
// starts with "ask:" in any letter case.
func BuildQuery(rawInput string, useRAG bool) string {
	query := strings.TrimSpace(rawInput)
	if useRAG && !hasRAGPrefix(query) {
		return ragPrefix + " " + query
	}
	return query
}

func hasRAGPrefix(query string) bool {
	if len(query) < len(ragPrefix) {
		return false
	}
	return strings.ToLower(query[:len(ragPrefix)]) == ragPrefix
}
