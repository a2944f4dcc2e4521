package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// BackendReply is the raw result of one successful ask call. It is consumed by
// NormalizeResponse and not kept.
type BackendReply struct {
	Body         string
	SourceHeader string // Value of the x-source response header, if any
}

// NormalizedReply is what gets displayed for an assistant turn.
type NormalizedReply struct {
	Text   string
	Source string
}

type replyKind int

const (
	replyPlain     replyKind = iota // body did not pass the JSON sniff
	replyJSON                       // body parsed as a JSON object
	replyMalformed                  // body looked like JSON but did not parse
)

type parsedReply struct {
	kind   replyKind
	text   string
	source string
}

// looksLikeJSONReply is a cheap sniff that avoids parsing obvious plain text:
// the untrimmed body must open with a brace and mention one of the reply keys.
func looksLikeJSONReply(body string) bool {
	if !strings.HasPrefix(body, "{") {
		return false
	}
	return strings.Contains(body, `"text"`) || strings.Contains(body, `"source"`)
}

func parseReply(body string) parsedReply {
	if !looksLikeJSONReply(body) {
		return parsedReply{kind: replyPlain}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return parsedReply{kind: replyMalformed}
	}

	return parsedReply{
		kind:   replyJSON,
		text:   coerceJSONString(fields["text"]),
		source: coerceJSONString(fields["source"]),
	}
}

// coerceJSONString renders a JSON value as display text: strings unquoted,
// null and absent values empty, everything else as compact JSON.
func coerceJSONString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	if string(bytes.TrimSpace(raw)) == "null" {
		return ""
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// NormalizeResponse converts a backend reply into display text and a source label.
//
// The body and header are the defaults. A body that sniffs and parses as a JSON
// object replaces the text with its trimmed "text" field when that is non-empty,
// and always replaces the source with its trimmed "source" field, even when
// "text" is missing. A body that sniffs as JSON but fails to parse keeps the
// defaults.
func NormalizeResponse(body, sourceHeader string) NormalizedReply {
	out := NormalizedReply{Text: body, Source: sourceHeader}

	parsed := parseReply(body)
	switch parsed.kind {
	case replyJSON:
		if text := strings.TrimSpace(parsed.text); text != "" {
			out.Text = text
		}
		out.Source = strings.TrimSpace(parsed.source)
	case replyMalformed, replyPlain:
		// defaults stand
	}

	return out
}
