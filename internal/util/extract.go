package util

import (
	"regexp"
	"strings"
)

var fencedJSONRegex = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON locates the JSON document inside an LLM reply. Models are asked
// for bare JSON but still wrap it in markdown fences or surround it with
// commentary, so this tries, in order:
//  1. the interior of a ```json fenced block
//  2. the span from the first '{' to the last '}'
//
// Returns false when neither strategy yields a candidate. The candidate is
// not validated here; the caller owns parsing.
func ExtractJSON(text string) (string, bool) {
	if m := fencedJSONRegex.FindStringSubmatch(text); m != nil && m[1] != "" {
		return m[1], true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1], true
	}

	return "", false
}
