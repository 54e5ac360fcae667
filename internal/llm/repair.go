// SPDX-License-Identifier: MIT

package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceRe         = regexp.MustCompile("(?s)^```(?:json)?\\s*|\\s*```$")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// cleanJSON strips code fences and zero-width characters that models
// occasionally wrap around otherwise valid JSON.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = fenceRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\u200b", "")
	return strings.TrimSpace(s)
}

// decodeLenient unmarshals s into v, tolerating trailing commas and
// stray line breaks with a single repair pass before giving up.
func decodeLenient(s string, v any) error {
	s = cleanJSON(s)
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	repaired := strings.ReplaceAll(s, "\n", " ")
	repaired = trailingCommaRe.ReplaceAllString(repaired, "$1")
	return json.Unmarshal([]byte(repaired), v)
}
