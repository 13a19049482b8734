package llm

import "strings"

// StripCodeFences removes a surrounding markdown fence (```json ... ``` or
// ``` ... ```) that models add despite being told not to.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimSpace(s[len("```json"):])
	case strings.HasPrefix(s, "```JSON"):
		s = strings.TrimSpace(s[len("```JSON"):])
	case strings.HasPrefix(s, "```"):
		s = strings.TrimSpace(s[len("```"):])
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
