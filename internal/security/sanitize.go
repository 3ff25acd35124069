package security

import (
	"regexp"
	"strings"
)

var htmlTagPattern = regexp.MustCompile(`(?s)<[^>]*>`)

// Denylist applied after tag stripping. It is not a substitute for
// parameterised queries or output encoding.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script.*?>.*?</script>`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)vbscript\s*:`),
	regexp.MustCompile(`(?i)data\s*:\s*text/html`),
	regexp.MustCompile(`(?i)\bon[a-z]+\s*=`),
	regexp.MustCompile(`(?i)\bunion\s+(all\s+)?select\b`),
	regexp.MustCompile(`(?i)\b(drop|truncate|alter)\s+table\b`),
	regexp.MustCompile(`(?i)\binsert\s+into\b`),
	regexp.MustCompile(`(?i)\bdelete\s+from\b`),
	regexp.MustCompile(`(?i)\bexec(ute)?\s*\(`),
	regexp.MustCompile(`(?i)\bor\s+1\s*=\s*1\b`),
	regexp.MustCompile(`(?s)/\*.*?\*/`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`;\s*$`),
}

// SanitizeString strips markup and denylisted SQL/XSS fragments.
func SanitizeString(s string) string {
	s = dangerousPatterns[0].ReplaceAllString(s, "")
	s = htmlTagPattern.ReplaceAllString(s, "")
	for _, re := range dangerousPatterns[1:] {
		s = re.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// SanitizeInput returns data of the same shape with every string sanitized.
// Maps and slices are copied, never modified in place.
func SanitizeInput(data any) any {
	switch v := data.(type) {
	case string:
		return SanitizeString(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = SanitizeInput(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = SanitizeInput(item)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, item := range v {
			out[k] = SanitizeString(item)
		}
		return out
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = SanitizeString(item)
		}
		return out
	default:
		return v
	}
}

// SanitizeMap is SanitizeInput for the common JSON-object case, leaving the
// values under skip keys untouched.
func SanitizeMap(data map[string]any, skip func(key string) bool) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if skip != nil && skip(k) {
			out[k] = v
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = SanitizeMap(nested, skip)
			continue
		}
		out[k] = SanitizeInput(v)
	}
	return out
}
