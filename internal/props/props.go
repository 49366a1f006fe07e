// Package props parses line-oriented key=value property files.
//
// The format is the lowest common denominator shared by target-definition
// files and generated configuration: one property per line, keys and values
// trimmed, blank lines and #-comments ignored.
package props

import (
	"sort"
	"strings"
)

// ParseLines converts property lines into a key/value map.
// A line without '=' maps the whole trimmed line to the empty string.
// Duplicate keys resolve last-wins.
func ParseLines(lines []string) map[string]string {
	result := make(map[string]string)
	for _, line := range lines {
		key, value, ok := SplitLine(line)
		if !ok {
			continue
		}
		result[key] = value
	}
	return result
}

// Parse parses raw property-file bytes into a key/value map.
func Parse(data []byte) map[string]string {
	return ParseLines(SplitContent(string(data)))
}

// SplitContent splits file content into lines, tolerating CRLF endings.
// A trailing newline does not produce a final empty line.
func SplitContent(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// SplitLine splits one property line into a trimmed key and value.
// Returns ok=false for blank lines and #-comments.
func SplitLine(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}
	key, value, found := strings.Cut(trimmed, "=")
	if !found {
		return trimmed, "", true
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

// Keys returns the sorted key set of a property map.
func Keys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
