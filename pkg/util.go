package pkg

import (
	"strings"
)

// SplitCSV splits a comma separated value, trimming and dropping empty parts
func SplitCSV(value string) []string {
	var parts []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
