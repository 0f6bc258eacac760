package scanning

import (
	"strings"
)

// cleanTranscript strips the markdown fences and blank edges language models
// like to wrap transcriptions in
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		// drop the opening fence and any language tag on it
		if i := strings.Index(text, "\n"); i >= 0 {
			text = text[i+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
