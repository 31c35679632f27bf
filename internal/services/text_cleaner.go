package services

import "strings"

// Lead-ins and sign-offs are checked in order; only the first match is removed.
var (
	jokePrefixes = []string{
		"Here's a joke for you:",
		"Here's a joke:",
		"Joke:",
		"Here you go:",
		"Sure, here's a joke:",
		"Here's one:",
	}
	jokeSuffixes = []string{
		"Hope you enjoyed it!",
		"Hope that made you smile!",
		"I hope you found that funny!",
		"Did you like it?",
	}
)

// CleanJokeText strips conversational filler from model output and collapses
// blank lines. An empty result means the model produced nothing usable.
func CleanJokeText(raw string) string {
	cleaned := strings.TrimSpace(raw)

	for _, prefix := range jokePrefixes {
		if hasPrefixFold(cleaned, prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
			break
		}
	}

	for _, suffix := range jokeSuffixes {
		if hasSuffixFold(cleaned, suffix) {
			cleaned = strings.TrimSpace(cleaned[:len(cleaned)-len(suffix)])
			break
		}
	}

	lines := strings.Split(cleaned, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
