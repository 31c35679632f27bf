package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJokeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "prefix and suffix",
			input:    "Here's a joke: Why did X? Hope you enjoyed it!",
			expected: "Why did X?",
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: "",
		},
		{
			name:     "case insensitive prefix",
			input:    "JOKE: Knock knock.",
			expected: "Knock knock.",
		},
		{
			name:     "longer prefix wins by order",
			input:    "Here's a joke for you: I used to be a banker.",
			expected: "I used to be a banker.",
		},
		{
			name:     "only first prefix removed",
			input:    "Joke: Joke: double",
			expected: "Joke: double",
		},
		{
			name:     "blank lines collapsed",
			input:    "\n\nWhy do programmers prefer dark mode?\n\n\n   Because light attracts bugs.  \n\n",
			expected: "Why do programmers prefer dark mode?\nBecause light attracts bugs.",
		},
		{
			name:     "boilerplate only",
			input:    "Here you go: Did you like it?",
			expected: "",
		},
		{
			name:     "suffix case insensitive",
			input:    "A pun walks into a bar. hope THAT made you smile!",
			expected: "A pun walks into a bar.",
		},
		{
			name:     "untouched",
			input:    "Why did the chicken cross the road?",
			expected: "Why did the chicken cross the road?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJokeText(tt.input))
		})
	}
}

func TestCleanJokeText_Idempotent(t *testing.T) {
	inputs := []string{
		"Here's a joke: Why did X? Hope you enjoyed it!",
		"  line one \n\n line two  ",
		"Sure, here's a joke:\nWhat do you call a fake noodle?\nAn impasta.\nDid you like it?",
		"",
		"Joke:",
	}
	for _, in := range inputs {
		once := CleanJokeText(in)
		assert.Equal(t, once, CleanJokeText(once), in)
	}
}
