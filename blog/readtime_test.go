package blog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("palavra ", n))
}

func TestReadingMinutes(t *testing.T) {
	tests := []struct {
		name    string
		content []ContentBlock
		want    int
	}{
		{"no content", nil, 0},
		{"empty strings", []ContentBlock{{Heading: "", Body: []Paragraph{{Text: "   "}}}}, 0},
		{"one word", []ContentBlock{{Heading: "Hello"}}, 1},
		{"exactly 200", []ContentBlock{{Heading: words(10), Body: []Paragraph{{Text: words(190)}}}}, 1},
		{"201 rounds up", []ContentBlock{{Heading: words(1), Body: []Paragraph{{Text: words(200)}}}}, 2},
		{
			"sums across blocks",
			[]ContentBlock{
				{Heading: words(2), Body: []Paragraph{{Text: words(100)}, {Text: words(98)}}},
				{Heading: words(1), Body: []Paragraph{{Text: words(199)}}},
			},
			2,
		},
		{"400 words", []ContentBlock{{Body: []Paragraph{{Text: words(400)}}}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadingMinutes(tt.content))
		})
	}
}

func TestWordCountSplitsOnAnyWhitespace(t *testing.T) {
	content := []ContentBlock{{
		Heading: "  Como   utilizar\tHooks ",
		Body:    []Paragraph{{Text: "Lorem ipsum\ndolor\n\nsit amet"}},
	}}
	assert.Equal(t, 8, WordCount(content))
}
