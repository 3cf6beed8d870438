package blog

import "strings"

// WordsPerMinute is the reading speed used by ReadingMinutes.
const WordsPerMinute = 200

// WordCount counts whitespace separated tokens across every heading and body
// paragraph of content.
func WordCount(content []ContentBlock) int {
	total := 0
	for _, block := range content {
		total += len(strings.Fields(block.Heading))
		for _, p := range block.Body {
			total += len(strings.Fields(p.Text))
		}
	}
	return total
}

// ReadingMinutes estimates reading time as ceil(words / WordsPerMinute).
// A post with no words takes 0 minutes.
func ReadingMinutes(content []ContentBlock) int {
	words := WordCount(content)
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
