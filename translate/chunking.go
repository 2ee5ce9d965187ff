package translate

import "strings"

const (
	paragraphSeparator    = "\n\n"
	defaultMaxChunkTokens = 2000
)

// EstimateTokens approximates the token count at four bytes per token
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// ChunkByParagraphs splits text on blank lines into chunks of at most maxTokens.
// A single paragraph larger than maxTokens becomes its own chunk.
func ChunkByParagraphs(text string, maxTokens int) []string {
	if EstimateTokens(text) <= maxTokens {
		return []string{text}
	}

	var chunks []string
	current := ""

	for _, paragraph := range strings.Split(text, paragraphSeparator) {
		combined := paragraph
		if current != "" {
			combined = current + paragraphSeparator + paragraph
		}

		if EstimateTokens(combined) <= maxTokens {
			current = combined
			continue
		}

		if current != "" {
			chunks = append(chunks, current)
			current = paragraph
		} else {
			chunks = append(chunks, paragraph)
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}
