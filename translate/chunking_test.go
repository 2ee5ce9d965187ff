package translate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
}

func TestChunkByParagraphs(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxTokens int
		want      []string
	}{
		{
			name:      "short text stays whole",
			text:      "one\n\ntwo",
			maxTokens: 100,
			want:      []string{"one\n\ntwo"},
		},
		{
			name:      "each paragraph fills a chunk",
			text:      "aaaaaaaa\n\nbbbbbbbb\n\ncccccccc",
			maxTokens: 3,
			want:      []string{"aaaaaaaa", "bbbbbbbb", "cccccccc"},
		},
		{
			name:      "small paragraphs merge",
			text:      "aa\n\nbb\n\n" + strings.Repeat("c", 20),
			maxTokens: 3,
			want:      []string{"aa\n\nbb", strings.Repeat("c", 20)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChunkByParagraphs(tt.text, tt.maxTokens))
		})
	}
}
