package rag

import (
	"regexp"
	"strings"
)

var sentenceBoundary = regexp.MustCompile(`(?s)(.*?[.!?])(?:\s+|$)`)

// splitSentences breaks text on sentence-ending punctuation. Trailing text
// without terminal punctuation becomes its own sentence.
func splitSentences(text string) []string {
	var sentences []string
	rest := text
	for {
		loc := sentenceBoundary.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		sentence := strings.TrimSpace(rest[loc[2]:loc[3]])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		rest = rest[loc[1]:]
	}
	if tail := strings.TrimSpace(rest); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// ChunkDocument splits a document into overlapping chunks along sentence
// boundaries. chunkSize is a soft cap in characters; overlap controls how
// many trailing characters of one chunk reappear at the start of the next so
// a fact straddling a boundary is retrievable from either side.
func ChunkDocument(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, sentence := range sentences {
		if currentLen+len(sentence) > chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))

			// carry the last sentences that fit the overlap budget
			var carried []string
			carriedLen := 0
			for i := len(current) - 1; i >= 0; i-- {
				if carriedLen+len(current[i]) > overlap {
					break
				}
				carried = append([]string{current[i]}, carried...)
				carriedLen += len(current[i])
			}
			current = carried
			currentLen = carriedLen
		}
		current = append(current, sentence)
		currentLen += len(sentence)
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
