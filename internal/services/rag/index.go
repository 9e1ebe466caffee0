package rag

import (
	"encoding/json"
	"sort"
)

// indexEntry pairs a stored chunk with its decoded vector.
type indexEntry struct {
	Content string
	Source  string
	Vector  []float32
}

// flatIndex is an exact nearest-neighbor index over squared L2 distance.
// The knowledge base is course-lab sized (hundreds of chunks), so a linear
// scan per query is the whole index.
type flatIndex struct {
	entries []indexEntry
}

func newFlatIndex(entries []indexEntry) *flatIndex {
	return &flatIndex{entries: entries}
}

// Search returns the k closest entries, ordered by ascending distance.
// Entries whose vector dimension does not match the query are skipped.
func (f *flatIndex) Search(query []float32, k int) []Context {
	if len(f.entries) == 0 || len(query) == 0 || k <= 0 {
		return nil
	}

	results := make([]Context, 0, len(f.entries))
	for _, e := range f.entries {
		if len(e.Vector) != len(query) {
			continue
		}
		results = append(results, Context{
			Content: e.Content,
			Source:  e.Source,
			Score:   squaredL2(query, e.Vector),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// EncodeVector serializes an embedding for the jsonb column.
func EncodeVector(v []float32) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeVector parses a stored embedding; empty input yields a nil vector.
func DecodeVector(raw string) ([]float32, error) {
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var v []float32
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}
