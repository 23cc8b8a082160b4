package index

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"policyrag/internal/domain"
	"policyrag/internal/embedding"
)

// ErrNotReady is returned when an index is queried before a successful
// build. It is never silently turned into an empty result.
var ErrNotReady = errors.New("index not built")

// Index holds embedded chunks and answers exact nearest-neighbor queries by
// cosine similarity. It is immutable after Build; replacing an index is the
// only allowed form of update.
type Index struct {
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
	ready     bool
}

func New() *Index { return &Index{} }

// Build embeds all chunks in one batch call, L2-normalizes the vectors and
// stores them. Chunks keep their insertion order, which later breaks
// similarity ties.
func (idx *Index) Build(embedder embedding.Embedder, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := embedder.EmbedBatch(texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	dimension := embedder.Dimension()
	for i, v := range vectors {
		if len(v) != dimension {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dimension)
		}
		Normalize(v)
	}
	idx.dimension = dimension
	idx.vectors = vectors
	idx.chunks = chunks
	idx.ready = true
	return nil
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int { return len(idx.chunks) }

// Search returns up to k (chunk, similarity) pairs ordered by similarity
// descending, ties broken by insertion order. Requesting more results than
// the index holds returns everything. Similarity is cosine similarity
// mapped into [0, 1]: for the squared L2 distance d between normalized
// vectors it equals 1 - d/2.
func (idx *Index) Search(vector []float64, k int) ([]domain.RetrievalResult, error) {
	if !idx.ready {
		return nil, ErrNotReady
	}
	if k <= 0 {
		k = 5
	}
	order := make([]int, len(idx.vectors))
	scores := make([]float64, len(idx.vectors))
	for i := range idx.vectors {
		order[i] = i
		scores[i] = similarity(idx.vectors[i], vector)
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	if k > len(order) {
		k = len(order)
	}
	results := make([]domain.RetrievalResult, 0, k)
	for _, i := range order[:k] {
		results = append(results, domain.RetrievalResult{Chunk: idx.chunks[i], Similarity: scores[i]})
	}
	return results, nil
}

// Normalize scales the vector to unit L2 length in place. Zero vectors are
// left untouched.
func Normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

func similarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	if dot < 0 {
		return 0
	}
	if dot > 1 {
		return 1
	}
	return dot
}
