package embedding

// Embedder converts free text into a numeric vector representation.
// Output dimensionality is fixed per instance, and identical input must
// produce identical vectors within a session.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(text string) ([]float64, error)
	EmbedBatch(texts []string) ([][]float64, error)
}
