package retrieval

import (
	"fmt"
	"sort"
	"strings"

	"policyrag/internal/chunker"
	"policyrag/internal/domain"
	"policyrag/internal/embedding"
	"policyrag/internal/index"
)

// DocumentSource resolves a document identifier to its raw text.
type DocumentSource interface {
	Read(id string) (string, error)
}

// Engine resolves a question plus scenario context into the top-k most
// relevant chunks drawn exclusively from the user's own policy documents,
// scoped to the policy types selected upstream.
type Engine struct {
	chunker  *chunker.SectionChunker
	embedder embedding.Embedder
	source   DocumentSource
	cache    IndexCache
}

func NewEngine(ch *chunker.SectionChunker, embedder embedding.Embedder, source DocumentSource, cache IndexCache) *Engine {
	if cache == nil {
		cache = NopCache{}
	}
	return &Engine{chunker: ch, embedder: embedder, source: source, cache: cache}
}

// AugmentQuery concatenates the raw question with the non-empty,
// non-"unknown" scenario fields. This biases retrieval toward
// scenario-specific vocabulary without discarding the original question.
func AugmentQuery(question string, scenario domain.ScenarioDetails) string {
	parts := []string{question}
	if known(scenario.Asset) {
		parts = append(parts, "Asset: "+scenario.Asset)
	}
	if known(scenario.Event) {
		parts = append(parts, "Event: "+scenario.Event)
	}
	if known(scenario.Location) {
		parts = append(parts, "Location: "+scenario.Location)
	}
	return strings.Join(parts, " | ")
}

func known(field string) bool {
	return field != "" && field != "unknown"
}

// Retrieve builds (or reuses) one index per requested policy type present
// in the user's policy set, queries each independently with the enriched
// query, and merges the per-type result lists into the global top-k.
// A user with no document of a requested type contributes zero results for
// that type; an overall empty result is the caller's condition to signal.
func (e *Engine) Retrieve(user string, question string, scenario domain.ScenarioDetails, policies domain.UserPolicies, types []domain.PolicyType, topK int) ([]domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = 5
	}
	var indexes []*index.Index
	for _, policyType := range types {
		doc, ok := policies[policyType]
		if !ok {
			continue
		}
		idx := e.cache.Get(user, policyType)
		if idx == nil {
			built, err := e.buildIndex(doc)
			if err != nil {
				return nil, err
			}
			if built == nil {
				continue
			}
			e.cache.Put(user, policyType, built)
			idx = built
		}
		indexes = append(indexes, idx)
	}
	if len(indexes) == 0 {
		return nil, nil
	}

	queryVec, err := e.embedder.Embed(AugmentQuery(question, scenario))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	index.Normalize(queryVec)

	var merged []domain.RetrievalResult
	for _, idx := range indexes {
		results, err := idx.Search(queryVec, topK)
		if err != nil {
			return nil, err
		}
		merged = append(merged, results...)
	}
	return MergeTopK(merged, topK), nil
}

// MergeTopK re-sorts the concatenated per-type results by similarity
// descending and cuts to k. Scores alone decide the final order; no policy
// type is weighted above another.
func MergeTopK(results []domain.RetrievalResult, k int) []domain.RetrievalResult {
	out := make([]domain.RetrievalResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// FilterByCategory narrows results to the given clause categories. If the
// filter would eliminate every result it is a no-op: retrieval never comes
// back empty because of an over-aggressive category filter.
func FilterByCategory(results []domain.RetrievalResult, categories []domain.ClauseCategory) []domain.RetrievalResult {
	if len(categories) == 0 {
		return results
	}
	want := make(map[domain.ClauseCategory]struct{}, len(categories))
	for _, c := range categories {
		want[c] = struct{}{}
	}
	var filtered []domain.RetrievalResult
	for _, r := range results {
		if _, ok := want[r.Chunk.Category]; ok {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return results
	}
	return filtered
}

func (e *Engine) buildIndex(doc string) (*index.Index, error) {
	content, err := e.source.Read(doc)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", doc, err)
	}
	chunks := e.chunker.Chunk(doc, content)
	if len(chunks) == 0 {
		return nil, nil
	}
	idx := index.New()
	if err := idx.Build(e.embedder, chunks); err != nil {
		return nil, fmt.Errorf("build index for %s: %w", doc, err)
	}
	return idx, nil
}
