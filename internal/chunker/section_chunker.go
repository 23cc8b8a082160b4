package chunker

import (
	"regexp"
	"strings"

	"policyrag/internal/domain"
)

// Keywords are the clause-category keyword sets. Heading keywords are
// matched against a chunk's heading text, body phrases against its text.
type Keywords struct {
	HeadingExclusion []string
	HeadingCoverage  []string
	BodyExclusion    []string
	BodyCoverage     []string
}

// DefaultKeywords returns the stock keyword sets for common policy wordings.
func DefaultKeywords() Keywords {
	return Keywords{
		HeadingExclusion: []string{"exclusion", "not covered"},
		HeadingCoverage:  []string{"coverage", "perils insured"},
		BodyExclusion:    []string{"not covered", "we do not cover", "excluded", "exclusion"},
		BodyCoverage:     []string{"we will pay", "we cover", "coverage includes"},
	}
}

// SectionChunker splits a policy document along its heading hierarchy and
// tags every chunk with a clause category.
type SectionChunker struct {
	keywords Keywords
}

func NewSectionChunker(kw Keywords) *SectionChunker {
	def := DefaultKeywords()
	if len(kw.HeadingExclusion) == 0 {
		kw.HeadingExclusion = def.HeadingExclusion
	}
	if len(kw.HeadingCoverage) == 0 {
		kw.HeadingCoverage = def.HeadingCoverage
	}
	if len(kw.BodyExclusion) == 0 {
		kw.BodyExclusion = def.BodyExclusion
	}
	if len(kw.BodyCoverage) == 0 {
		kw.BodyCoverage = def.BodyCoverage
	}
	return &SectionChunker{keywords: kw}
}

var (
	sectionTitleRe    = regexp.MustCompile(`^## (.+?)(?:\n|$)`)
	subsectionTitleRe = regexp.MustCompile(`^### (.+?)(?:\n|$)`)
)

// PolicyTypeFromSource derives the policy type from a document identifier
// (filename or category tag). Content is never inspected.
func PolicyTypeFromSource(source string) domain.PolicyType {
	if strings.Contains(strings.ToLower(source), "auto") {
		return domain.PolicyAuto
	}
	return domain.PolicyProperty
}

// Chunk partitions the document text by its "## " / "### " heading
// hierarchy. The text before the first heading becomes a single general
// "Policy Header" chunk. A document with no headings yields one chunk
// spanning the full text, never an empty result for non-empty input.
func (c *SectionChunker) Chunk(source, content string) []domain.Chunk {
	policyType := PolicyTypeFromSource(source)
	var chunks []domain.Chunk

	sections := strings.Split(content, "\n## ")
	for i, section := range sections {
		if i == 0 {
			header := strings.TrimSpace(section)
			if header == "" {
				continue
			}
			// Covers both the pre-heading header and documents with no
			// sections at all, which become one general chunk.
			chunks = append(chunks, domain.Chunk{
				Text:           header,
				PolicyType:     policyType,
				SourceDocument: source,
				SectionName:    "Policy Header",
				Category:       domain.ClauseGeneral,
			})
			continue
		}
		section = "## " + section
		title := "Unknown Section"
		if m := sectionTitleRe.FindStringSubmatch(section); m != nil {
			title = strings.TrimSpace(m[1])
		}

		subsections := strings.Split(section, "\n### ")
		if len(subsections) == 1 {
			text := strings.TrimSpace(section)
			chunks = append(chunks, domain.Chunk{
				Text:           text,
				PolicyType:     policyType,
				SourceDocument: source,
				SectionName:    title,
				Category:       c.categorize(title, text),
			})
			continue
		}
		for j, subsection := range subsections {
			if j == 0 {
				intro := strings.TrimSpace(subsection)
				if intro == "" {
					continue
				}
				chunks = append(chunks, domain.Chunk{
					Text:           intro,
					PolicyType:     policyType,
					SourceDocument: source,
					SectionName:    title,
					Category:       c.categorize(title, intro),
				})
				continue
			}
			subsection = "### " + subsection
			subtitle := "Unknown Subsection"
			if m := subsectionTitleRe.FindStringSubmatch(subsection); m != nil {
				subtitle = strings.TrimSpace(m[1])
			}
			text := strings.TrimSpace(subsection)
			name := title + " - " + subtitle
			chunks = append(chunks, domain.Chunk{
				Text:           text,
				PolicyType:     policyType,
				SourceDocument: source,
				SectionName:    name,
				Category:       c.categorize(subtitle, text),
			})
		}
	}
	return chunks
}

// categorize applies the keyword rules in priority order, first match wins:
// heading exclusion, heading coverage, body exclusion, body coverage.
func (c *SectionChunker) categorize(heading, body string) domain.ClauseCategory {
	headingLower := strings.ToLower(heading)
	if containsAny(headingLower, c.keywords.HeadingExclusion) {
		return domain.ClauseExclusion
	}
	if containsAny(headingLower, c.keywords.HeadingCoverage) {
		return domain.ClauseCoverage
	}
	bodyLower := strings.ToLower(body)
	if containsAny(bodyLower, c.keywords.BodyExclusion) {
		return domain.ClauseExclusion
	}
	if containsAny(bodyLower, c.keywords.BodyCoverage) {
		return domain.ClauseCoverage
	}
	return domain.ClauseGeneral
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
