package agents

import (
	"fmt"
	"strings"

	"policyrag/internal/domain"
)

// Classifier determines whether a question concerns auto insurance,
// property insurance, both, or is ambiguous.
type Classifier struct {
	llm   ChatCompleter
	model string
}

func NewClassifier(llm ChatCompleter, model string) *Classifier {
	return &Classifier{llm: llm, model: model}
}

const classifierSystem = "You are a helpful insurance classification assistant. Always respond with valid JSON only."

const classifierPromptFmt = `You are an insurance policy classifier. Analyze the following coverage question and determine if it relates to AUTO insurance, PROPERTY (home) insurance, BOTH policies, or if it's AMBIGUOUS (unclear which).

Question: %q

AUTO insurance typically covers:
- Vehicles, cars, motorcycles
- Vehicle theft, damage, collisions
- Auto accidents, traffic incidents
- Vehicle comprehensive/collision coverage

PROPERTY insurance typically covers:
- Houses, homes, residences, dwellings
- Home damage (fire, wind, theft inside home)
- Property structures (roof, walls, foundation)
- Personal belongings inside home

BOTH - User explicitly wants information about all their policies:
- Questions containing "all my policies", "any of my policies", "across all policies"
- Questions asking "which policy covers" or "is this covered in any policy"
- User wants comprehensive coverage information from both auto and property

AMBIGUOUS - Unclear which specific policy (but not explicitly asking about both):
- Generic terms like "fire" or "theft" without specifying what/where
- "Water damage" without context
- Scenarios that could affect both but user hasn't indicated they want info on both

Respond in this exact JSON format:
{
    "classification": "auto" OR "property" OR "both" OR "ambiguous",
    "confidence": "high" OR "medium" OR "low",
    "reasoning": "Brief explanation of why this classification was chosen"
}

Only respond with the JSON, nothing else.`

// ambiguousDefault is the documented safe substitute for malformed
// classifier output.
func ambiguousDefault(reason string) domain.Classification {
	return domain.Classification{
		Classification: "ambiguous",
		Confidence:     "low",
		Reasoning:      reason,
	}
}

// Classify never fails: transport errors and malformed output both degrade
// to the ambiguous/low default.
func (c *Classifier) Classify(question string) domain.Classification {
	raw, err := c.llm.Complete(c.model, classifierSystem, fmt.Sprintf(classifierPromptFmt, question), 0.1, 300)
	if err != nil {
		return ambiguousDefault("Classification service unavailable")
	}
	parsed, ok := decodeJSON[struct {
		Classification string `json:"classification"`
		Confidence     string `json:"confidence"`
		Reasoning      string `json:"reasoning"`
	}](raw)
	if !ok || parsed.Classification == "" {
		return ambiguousDefault("Unable to parse classification response")
	}
	return domain.Classification{
		Classification: strings.ToLower(strings.TrimSpace(parsed.Classification)),
		Confidence:     parsed.Confidence,
		Reasoning:      parsed.Reasoning,
	}
}
