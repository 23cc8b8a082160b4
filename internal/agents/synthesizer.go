package agents

import (
	"fmt"
	"strings"

	"policyrag/internal/domain"
)

// Synthesizer produces a structured coverage verdict plus a plain-English
// explanation grounded in retrieved policy text.
type Synthesizer struct {
	llm   ChatCompleter
	model string
}

func NewSynthesizer(llm ChatCompleter, model string) *Synthesizer {
	return &Synthesizer{llm: llm, model: model}
}

const synthesizerSystem = "You are a helpful insurance policy assistant. Your role is to explain insurance coverage in plain English based on policy documents. Always ground your answers in the provided policy text and be clear about coverage limitations."

const synthesizerPromptFmt = `Based on the following insurance policy excerpts, answer the user's coverage question.

User Question: %q

Policy Excerpts:
%s

Instructions:
1. Determine if the scenario is covered: "Yes", "No", or "It depends"
2. Provide a clear explanation in a semi-formal friendly tone - professional yet approachable
3. Write in plain language that's easy to understand, using some contractions (doesn't, you'll, etc.) where natural
4. Keep the explanation concise (2-4 complete sentences)
5. Reference specific policy sections when relevant (e.g., "as stated in Part D - Physical Damage Coverage")
6. DO NOT use any emojis, symbols, or bullet points in the explanation
7. Write the explanation as flowing paragraph text that sounds like a helpful insurance agent explaining things

Respond in this exact JSON format:
{
    "coverage_result": "Yes" OR "No" OR "It depends",
    "explanation": "A clear, semi-formal friendly explanation grounded only in the excerpts above."
}

IMPORTANT:
- Base your answer ONLY on the provided policy excerpts
- Do not make assumptions about coverage not mentioned in the excerpts
- If the policy explicitly excludes something, say "No"
- If the policy explicitly covers something, say "Yes"
- Use "It depends" when coverage is conditional or unclear

Respond with ONLY the JSON, nothing else.`

// BuildContext renders retrieved chunks into the numbered-reference block
// the synthesis prompt expects.
func BuildContext(results []domain.RetrievalResult) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("[Reference %d] %s (%s Policy):\n%s\n",
			i+1, r.Chunk.SectionName, strings.ToUpper(string(r.Chunk.PolicyType)), r.Chunk.Text))
	}
	return strings.Join(parts, "\n---\n")
}

// Synthesize returns the structured verdict and true, or a zero result and
// false when the service output does not parse; the caller substitutes the
// fallback verdict.
func (s *Synthesizer) Synthesize(question string, context []domain.RetrievalResult, policyApplied string) (domain.SynthesisResult, bool) {
	prompt := fmt.Sprintf(synthesizerPromptFmt, question, BuildContext(context))
	raw, err := s.llm.Complete(s.model, synthesizerSystem, prompt, 0.2, 1500)
	if err != nil {
		return domain.SynthesisResult{}, false
	}
	parsed, ok := decodeJSON[struct {
		CoverageResult string `json:"coverage_result"`
		Explanation    string `json:"explanation"`
	}](raw)
	if !ok {
		return domain.SynthesisResult{}, false
	}
	verdict, ok := normalizeVerdict(parsed.CoverageResult)
	if !ok || strings.TrimSpace(parsed.Explanation) == "" {
		return domain.SynthesisResult{}, false
	}
	return domain.SynthesisResult{CoverageResult: verdict, Explanation: parsed.Explanation}, true
}

func normalizeVerdict(raw string) (domain.CoverageResult, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes":
		return domain.CoverageYes, true
	case "no":
		return domain.CoverageNo, true
	case "it depends", "itdepends", "depends":
		return domain.CoverageDepends, true
	default:
		return "", false
	}
}
