package agents

import (
	"fmt"

	"policyrag/internal/domain"
)

// Interpreter extracts structured scenario details (asset, event, location)
// from a coverage question.
type Interpreter struct {
	llm   ChatCompleter
	model string
}

func NewInterpreter(llm ChatCompleter, model string) *Interpreter {
	return &Interpreter{llm: llm, model: model}
}

const interpreterSystem = "You are a helpful insurance scenario interpretation assistant. Always respond with valid JSON only."

const interpreterPromptFmt = `You are an insurance scenario interpreter. Extract structured information from the user's coverage question.

Question: %q

Extract the following information:

1. ASSET - What is being insured?
   Examples: car, vehicle, house, home, roof, contents, personal property, dwelling

2. EVENT - What happened or what is the user asking about?
   Examples: theft, fire, flood, collision, accident, hail, wind, water damage, break-in

3. LOCATION - Where did it occur or where is the context?
   Examples: road, highway, garage, driveway, parked, inside house, outside, at home

4. POLICY_TYPE - Which insurance type applies?
   - "auto" if clearly about a vehicle/car
   - "property" if clearly about a house/home/dwelling
   - "ambiguous" if unclear or could apply to both

5. CONFIDENCE - How confident are you in this interpretation?
   - "high" if all details are clear
   - "medium" if some details are inferred
   - "low" if the question is vague

6. NEEDS_CLARIFICATION - Does the user need to clarify?
   - true if policy_type is "ambiguous" AND confidence is "low" or "medium"
   - false otherwise

Respond in this exact JSON format:
{
    "asset": "extracted asset",
    "event": "extracted event",
    "location": "extracted location or 'unknown'",
    "policy_type": "auto" OR "property" OR "ambiguous",
    "confidence": "high" OR "medium" OR "low",
    "reasoning": "Brief explanation of your interpretation",
    "needs_clarification": true OR false
}

Only respond with the JSON, nothing else.`

// UnknownScenario is the maximally-uncertain interpretation substituted for
// malformed service output.
func UnknownScenario(reason string) domain.ScenarioDetails {
	return domain.ScenarioDetails{
		Asset:              "unknown",
		Event:              "unknown",
		Location:           "unknown",
		PolicyTypeGuess:    "ambiguous",
		Confidence:         "low",
		Reasoning:          reason,
		NeedsClarification: true,
	}
}

// Interpret never fails: transport errors and malformed output degrade to
// the maximally-uncertain scenario.
func (i *Interpreter) Interpret(question string) domain.ScenarioDetails {
	raw, err := i.llm.Complete(i.model, interpreterSystem, fmt.Sprintf(interpreterPromptFmt, question), 0.1, 400)
	if err != nil {
		return UnknownScenario("Interpretation service unavailable")
	}
	parsed, ok := decodeJSON[struct {
		Asset              string `json:"asset"`
		Event              string `json:"event"`
		Location           string `json:"location"`
		PolicyType         string `json:"policy_type"`
		Confidence         string `json:"confidence"`
		Reasoning          string `json:"reasoning"`
		NeedsClarification bool   `json:"needs_clarification"`
	}](raw)
	if !ok {
		return UnknownScenario("Unable to parse interpretation response")
	}
	return domain.ScenarioDetails{
		Asset:              orUnknown(parsed.Asset),
		Event:              orUnknown(parsed.Event),
		Location:           orUnknown(parsed.Location),
		PolicyTypeGuess:    orDefault(parsed.PolicyType, "ambiguous"),
		Confidence:         orDefault(parsed.Confidence, "low"),
		Reasoning:          parsed.Reasoning,
		NeedsClarification: parsed.NeedsClarification,
	}
}

func orUnknown(s string) string { return orDefault(s, "unknown") }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
