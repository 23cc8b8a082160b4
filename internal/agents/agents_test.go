package agents

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrag/internal/domain"
)

type fakeLLM struct {
	response string
	err      error

	model      string
	system     string
	lastPrompt string
	calls      int
}

func (f *fakeLLM) Complete(model, system, user string, temperature float64, maxTokens int) (string, error) {
	f.calls++
	f.model = model
	f.system = system
	f.lastPrompt = user
	return f.response, f.err
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fence with preamble", "Here you go:\n```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"unterminated fence", "```json\n{\"a\": 1}", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}  \n", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.in))
		})
	}
}

func TestClassifier_ParsesResponse(t *testing.T) {
	llm := &fakeLLM{response: "```json\n{\"classification\": \"Auto\", \"confidence\": \"high\", \"reasoning\": \"vehicle theft\"}\n```"}
	c := NewClassifier(llm, "model-a")

	got := c.Classify("Is my car covered if stolen?")

	assert.Equal(t, "auto", got.Classification)
	assert.Equal(t, "high", got.Confidence)
	assert.Equal(t, "vehicle theft", got.Reasoning)
	assert.Equal(t, "model-a", llm.model)
	assert.Contains(t, llm.system, "valid JSON only")
	assert.Contains(t, llm.lastPrompt, "Is my car covered if stolen?")
}

func TestClassifier_DegradesToAmbiguous(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
	}{
		{"transport error", &fakeLLM{err: errors.New("boom")}},
		{"malformed json", &fakeLLM{response: "not json at all"}},
		{"empty classification", &fakeLLM{response: `{"classification": "", "confidence": "high"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewClassifier(tt.llm, "m").Classify("q")
			assert.Equal(t, "ambiguous", got.Classification)
			assert.Equal(t, "low", got.Confidence)
			assert.NotEmpty(t, got.Reasoning)
		})
	}
}

func TestInterpreter_ParsesResponse(t *testing.T) {
	llm := &fakeLLM{response: `{
		"asset": "car",
		"event": "theft",
		"location": "driveway",
		"policy_type": "auto",
		"confidence": "high",
		"reasoning": "clear vehicle scenario",
		"needs_clarification": false
	}`}
	i := NewInterpreter(llm, "model-b")

	got := i.Interpret("My car was stolen from the driveway")

	assert.Equal(t, "car", got.Asset)
	assert.Equal(t, "theft", got.Event)
	assert.Equal(t, "driveway", got.Location)
	assert.Equal(t, "auto", got.PolicyTypeGuess)
	assert.False(t, got.NeedsClarification)
	assert.Equal(t, "model-b", llm.model)
}

func TestInterpreter_FillsMissingFields(t *testing.T) {
	llm := &fakeLLM{response: `{"asset": "house", "needs_clarification": true}`}

	got := NewInterpreter(llm, "m").Interpret("q")

	assert.Equal(t, "house", got.Asset)
	assert.Equal(t, "unknown", got.Event)
	assert.Equal(t, "unknown", got.Location)
	assert.Equal(t, "ambiguous", got.PolicyTypeGuess)
	assert.Equal(t, "low", got.Confidence)
	assert.True(t, got.NeedsClarification)
}

func TestInterpreter_DegradesToUnknown(t *testing.T) {
	for _, llm := range []*fakeLLM{
		{err: errors.New("boom")},
		{response: "I cannot answer that."},
	} {
		got := NewInterpreter(llm, "m").Interpret("q")
		assert.Equal(t, "unknown", got.Asset)
		assert.Equal(t, "ambiguous", got.PolicyTypeGuess)
		assert.True(t, got.NeedsClarification)
	}
}

func TestBuildContext(t *testing.T) {
	results := []domain.RetrievalResult{
		{Chunk: domain.Chunk{SectionName: "Part D", PolicyType: domain.PolicyAuto, Text: "covered auto text"}},
		{Chunk: domain.Chunk{SectionName: "Dwelling", PolicyType: domain.PolicyProperty, Text: "dwelling text"}},
	}

	ctx := BuildContext(results)

	assert.Contains(t, ctx, "[Reference 1] Part D (AUTO Policy):\ncovered auto text")
	assert.Contains(t, ctx, "[Reference 2] Dwelling (PROPERTY Policy):\ndwelling text")
	assert.Contains(t, ctx, "\n---\n")
}

func TestSynthesizer_ParsesVerdicts(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.CoverageResult
	}{
		{"Yes", domain.CoverageYes},
		{"no", domain.CoverageNo},
		{"It depends", domain.CoverageDepends},
		{"depends", domain.CoverageDepends},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			llm := &fakeLLM{response: `{"coverage_result": "` + tt.raw + `", "explanation": "because the policy says so"}`}
			got, ok := NewSynthesizer(llm, "m").Synthesize("q", nil, "Auto")
			require.True(t, ok)
			assert.Equal(t, tt.want, got.CoverageResult)
			assert.Equal(t, "because the policy says so", got.Explanation)
		})
	}
}

func TestSynthesizer_RejectsBadOutput(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
	}{
		{"transport error", &fakeLLM{err: errors.New("boom")}},
		{"malformed json", &fakeLLM{response: "sorry"}},
		{"unknown verdict", &fakeLLM{response: `{"coverage_result": "maybe", "explanation": "x"}`}},
		{"empty explanation", &fakeLLM{response: `{"coverage_result": "Yes", "explanation": "  "}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := NewSynthesizer(tt.llm, "m").Synthesize("q", nil, "Auto")
			assert.False(t, ok)
		})
	}
}

func TestSynthesizer_PromptCarriesContext(t *testing.T) {
	llm := &fakeLLM{response: `{"coverage_result": "Yes", "explanation": "covered"}`}
	results := []domain.RetrievalResult{
		{Chunk: domain.Chunk{SectionName: "Part D", PolicyType: domain.PolicyAuto, Text: "theft of your covered auto"}},
	}

	_, ok := NewSynthesizer(llm, "m").Synthesize("Is theft covered?", results, "Auto")

	require.True(t, ok)
	assert.Contains(t, llm.lastPrompt, "Is theft covered?")
	assert.Contains(t, llm.lastPrompt, "theft of your covered auto")
}
