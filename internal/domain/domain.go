package domain

// PolicyType identifies the line of insurance a document belongs to.
type PolicyType string

const (
	PolicyAuto     PolicyType = "auto"
	PolicyProperty PolicyType = "property"
)

// Label returns the user-facing capitalized form ("Auto", "Property").
func (p PolicyType) Label() string {
	switch p {
	case PolicyAuto:
		return "Auto"
	case PolicyProperty:
		return "Property"
	default:
		return string(p)
	}
}

// ClauseCategory classifies a chunk as coverage-granting, exclusionary or
// general/informational text.
type ClauseCategory string

const (
	ClauseCoverage  ClauseCategory = "coverage"
	ClauseExclusion ClauseCategory = "exclusion"
	ClauseGeneral   ClauseCategory = "general"
)

// Chunk is an immutable unit of policy text with clause metadata.
// Created once at document-load time and owned by the index that embedded it.
type Chunk struct {
	Text           string
	PolicyType     PolicyType
	SourceDocument string
	SectionName    string
	Category       ClauseCategory
}

// RetrievalResult is a read-only view of a chunk scored against one query.
// Similarity lies in [0, 1] with 1 meaning identical.
type RetrievalResult struct {
	Chunk      Chunk
	Similarity float64
}

// Classification is the intent classifier's verdict for a question.
type Classification struct {
	Classification string // "auto" | "property" | "both" | "ambiguous"
	Confidence     string // "high" | "medium" | "low"
	Reasoning      string
}

// ScenarioDetails is the structured interpretation of a question.
// Free-text fields use the sentinel "unknown" when nothing was extracted.
type ScenarioDetails struct {
	Asset              string
	Event              string
	Location           string
	PolicyTypeGuess    string
	Confidence         string
	Reasoning          string
	NeedsClarification bool
}

// SelectionResult is the policy selector's decision for one question.
type SelectionResult struct {
	PoliciesToQuery       []PolicyType
	NeedsClarification    bool
	ClarificationQuestion string
	Classification        Classification
}

// CoverageResult is the synthesized verdict for a coverage question.
type CoverageResult string

const (
	CoverageYes     CoverageResult = "Yes"
	CoverageNo      CoverageResult = "No"
	CoverageDepends CoverageResult = "It depends"
)

// SynthesisResult is the answer synthesizer's structured output.
type SynthesisResult struct {
	CoverageResult CoverageResult
	Explanation    string
}

// PipelineResponse is the terminal output of one orchestration run.
// It is always well-formed; failure modes degrade into one of the three
// verdicts plus an explanatory message, never an error to the end user.
type PipelineResponse struct {
	User                  string
	PolicyApplied         string
	CoverageResult        CoverageResult
	Explanation           string
	PolicyReferences      []string
	Disclaimer            string
	NeedsClarification    bool
	ClarificationQuestion string
	ScenarioDetails       ScenarioDetails
	RetrievedChunks       []RetrievalResult
	Trace                 []string
}

// UserPolicies maps policy types to document identifiers for one user.
type UserPolicies map[PolicyType]string

// Types returns the available policy types in stable order (auto before
// property, anything else after).
func (u UserPolicies) Types() []PolicyType {
	var out []PolicyType
	for _, p := range []PolicyType{PolicyAuto, PolicyProperty} {
		if _, ok := u[p]; ok {
			out = append(out, p)
		}
	}
	for p := range u {
		if p != PolicyAuto && p != PolicyProperty {
			out = append(out, p)
		}
	}
	return out
}

// IntentClassifier classifies a question into an insurance line.
// Implementations must return the ambiguous/low default instead of an error
// when the underlying service produces malformed output.
type IntentClassifier interface {
	Classify(question string) Classification
}

// ScenarioInterpreter extracts structured scenario fields from a question.
// Malformed service output degrades to the maximally-uncertain details.
type ScenarioInterpreter interface {
	Interpret(question string) ScenarioDetails
}

// AnswerSynthesizer produces a verdict and explanation from retrieved
// context. The ok flag is false when the service output did not parse; the
// caller substitutes the fallback verdict.
type AnswerSynthesizer interface {
	Synthesize(question string, context []RetrievalResult, policyApplied string) (SynthesisResult, bool)
}

// Retriever resolves a question plus scenario context into the top-k most
// relevant chunks from the given user's documents.
type Retriever interface {
	Retrieve(user string, question string, scenario ScenarioDetails, policies UserPolicies, types []PolicyType, topK int) ([]RetrievalResult, error)
}
