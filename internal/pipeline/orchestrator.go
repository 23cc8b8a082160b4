package pipeline

import (
	"fmt"

	"policyrag/internal/domain"
	"policyrag/internal/selector"
)

// Pipeline states. One request walks
// Interpreting -> Selecting -> (ClarificationNeeded | Retrieving) ->
// (EmptyResult | Synthesizing) -> Done, strictly in order.
type state string

const (
	stateInterpreting        state = "Interpreting"
	stateSelecting           state = "Selecting"
	stateClarificationNeeded state = "ClarificationNeeded"
	stateRetrieving          state = "Retrieving"
	stateEmptyResult         state = "EmptyResult"
	stateSynthesizing        state = "Synthesizing"
	stateDone                state = "Done"
)

// Disclaimer accompanies every response.
const Disclaimer = "This information is for educational purposes only and does not " +
	"constitute a coverage determination or claim decision. Actual coverage " +
	"depends on the specific facts and circumstances of your situation and " +
	"the complete terms and conditions of your policy. For official coverage " +
	"determinations, please contact your insurance company or agent."

const (
	clarifyExplanation    = "Please clarify your question to get a specific coverage answer."
	noResultsExplanation  = "Could not find relevant policy information to answer your question. Please try rephrasing."
	fallbackExplanation   = "I'm having trouble analyzing your policy. Please contact your insurance agent for specific coverage details."
	noPoliciesExplanation = "You have no policy on file, so there is nothing to check your question against. Please add a policy first."
	maxReferenceCitations = 5
)

// Orchestrator composes interpretation, selection, retrieval and synthesis
// into one request/response cycle. It holds no request state; each Process
// call is independent.
type Orchestrator struct {
	interpreter domain.ScenarioInterpreter
	selector    *selector.Selector
	retriever   domain.Retriever
	synthesizer domain.AnswerSynthesizer
	topK        int
}

func New(interpreter domain.ScenarioInterpreter, sel *selector.Selector, retriever domain.Retriever, synthesizer domain.AnswerSynthesizer, topK int) *Orchestrator {
	if topK <= 0 {
		topK = 5
	}
	return &Orchestrator{
		interpreter: interpreter,
		selector:    sel,
		retriever:   retriever,
		synthesizer: synthesizer,
		topK:        topK,
	}
}

// Process answers one coverage question. It always returns a well-formed
// response: every failure mode degrades into one of the three verdicts with
// an explanatory message, never an error to the end user.
func (o *Orchestrator) Process(user, question string, policies domain.UserPolicies) domain.PipelineResponse {
	var trace []string
	enter := func(s state, note string) {
		if note == "" {
			trace = append(trace, string(s))
		} else {
			trace = append(trace, fmt.Sprintf("%s: %s", s, note))
		}
	}

	resp := domain.PipelineResponse{
		User:           user,
		PolicyApplied:  "Unknown",
		CoverageResult: domain.CoverageDepends,
		Disclaimer:     Disclaimer,
	}

	if len(policies) == 0 {
		trace = append(trace, "no policies on file, skipping pipeline")
		resp.Explanation = noPoliciesExplanation
		resp.Trace = trace
		return resp
	}

	enter(stateInterpreting, "extracting scenario details")
	scenario := o.interpreter.Interpret(question)
	trace = append(trace, fmt.Sprintf("  asset=%s event=%s location=%s", scenario.Asset, scenario.Event, scenario.Location))
	resp.ScenarioDetails = scenario

	enter(stateSelecting, "choosing policies to query")
	selection := o.selector.Select(question, policies)
	trace = append(trace, fmt.Sprintf("  policies to query: %v (classification=%s)", selection.PoliciesToQuery, selection.Classification.Classification))

	if selection.NeedsClarification {
		enter(stateClarificationNeeded, "terminating without retrieval")
		resp.NeedsClarification = true
		resp.ClarificationQuestion = selection.ClarificationQuestion
		resp.Explanation = clarifyExplanation
		resp.Trace = trace
		return resp
	}

	enter(stateRetrieving, "querying policy indexes")
	results, err := o.retriever.Retrieve(user, question, scenario, policies, selection.PoliciesToQuery, o.topK)
	if err != nil {
		trace = append(trace, "  retrieval failed: "+err.Error())
		results = nil
	} else {
		trace = append(trace, fmt.Sprintf("  retrieved %d chunks", len(results)))
	}

	if len(results) == 0 {
		enter(stateEmptyResult, "terminating without synthesis")
		resp.Explanation = noResultsExplanation
		resp.Trace = trace
		return resp
	}
	resp.RetrievedChunks = results
	resp.PolicyApplied = policyAppliedFrom(results)
	resp.PolicyReferences = extractReferences(results)

	enter(stateSynthesizing, "generating explanation")
	synthesis, ok := o.synthesizer.Synthesize(question, results, resp.PolicyApplied)
	if ok {
		resp.CoverageResult = synthesis.CoverageResult
		resp.Explanation = synthesis.Explanation
	} else {
		trace = append(trace, "  synthesis output malformed, using fallback verdict")
		resp.CoverageResult = domain.CoverageDepends
		resp.Explanation = fallbackExplanation
	}

	enter(stateDone, "")
	resp.Trace = trace
	return resp
}

// policyAppliedFrom reports which policy lines the retrieved chunks came
// from.
func policyAppliedFrom(results []domain.RetrievalResult) string {
	seen := make(map[domain.PolicyType]bool)
	for _, r := range results {
		seen[r.Chunk.PolicyType] = true
	}
	switch {
	case seen[domain.PolicyAuto] && seen[domain.PolicyProperty]:
		return "Both Auto & Property"
	case seen[domain.PolicyAuto]:
		return "Auto"
	case seen[domain.PolicyProperty]:
		return "Property"
	default:
		return "Unknown"
	}
}

// extractReferences lists the cited sections in retrieval order,
// de-duplicated, capped at maxReferenceCitations.
func extractReferences(results []domain.RetrievalResult) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, r := range results {
		ref := fmt.Sprintf("%s Policy - %s", r.Chunk.PolicyType.Label(), r.Chunk.SectionName)
		if seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
		if len(refs) == maxReferenceCitations {
			break
		}
	}
	return refs
}
