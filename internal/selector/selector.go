package selector

import (
	"strings"

	"policyrag/internal/domain"
)

// Selector decides which policy document sets to query for a question.
// It is the only branching decision logic in the pipeline that is not
// delegated to a semantic service.
type Selector struct {
	classifier domain.IntentClassifier
}

func New(classifier domain.IntentClassifier) *Selector {
	return &Selector{classifier: classifier}
}

// Select is deterministic given a deterministic classifier and never
// mutates its inputs. PoliciesToQuery is never empty when the user has at
// least one policy type.
func (s *Selector) Select(question string, policies domain.UserPolicies) domain.SelectionResult {
	available := policies.Types()

	// A single policy type needs no classification.
	if len(available) == 1 {
		only := available[0]
		return domain.SelectionResult{
			PoliciesToQuery: []domain.PolicyType{only},
			Classification: domain.Classification{
				Classification: string(only),
				Confidence:     "high",
				Reasoning:      "User only has " + string(only) + " insurance",
			},
		}
	}

	classification := s.classifier.Classify(question)
	switch classification.Classification {
	case "auto":
		if has(available, domain.PolicyAuto) {
			return domain.SelectionResult{
				PoliciesToQuery: []domain.PolicyType{domain.PolicyAuto},
				Classification:  classification,
			}
		}
		// The question is about a line the user does not carry; degrade to
		// querying what they have rather than failing.
		return domain.SelectionResult{PoliciesToQuery: available, Classification: classification}
	case "property":
		if has(available, domain.PolicyProperty) {
			return domain.SelectionResult{
				PoliciesToQuery: []domain.PolicyType{domain.PolicyProperty},
				Classification:  classification,
			}
		}
		return domain.SelectionResult{PoliciesToQuery: available, Classification: classification}
	case "both":
		return domain.SelectionResult{PoliciesToQuery: available, Classification: classification}
	default:
		// Ambiguous or unrecognized: query everything and ask the user to
		// narrow it down.
		return domain.SelectionResult{
			PoliciesToQuery:       available,
			NeedsClarification:    true,
			ClarificationQuestion: clarificationQuestion(available),
			Classification:        classification,
		}
	}
}

func has(types []domain.PolicyType, want domain.PolicyType) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

func clarificationQuestion(available []domain.PolicyType) string {
	labels := make([]string, len(available))
	for i, t := range available {
		labels[i] = t.Label()
	}
	return "Your question could relate to either " + strings.Join(labels, " or ") +
		" insurance. Are you asking about your vehicle or your home/property?"
}
