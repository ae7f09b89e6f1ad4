package route

import (
	"fmt"
	"strings"

	"github.com/zero-day-ai/kgchat/extract"
	"github.com/zero-day-ai/kgchat/graph"
)

// Intent is the retrieval class selected for a query.
type Intent int

const (
	// IntentGeneric runs the keyword relevance search.
	IntentGeneric Intent = iota

	// IntentTargeted runs one graph operation per matched trigger term.
	IntentTargeted

	// IntentAnalytical runs one canned aggregate query.
	IntentAnalytical
)

// String returns the string representation of the intent.
func (i Intent) String() string {
	switch i {
	case IntentGeneric:
		return "generic"
	case IntentTargeted:
		return "targeted"
	case IntentAnalytical:
		return "analytical"
	default:
		return fmt.Sprintf("Intent(%d)", int(i))
	}
}

// StepKind tags one retrieval step variant. The set is closed; the router's
// handler table covers every kind.
type StepKind int

const (
	// StepPrincipalAccess fetches a principal's RDP edges and group
	// memberships.
	StepPrincipalAccess StepKind = iota

	// StepAttackPaths fetches shortest paths to a target host.
	StepAttackPaths

	// StepHighValueTargets ranks hosts by inbound administrative edges.
	StepHighValueTargets

	// StepDomainAdmins fetches members of domain-admin groups.
	StepDomainAdmins

	// StepKerberoastable fetches principals flagged with a service
	// principal name.
	StepKerberoastable

	// StepAnalytical runs one canned analytical query.
	StepAnalytical

	// StepKeywordSearch runs the generic relevance search.
	StepKeywordSearch
)

// Step is one tagged retrieval operation with its bound parameters. Only the
// fields relevant to the step's kind are set.
type Step struct {
	Kind StepKind

	// Principal binds StepPrincipalAccess.
	Principal string

	// Target binds StepAttackPaths.
	Target string

	// Analytical binds StepAnalytical.
	Analytical graph.AnalyticalQuery

	// Query binds StepKeywordSearch.
	Query string
}

// Plan is the ordered retrieval strategy selected for one query.
type Plan struct {
	Intent Intent
	Steps  []Step
}

// analyticalPhrases signal aggregate intent when found in the lowercased
// query text.
var analyticalPhrases = []string{"top ", "most common", "statistics", "highest risk"}

// BuildPlan classifies the query and returns its retrieval plan. Entities
// must come from the extractor; defaulted (placeholder) principals do not
// count as targeted triggers, so a query with no trigger terms at all routes
// to the generic class.
func BuildPlan(query string, ents extract.Entities, registry []graph.AnalyticalQuery) Plan {
	lower := strings.ToLower(query)

	if hasAnalyticalPhrase(lower) {
		if canned, ok := matchAnalytical(lower, registry); ok {
			return Plan{
				Intent: IntentAnalytical,
				Steps:  []Step{{Kind: StepAnalytical, Analytical: canned}},
			}
		}
		// Aggregate phrasing with no matching canned query falls through
		// to the generic class.
		return genericPlan(query)
	}

	if steps := targetedSteps(lower, ents); len(steps) > 0 {
		return Plan{Intent: IntentTargeted, Steps: steps}
	}
	return genericPlan(query)
}

func genericPlan(query string) Plan {
	return Plan{
		Intent: IntentGeneric,
		Steps:  []Step{{Kind: StepKeywordSearch, Query: query}},
	}
}

func hasAnalyticalPhrase(lower string) bool {
	for _, phrase := range analyticalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// matchAnalytical selects the first registry entry whose name shares a
// keyword with the query. Words of three characters or fewer are ignored on
// both sides so that filler like "top" or "by" never decides the match.
func matchAnalytical(lower string, registry []graph.AnalyticalQuery) (graph.AnalyticalQuery, bool) {
	queryWords := map[string]struct{}{}
	for _, w := range strings.Fields(lower) {
		w = strings.Trim(w, ",.;:!?")
		if len(w) > 3 {
			queryWords[w] = struct{}{}
		}
	}

	for _, canned := range registry {
		for _, w := range strings.Fields(strings.ToLower(canned.Name)) {
			if len(w) <= 3 {
				continue
			}
			if _, ok := queryWords[w]; ok {
				return canned, true
			}
		}
	}
	return graph.AnalyticalQuery{}, false
}

// targetedSteps maps trigger terms to retrieval steps. Triggers are
// independent: every match appends its step, and results are concatenated at
// execution time.
func targetedSteps(lower string, ents extract.Entities) []Step {
	var steps []Step

	if !ents.PrincipalDefaulted {
		for _, principal := range ents.Principals {
			steps = append(steps, Step{Kind: StepPrincipalAccess, Principal: principal})
		}
	}
	if strings.Contains(lower, "attack") && strings.Contains(lower, "path") {
		// The extractor guarantees at least the placeholder host.
		steps = append(steps, Step{Kind: StepAttackPaths, Target: ents.Hosts[0]})
	}
	if strings.Contains(lower, "high value") || strings.Contains(lower, "target") {
		steps = append(steps, Step{Kind: StepHighValueTargets})
	}
	if strings.Contains(lower, "admin") {
		steps = append(steps, Step{Kind: StepDomainAdmins})
	}
	if strings.Contains(lower, "kerberos") || strings.Contains(lower, "vulnerability") {
		steps = append(steps, Step{Kind: StepKerberoastable})
	}
	return steps
}
