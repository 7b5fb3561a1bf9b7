package flow

import (
	"sort"
	"strings"

	"github.com/panbanda/callflow/pkg/callgraph"
)

// Resolution counts how call sites fared during symbol resolution.
// Unresolved and ambiguous calls are dropped, never errors.
type Resolution struct {
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
	Ambiguous  int `json:"ambiguous"`
}

// Resolve maps raw call sites onto definition IDs. It is a best-effort
// heuristic, not type inference; the tie-break policy is explicit and
// ordered so tests can pin the behavior under ambiguity:
//
//  1. a self/cls/this receiver with a caller inside a class prefers the
//     same-name definition in that same class;
//  2. a single global candidate for the simple name wins;
//  3. multiple candidates with no class affinity are dropped (conservative:
//     never guess);
//  4. unknown names (builtins, external libraries, dynamic targets) are
//     dropped.
//
// The name index is built over the complete definition set before any call
// site is examined; resolving against a partial index would make results
// depend on file arrival order.
func Resolve(defs []callgraph.Definition) ([]callgraph.Edge, Resolution) {
	byName := make(map[string][]string)
	byID := make(map[string]*callgraph.Definition, len(defs))
	for i := range defs {
		def := &defs[i]
		byName[def.Name] = append(byName[def.Name], def.ID)
		byID[def.ID] = def
	}
	for name := range byName {
		sort.Strings(byName[name])
	}

	var res Resolution
	edgeSet := make(map[callgraph.Edge]struct{})

	for i := range defs {
		caller := &defs[i]
		for _, site := range caller.CallSites {
			target, outcome := resolveSite(caller, site.Callee, byName, byID)
			switch outcome {
			case outcomeResolved:
				res.Resolved++
				edgeSet[callgraph.Edge{From: caller.ID, To: target}] = struct{}{}
			case outcomeAmbiguous:
				res.Ambiguous++
			default:
				res.Unresolved++
			}
		}
	}

	edges := make([]callgraph.Edge, 0, len(edgeSet))
	for e := range edgeSet {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges, res
}

type outcome int

const (
	outcomeUnresolved outcome = iota
	outcomeAmbiguous
	outcomeResolved
)

func resolveSite(caller *callgraph.Definition, callee string, byName map[string][]string, byID map[string]*callgraph.Definition) (string, outcome) {
	receiver := ""
	name := callee
	if idx := strings.LastIndex(callee, "."); idx >= 0 {
		receiver = callee[:idx]
		name = callee[idx+1:]
	}

	candidates := byName[name]
	if len(candidates) == 0 {
		return "", outcomeUnresolved
	}

	// Same-class preference: a self/cls/this receiver is the one case with
	// enough local evidence to pick among same-named definitions.
	if (receiver == "self" || receiver == "cls" || receiver == "this") && caller.EnclosingClass != "" {
		var sameClass []string
		for _, id := range candidates {
			if byID[id].EnclosingClass == caller.EnclosingClass {
				sameClass = append(sameClass, id)
			}
		}
		if len(sameClass) == 1 {
			return sameClass[0], outcomeResolved
		}
		if len(sameClass) > 1 {
			return "", outcomeAmbiguous
		}
		// No same-class match: fall through to the global rules.
	}

	if len(candidates) == 1 {
		return candidates[0], outcomeResolved
	}
	return "", outcomeAmbiguous
}
