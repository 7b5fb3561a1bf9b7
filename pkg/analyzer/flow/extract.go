package flow

import (
	"strconv"
	"strings"

	"github.com/panbanda/callflow/pkg/callgraph"
	"github.com/panbanda/callflow/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// scopeKind identifies what a scope-stack frame represents.
type scopeKind int

const (
	scopeModule scopeKind = iota
	scopeClass
	scopeFunction
)

// scopeFrame is one entry on the extraction scope stack.
type scopeFrame struct {
	kind scopeKind
	name string
	// def is set for function frames; call sites append to the innermost
	// function frame's definition.
	def *callgraph.Definition
}

// Extract walks one parsed file and returns its function/method definitions
// with their raw call sites. A file with syntax errors yields no definitions
// and a single issue; the caller decides how to aggregate.
//
// The traversal keeps an explicit scope stack and an explicit work stack
// instead of recursing, so deeply nested source cannot exhaust the Go stack.
// The scoping rule that matters: a call expression belongs to the innermost
// enclosing named function only. Calls inside a nested function never count
// against the outer one, and module-level calls are discarded.
func Extract(result *parser.ParseResult) ([]callgraph.Definition, []callgraph.ParseIssue) {
	if result.HasSyntaxError() {
		return nil, []callgraph.ParseIssue{{
			File:   result.Path,
			Reason: "syntax error",
		}}
	}

	funcTypes := functionNodeTypes(result.Language)
	classTypes := classNodeTypes(result.Language)
	callTypes := callNodeTypes(result.Language)
	if len(funcTypes) == 0 {
		return nil, []callgraph.ParseIssue{{
			File:   result.Path,
			Reason: "unsupported language: " + string(result.Language),
		}}
	}

	var defs []*callgraph.Definition
	scopes := []scopeFrame{{kind: scopeModule}}

	type workItem struct {
		node *sitter.Node
		pop  bool
	}
	work := []workItem{{node: result.Tree.RootNode()}}

	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]

		if item.pop {
			scopes = scopes[:len(scopes)-1]
			continue
		}

		node := item.node
		nodeType := node.Type()

		switch {
		case contains(funcTypes, nodeType):
			name := definitionName(node, result.Source)
			if name == "" {
				break // anonymous: transparent, no frame
			}

			class := nearestClass(scopes)
			if result.Language == parser.LangGo && nodeType == "method_declaration" {
				class = goReceiverType(node, result.Source)
			}

			def := &callgraph.Definition{
				ID:             definitionID(result.Path, scopePath(scopes), name, node.StartPoint().Row+1),
				Name:           name,
				File:           result.Path,
				Line:           node.StartPoint().Row + 1,
				EnclosingClass: class,
				IsAsync:        isAsyncFunction(node),
				IsMethod:       class != "",
			}
			defs = append(defs, def)

			work = append(work, workItem{pop: true})
			scopes = append(scopes, scopeFrame{kind: scopeFunction, name: name, def: def})

		case contains(classTypes, nodeType):
			// Classes push a frame even when they define no functions, so
			// nested definitions compute correct ancestry.
			work = append(work, workItem{pop: true})
			scopes = append(scopes, scopeFrame{kind: scopeClass, name: definitionName(node, result.Source)})

		case contains(callTypes, nodeType):
			if fn := innermostFunction(scopes); fn != nil {
				if callee := calleeName(node, result.Source, result.Language); callee != "" {
					fn.def.CallSites = append(fn.def.CallSites, callgraph.CallSite{
						Callee: callee,
						Line:   node.StartPoint().Row + 1,
					})
				}
			}
		}

		// Children pushed in reverse so traversal stays left-to-right,
		// keeping call-site order equal to source order.
		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			work = append(work, workItem{node: node.Child(i)})
		}
	}

	out := make([]callgraph.Definition, len(defs))
	for i, def := range defs {
		out[i] = *def
	}
	return out, nil
}

// nearestClass returns the name of the closest class frame, or "".
func nearestClass(scopes []scopeFrame) string {
	for i := len(scopes) - 1; i >= 0; i-- {
		if scopes[i].kind == scopeClass {
			return scopes[i].name
		}
	}
	return ""
}

// innermostFunction returns the closest function frame, or nil for
// module-level code.
func innermostFunction(scopes []scopeFrame) *scopeFrame {
	for i := len(scopes) - 1; i >= 0; i-- {
		if scopes[i].kind == scopeFunction {
			return &scopes[i]
		}
	}
	return nil
}

// scopePath joins the class and function frame names outermost-first.
func scopePath(scopes []scopeFrame) string {
	var parts []string
	for _, frame := range scopes {
		if frame.kind != scopeModule && frame.name != "" {
			parts = append(parts, frame.name)
		}
	}
	return strings.Join(parts, ".")
}

// definitionID builds the stable node identifier. Including the scope path
// and line disambiguates same-named siblings, and the format sorts
// deterministically.
func definitionID(file, scope, name string, line uint32) string {
	qualified := name
	if scope != "" {
		qualified = scope + "." + name
	}
	return file + ":" + qualified + ":" + strconv.FormatUint(uint64(line), 10)
}
