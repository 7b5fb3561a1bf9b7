package flow

import (
	"github.com/panbanda/callflow/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// functionNodeTypes returns the AST node types that introduce a function
// scope in each language.
func functionNodeTypes(lang parser.Language) []string {
	switch lang {
	case parser.LangPython:
		return []string{"function_definition"}
	case parser.LangGo:
		return []string{"function_declaration", "method_declaration"}
	case parser.LangTypeScript, parser.LangJavaScript, parser.LangTSX:
		return []string{"function_declaration", "method_definition", "generator_function_declaration"}
	default:
		return nil
	}
}

// classNodeTypes returns the AST node types that introduce a class scope.
func classNodeTypes(lang parser.Language) []string {
	switch lang {
	case parser.LangPython:
		return []string{"class_definition"}
	case parser.LangTypeScript, parser.LangJavaScript, parser.LangTSX:
		return []string{"class_declaration", "class"}
	default:
		// Go has no class scope; methods carry their receiver type instead.
		return nil
	}
}

// callNodeTypes returns the AST node types for call expressions.
func callNodeTypes(lang parser.Language) []string {
	switch lang {
	case parser.LangPython:
		return []string{"call"}
	case parser.LangGo, parser.LangTypeScript, parser.LangJavaScript, parser.LangTSX:
		return []string{"call_expression"}
	default:
		return nil
	}
}

// definitionName extracts the simple name of a function or class node.
// Anonymous functions (lambdas, arrows) have no name and produce no record;
// their call sites attribute to the nearest named enclosing function.
func definitionName(node *sitter.Node, source []byte) string {
	return parser.GetNodeText(node.ChildByFieldName("name"), source)
}

// isAsyncFunction reports whether a function node carries an async marker.
// Python and JS/TS both expose it as a leading "async" token child.
func isAsyncFunction(node *sitter.Node) bool {
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		t := child.Type()
		if t == "async" {
			return true
		}
		// Stop once we pass the modifier position.
		if t == "def" || t == "function" || t == "identifier" || t == "name" {
			break
		}
	}
	return false
}

// goReceiverType extracts the receiver type name of a Go method declaration,
// serving the same role a class name does elsewhere.
func goReceiverType(node *sitter.Node, source []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	var name string
	parser.Walk(recv, source, func(n *sitter.Node, src []byte) bool {
		if name != "" {
			return false
		}
		if n.Type() == "type_identifier" {
			name = parser.GetNodeText(n, src)
			return false
		}
		return true
	})
	return name
}

// calleeName extracts the raw callee expression text from a call node: a
// bare identifier, or "receiver.attr" when the receiver is itself a simple
// identifier. Deeper chains degrade to the attribute name alone. Targets
// that cannot be named (subscripts, call results) yield "".
func calleeName(node *sitter.Node, source []byte, lang parser.Language) string {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return ""
	}

	switch fn.Type() {
	case "identifier":
		return parser.GetNodeText(fn, source)

	case "attribute": // Python
		return receiverDotAttr(fn, "object", "attribute", source)

	case "member_expression": // JS/TS
		return receiverDotAttr(fn, "object", "property", source)

	case "selector_expression": // Go
		return receiverDotAttr(fn, "operand", "field", source)
	}

	return ""
}

func receiverDotAttr(fn *sitter.Node, objField, attrField string, source []byte) string {
	attr := parser.GetNodeText(fn.ChildByFieldName(attrField), source)
	if attr == "" {
		return ""
	}
	obj := fn.ChildByFieldName(objField)
	// "this" is its own node type in JS/TS grammars, not an identifier.
	if obj != nil && (obj.Type() == "identifier" || obj.Type() == "this") {
		return parser.GetNodeText(obj, source) + "." + attr
	}
	return attr
}

func contains(types []string, t string) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
