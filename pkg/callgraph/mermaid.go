package callgraph

import "strings"

// ToMermaid generates Mermaid diagram syntax for the graph. Async
// definitions get a dashed arrow style marker in the label.
func (g *Graph) ToMermaid() string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	for _, id := range g.NodeIDs() {
		def := g.nodes[id]
		label := def.Name
		if label == "" {
			label = id
		}
		if def.EnclosingClass != "" {
			label = def.EnclosingClass + "." + label
		}
		if def.IsAsync {
			label = "async " + label
		}
		b.WriteString("    " + sanitizeMermaidID(id) + "[\"" + label + "\"]\n")
	}

	for _, id := range g.NodeIDs() {
		for _, to := range g.Callees(id) {
			b.WriteString("    " + sanitizeMermaidID(id) + " --> " + sanitizeMermaidID(to) + "\n")
		}
	}

	return b.String()
}

// sanitizeMermaidID makes an ID safe for Mermaid.
func sanitizeMermaidID(id string) string {
	var b strings.Builder
	for _, c := range id {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
