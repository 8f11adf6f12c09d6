package syntax

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteDOT writes a Graphviz digraph of the tree to w.
func WriteDOT(w io.Writer, n *Node) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph AST {")
	fmt.Fprintln(bw, "    node [fontname=monospace];")
	id := 0
	var visit func(*Node) int
	visit = func(n *Node) int {
		me := id
		id++
		shape := "box"
		if len(n.Sub) == 0 {
			shape = "ellipse"
		}
		fmt.Fprintf(bw, "    n%d [shape=%s, label=\"%s\\n%s\"];\n", me, shape, dotEscape(Label(n)), n.Span)
		for _, sub := range n.Sub {
			fmt.Fprintf(bw, "    n%d -> n%d;\n", me, visit(sub))
		}
		return me
	}
	visit(n)
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

var dotReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func dotEscape(s string) string { return dotReplacer.Replace(s) }
