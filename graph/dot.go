package graph

import (
	"io"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

const graphId = "wcu"

// dotNode is a course code as seen by the DOT encoder.
type dotNode struct {
	id   int64
	code string
}

func (n dotNode) ID() int64 {
	return n.id
}

func (n dotNode) DOTID() string {
	return NodeID(n.code)
}

func (n dotNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: Label(n.code)}}
}

// directed converts g into a multigraph, parallel edges and self loops are
// kept as they are in g.
func directed(g Graph) *multi.DirectedGraph {
	out := multi.NewDirectedGraph()

	nodes := make(map[string]gonum.Node)
	declare := func(code string) gonum.Node {
		if n, ok := nodes[code]; ok {
			return n
		}
		n := dotNode{id: int64(len(nodes)), code: code}
		nodes[code] = n
		out.AddNode(n)
		return n
	}

	for _, node := range g.Nodes {
		declare(node)
	}
	// sources outside the subject still need their label
	for _, edge := range g.Edges {
		declare(edge.Source)
	}

	for _, edge := range g.Edges {
		out.SetLine(out.NewLine(declare(edge.Source), declare(edge.Target)))
	}

	return out
}

// WriteDot renders g as a Graphviz digraph.
func WriteDot(w io.Writer, g Graph) error {
	content, err := dot.MarshalMulti(directed(g), graphId, "", "\t")
	if err != nil {
		return err
	}
	content = append(content, '\n')

	_, err = w.Write(content)
	return err
}
