// Package graph builds prerequisite graphs out of parsed courses. An edge
// from A to B means B requires A.
package graph

import (
	"strconv"
	"strings"

	"github.com/Bwc9876/wcu-course-db/db"
)

// Wildcard selects every course for the node set. Edges are only built for
// literal subject matches.
const Wildcard = "*"

type Edge struct {
	Source string
	Target string
}

type Graph struct {
	Subject string
	// distinct, in course order
	Nodes []string
	Edges []Edge
}

// Build derives the graph of one subject. Prerequisites are taken as is,
// an edge source does not have to be a node of the graph.
func Build(courses []db.Course, subject string) Graph {
	g := Graph{Subject: subject, Nodes: []string{}, Edges: []Edge{}}

	seen := make(map[string]bool)
	for _, course := range courses {
		if subject != Wildcard && course.Code.Prefix != subject {
			continue
		}
		node := course.Code.String()
		if !seen[node] {
			seen[node] = true
			g.Nodes = append(g.Nodes, node)
		}
	}

	for _, course := range courses {
		if course.Code.Prefix != subject {
			continue
		}
		target := course.Code.String()
		for _, requisite := range course.PreRequirements {
			g.Edges = append(g.Edges, Edge{Source: requisite, Target: target})
		}
	}

	return g
}

func (g Graph) HasNode(node string) bool {
	for _, n := range g.Nodes {
		if n == node {
			return true
		}
	}
	return false
}

// NodeID normalizes a display code for renderers, ex: "BIO 110" -> "bio_110"
func NodeID(node string) string {
	return strings.ReplaceAll(strings.ToLower(node), " ", "_")
}

func Label(node string) string {
	return node
}

func (g Graph) EdgeIDs() []Edge {
	ids := make([]Edge, 0, len(g.Edges))
	for _, edge := range g.Edges {
		ids = append(ids, Edge{Source: NodeID(edge.Source), Target: NodeID(edge.Target)})
	}
	return ids
}

// Relations converts the edges into relation rows keyed like the courses
// table. Sources that are not "PREFIX NUMBER" codes are kept verbatim.
func Relations(g Graph) []db.Relation {
	relations := make([]db.Relation, 0, len(g.Edges))
	for _, edge := range g.Edges {
		relations = append(relations, db.Relation{
			SourceId: relationId(edge.Source),
			TargetId: relationId(edge.Target),
		})
	}
	return relations
}

func relationId(node string) string {
	prefix, number, found := strings.Cut(node, " ")
	if !found {
		return node
	}
	n, err := strconv.ParseUint(number, 10, 32)
	if err != nil {
		return node
	}
	return db.ValueNodeId(db.NewCourseCode(prefix, uint32(n)))
}
