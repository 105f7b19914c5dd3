package graph

import (
	"sort"

	"github.com/blessedcoolant/InvokeAI/pkg/models"
)

// Canvas spacing between layout columns and rows.
const (
	layoutColumnGap = 320.0
	layoutRowGap    = 120.0
)

// applyLayout places nodes in columns by dependency depth (the longest path
// from any root) and in rows by node id within a column. The placement is a
// pure function of the graph structure, so the same graph always lays out
// the same way. Nodes caught in a cycle cannot be assigned a depth; they go
// into one trailing column, again ordered by id.
func applyLayout(workflow *models.Workflow) {
	if len(workflow.Nodes) == 0 {
		return
	}

	indexByID := make(map[string]int, len(workflow.Nodes))
	for i, node := range workflow.Nodes {
		indexByID[node.ID] = i
	}

	outgoing := make([][]int, len(workflow.Nodes))
	indegree := make([]int, len(workflow.Nodes))

	for _, edge := range workflow.Edges {
		from, okFrom := indexByID[edge.Source.NodeID]
		to, okTo := indexByID[edge.Target.NodeID]

		if !okFrom || !okTo || from == to {
			continue
		}

		outgoing[from] = append(outgoing[from], to)
		indegree[to]++
	}

	depth := make([]int, len(workflow.Nodes))
	placed := make([]bool, len(workflow.Nodes))
	queue := make([]int, 0, len(workflow.Nodes))

	for i, deg := range indegree {
		if deg == 0 {
			queue = append(queue, i)
		}
	}

	maxDepth := 0

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		placed[current] = true

		if depth[current] > maxDepth {
			maxDepth = depth[current]
		}

		for _, next := range outgoing[current] {
			if depth[current]+1 > depth[next] {
				depth[next] = depth[current] + 1
			}

			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	// Anything not placed sits on a cycle.
	for i := range workflow.Nodes {
		if !placed[i] {
			depth[i] = maxDepth + 1
		}
	}

	columns := make(map[int][]int)
	for i := range workflow.Nodes {
		columns[depth[i]] = append(columns[depth[i]], i)
	}

	for _, column := range columns {
		sort.Slice(column, func(a, b int) bool {
			return workflow.Nodes[column[a]].ID < workflow.Nodes[column[b]].ID
		})

		for row, nodeIndex := range column {
			workflow.Nodes[nodeIndex].Position = models.Position{
				X: float64(depth[nodeIndex]) * layoutColumnGap,
				Y: float64(row) * layoutRowGap,
			}
		}
	}
}
