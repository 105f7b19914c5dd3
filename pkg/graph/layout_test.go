package graph

import (
	"testing"

	"github.com/blessedcoolant/InvokeAI/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layoutGraph(nodes []string, edges [][2]string) *models.Graph {
	graph := &models.Graph{}

	for _, id := range nodes {
		graph.Nodes = append(graph.Nodes, &models.GraphNode{ID: id, Type: "noop"})
	}

	for _, edge := range edges {
		graph.Edges = append(graph.Edges, &models.GraphEdge{
			Source: models.EdgeEndpoint{NodeID: edge[0], Field: "out"},
			Target: models.EdgeEndpoint{NodeID: edge[1], Field: "in"},
		})
	}

	return graph
}

func positionsByID(workflow *models.Workflow) map[string]models.Position {
	positions := make(map[string]models.Position, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		positions[node.ID] = node.Position
	}

	return positions
}

func TestApplyLayout_ChainPlacesOneNodePerColumn(t *testing.T) {
	t.Parallel()

	graph := layoutGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	workflow := Convert(graph, nil, true)

	positions := positionsByID(workflow)
	assert.Equal(t, models.Position{X: 0, Y: 0}, positions["a"])
	assert.Equal(t, models.Position{X: layoutColumnGap, Y: 0}, positions["b"])
	assert.Equal(t, models.Position{X: 2 * layoutColumnGap, Y: 0}, positions["c"])
}

func TestApplyLayout_DiamondSharesColumns(t *testing.T) {
	t.Parallel()

	graph := layoutGraph(
		[]string{"d", "c", "b", "a"},
		[][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
	)
	workflow := Convert(graph, nil, true)

	positions := positionsByID(workflow)
	assert.Equal(t, models.Position{X: 0, Y: 0}, positions["a"])
	assert.Equal(t, models.Position{X: layoutColumnGap, Y: 0}, positions["b"])
	assert.Equal(t, models.Position{X: layoutColumnGap, Y: layoutRowGap}, positions["c"])
	assert.Equal(t, models.Position{X: 2 * layoutColumnGap, Y: 0}, positions["d"])
}

func TestApplyLayout_DepthIsLongestPath(t *testing.T) {
	t.Parallel()

	// b reaches d directly and through c; d must sit past c.
	graph := layoutGraph(
		[]string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"b", "d"}, {"c", "d"}},
	)
	workflow := Convert(graph, nil, true)

	positions := positionsByID(workflow)
	assert.Equal(t, 3*layoutColumnGap, positions["d"].X)
}

func TestApplyLayout_IsDeterministicAcrossRunsAndInputOrder(t *testing.T) {
	t.Parallel()

	edges := [][2]string{{"a", "b"}, {"a", "c"}, {"c", "d"}}

	reference := positionsByID(Convert(layoutGraph([]string{"a", "b", "c", "d"}, edges), nil, true))

	permutations := [][]string{
		{"d", "c", "b", "a"},
		{"b", "d", "a", "c"},
		{"c", "a", "d", "b"},
	}

	for _, order := range permutations {
		got := positionsByID(Convert(layoutGraph(order, edges), nil, true))
		assert.Equal(t, reference, got, "order %v", order)
	}

	for range 20 {
		got := positionsByID(Convert(layoutGraph([]string{"a", "b", "c", "d"}, edges), nil, true))
		assert.Equal(t, reference, got)
	}
}

func TestApplyLayout_CycleDoesNotFail(t *testing.T) {
	t.Parallel()

	graph := layoutGraph([]string{"a", "b", "solo"}, [][2]string{{"a", "b"}, {"b", "a"}})
	workflow := Convert(graph, nil, true)

	positions := positionsByID(workflow)
	require.Len(t, positions, 3)

	// The isolated node keeps column zero; the cycle members share a
	// trailing column in id order.
	assert.Equal(t, models.Position{X: 0, Y: 0}, positions["solo"])
	assert.Equal(t, positions["a"].X, positions["b"].X)
	assert.Less(t, positions["a"].Y, positions["b"].Y)
	assert.Greater(t, positions["a"].X, positions["solo"].X)
}

func TestApplyLayout_SelfLoopIsIgnored(t *testing.T) {
	t.Parallel()

	graph := layoutGraph([]string{"a"}, [][2]string{{"a", "a"}})
	workflow := Convert(graph, nil, true)

	assert.Equal(t, models.Position{X: 0, Y: 0}, workflow.Nodes[0].Position)
}
