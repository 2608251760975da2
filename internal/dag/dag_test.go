package dag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddEdge_MissingNodes(t *testing.T) {
	g := New()
	g.AddNode("a")

	require.Error(t, g.AddEdge("a", "b"))
	require.Error(t, g.AddEdge("b", "a"))
	require.Error(t, g.AddEdge("a", "a"))
}

func TestTopologicalSort_ProducersFirst(t *testing.T) {
	g := New()
	for _, id := range []string{"c", "b", "a"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTopologicalSort_LexicographicTieBreak(t *testing.T) {
	g := New()
	for _, id := range []string{"z", "m", "a"} {
		g.AddNode(id)
	}

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "m", "z"}, order)
}

func TestTopologicalSort_Deterministic(t *testing.T) {
	build := func() *Graph {
		g := New()
		for _, id := range []string{"d", "c", "b", "a", "e"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("a", "c"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("c", "e"))
		return g
	}

	first, err := build().TopologicalSort()
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := build().TopologicalSort()
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestDetectCycles(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "a"))

	require.Error(t, g.DetectCycles())

	_, err := g.TopologicalSort()
	require.Error(t, err)
}

func TestDependencies_Sorted(t *testing.T) {
	g := New()
	for _, id := range []string{"x", "b", "a"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("x", "a"))
	require.NoError(t, g.AddEdge("b", "a"))

	deps, err := g.Dependencies("a")
	require.NoError(t, err)
	require.Equal(t, []string{"b", "x"}, deps)

	_, err = g.Dependencies("missing")
	require.Error(t, err)
}
