package docgraph_test

import (
	"testing"

	"github.com/dekarrin/wdlcore/internal/docgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddImport_NoCycle(t *testing.T) {
	g := docgraph.New()
	g.AddImport("/a.wdl", "/b.wdl")
	g.AddImport("/b.wdl", "/c.wdl")

	assert.ElementsMatch(t, []docgraph.DocumentID{"/b.wdl"}, g.Importees("/a.wdl"))
	assert.Empty(t, g.Cycles())
}

func TestAddImport_CycleIsElidedNotAdded(t *testing.T) {
	g := docgraph.New()
	g.AddImport("/a.wdl", "/b.wdl")
	g.AddImport("/b.wdl", "/a.wdl") // would close a.wdl -> b.wdl -> a.wdl

	require.Len(t, g.Cycles(), 1)
	assert.Equal(t, docgraph.DocumentID("/b.wdl"), g.Cycles()[0].Importer)
	assert.Equal(t, docgraph.DocumentID("/a.wdl"), g.Cycles()[0].Importee)
	assert.True(t, g.IsCycleEdge("/b.wdl", "/a.wdl"))

	// the graph itself must remain acyclic: b.wdl must not have gained an
	// edge to a.wdl.
	assert.Empty(t, g.Importees("/b.wdl"))
}

func TestTopoLayers_ImporteeBeforeImporter(t *testing.T) {
	g := docgraph.New()
	g.AddImport("/a.wdl", "/b.wdl")
	g.AddImport("/b.wdl", "/c.wdl")

	layers := g.TopoLayers()
	require.Len(t, layers, 3)
	assert.Equal(t, []docgraph.DocumentID{"/c.wdl"}, layers[0])
	assert.Equal(t, []docgraph.DocumentID{"/b.wdl"}, layers[1])
	assert.Equal(t, []docgraph.DocumentID{"/a.wdl"}, layers[2])
}

func TestResolveImport_LocalRelative(t *testing.T) {
	id, err := docgraph.ResolveImport("/work/dir/main.wdl", "lib/tasks.wdl")
	require.NoError(t, err)
	assert.Equal(t, docgraph.DocumentID("/work/dir/lib/tasks.wdl"), id)
}

func TestResolveImport_AbsoluteURIPassesThrough(t *testing.T) {
	id, err := docgraph.ResolveImport("/work/dir/main.wdl", "https://example.com/tasks.wdl")
	require.NoError(t, err)
	assert.Equal(t, docgraph.DocumentID("https://example.com/tasks.wdl"), id)
}
