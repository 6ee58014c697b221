package datastructure

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAdjacencyGraph(t *testing.T) {
	input := "3\n0 1 1.5\n\n1 2 2\n"

	directed, err := ReadAdjacencyGraph(strings.NewReader(input), false)
	require.NoError(t, err)
	assert.Equal(t, []Edge{NewEdge(0, 1, 1.5), NewEdge(1, 2, 2)}, directed.Edges())

	undirected, err := ReadAdjacencyGraph(strings.NewReader(input), true)
	require.NoError(t, err)
	assert.Equal(t, 4, undirected.NumberOfEdges())
	assert.Equal(t, 1.5, undirected.GetWeight(1, 0))
}

func TestReadAdjacencyGraphErrors(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: ErrMalformedGraph},
		{name: "bad count", input: "x\n", wantErr: ErrMalformedGraph},
		{name: "short line", input: "2\n0 1\n", wantErr: ErrMalformedGraph},
		{name: "bad weight", input: "2\n0 1 w\n", wantErr: ErrMalformedGraph},
		{name: "node out of range", input: "2\n0 5 1\n", wantErr: ErrNodeOutOfRange},
		{name: "negative weight", input: "2\n0 1 -3\n", wantErr: ErrNegativeWeight},
		{name: "huge node count", input: "2147483647\n0 1 1\n", wantErr: ErrTooManyVertices},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAdjacencyGraph(strings.NewReader(tt.input), false)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWriteAdjacencyGraph(t *testing.T) {
	g := triangle(t)
	var buf bytes.Buffer
	require.NoError(t, WriteAdjacencyGraph(&buf, g))
	assert.Equal(t, "4\n0 1 1\n0 2 5\n1 2 2\n", buf.String())

	back, err := ReadAdjacencyGraph(&buf, false)
	require.NoError(t, err)
	assert.Equal(t, g.Edges(), back.Edges())
}

func TestMapFilesCompressed(t *testing.T) {
	dir := t.TempDir()

	adjPath := filepath.Join(dir, "graph.txt.bz2")
	g := triangle(t)
	require.NoError(t, WriteAdjacencyGraphFile(adjPath, g))
	back, err := ReadAdjacencyGraphFile(adjPath, false)
	require.NoError(t, err)
	assert.Equal(t, g.Edges(), back.Edges())

	gridPath := filepath.Join(dir, "grid.txt")
	m, err := ParseGridMap([]string{"S-O", "--G"})
	require.NoError(t, err)
	require.NoError(t, WriteGridFile(gridPath, m.Grid))
	rc, err := OpenMapFile(gridPath)
	require.NoError(t, err)
	defer rc.Close()
	lines, err := readLines(rc)
	require.NoError(t, err)
	assert.Equal(t, []string{"--O", "---"}, lines)

	_, err = ReadGridMapFile(gridPath)
	assert.ErrorIs(t, err, ErrMissingStart)
}
