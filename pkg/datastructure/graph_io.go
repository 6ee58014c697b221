package datastructure

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/navreplan/pkg/util"
)

var (
	ErrMalformedGraph  = errors.New("malformed adjacency list")
	ErrTooManyVertices = errors.New("too many vertices")
)

// MaxVertices bounds the node count header of an adjacency list file.
const MaxVertices = 1 << 22

func fields(s string) []string {
	return strings.Fields(s)
}

func ParseIndex(s string) (Index, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if u > math.MaxInt32 {
		return 0, fmt.Errorf("value %s overflows int32", s)
	}
	return Index(u), nil
}

// ReadAdjacencyGraph reads the node count n on the first line, then one "src dst weight" edge per
// non-empty line. with symmetric every edge is mirrored.
func ReadAdjacencyGraph(r io.Reader, symmetric bool) (*AdjacencyGraph, error) {
	br := bufio.NewReader(r)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, fmt.Errorf("%w: missing node count: %v", ErrMalformedGraph, err)
	}
	n, err := ParseIndex(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("%w: node count: %v", ErrMalformedGraph, err)
	}
	if n > MaxVertices {
		return nil, fmt.Errorf("%w: node count %d exceeds %d", ErrTooManyVertices, n, MaxVertices)
	}

	g := NewAdjacencyGraph(int(n))
	for lineNo := 2; ; lineNo++ {
		line, err := util.ReadLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		tokens := fields(line)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != 3 {
			return nil, fmt.Errorf("%w: line %d: want 3 fields, got %d", ErrMalformedGraph, lineNo, len(tokens))
		}
		src, err := ParseIndex(tokens[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedGraph, lineNo, err)
		}
		dst, err := ParseIndex(tokens[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedGraph, lineNo, err)
		}
		w, err := strconv.ParseFloat(tokens[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedGraph, lineNo, err)
		}
		if err := g.update(src, dst, w, symmetric); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return g, nil
}

// WriteAdjacencyGraph writes every directed edge, the output reads back with symmetric false.
func WriteAdjacencyGraph(w io.Writer, g Graph) error {
	bw := bufio.NewWriter(w)
	var err error
	g.View(func(view Graph) {
		n := view.NumberOfVertices()
		if _, err = fmt.Fprintf(bw, "%d\n", n); err != nil {
			return
		}
		for u := Index(0); u < Index(n); u++ {
			for _, arc := range view.Successors(u) {
				weightF := strconv.FormatFloat(arc.weight, 'f', -1, 64)
				if _, err = fmt.Fprintf(bw, "%d %d %s\n", u, arc.node, weightF); err != nil {
					return
				}
			}
		}
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

// ReadGridMap reads an ASCII grid with its start and goal markers.
func ReadGridMap(r io.Reader) (*GridMap, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	return ParseGridMap(lines)
}

func WriteGrid(w io.Writer, g *GridGraph) error {
	_, err := io.WriteString(w, g.Serialize())
	return err
}

func readLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	lines := make([]string, 0)
	for {
		line, err := util.ReadLine(br)
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var err error
	for i := len(rc.closers) - 1; i >= 0; i-- {
		if cerr := rc.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// OpenMapFile opens filename for reading, files ending in .bz2 are decompressed on the fly.
func OpenMapFile(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(filename, ".bz2") {
		return f, nil
	}
	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &readCloser{Reader: bz, closers: []io.Closer{f, bz}}, nil
}

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (wc *writeCloser) Close() error {
	var err error
	for i := len(wc.closers) - 1; i >= 0; i-- {
		if cerr := wc.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// CreateMapFile creates filename for writing, files ending in .bz2 are compressed.
func CreateMapFile(filename string) (io.WriteCloser, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(filename, ".bz2") {
		return f, nil
	}
	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &writeCloser{Writer: bz, closers: []io.Closer{f, bz}}, nil
}

func ReadAdjacencyGraphFile(filename string, symmetric bool) (*AdjacencyGraph, error) {
	rc, err := OpenMapFile(filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadAdjacencyGraph(rc, symmetric)
}

func ReadGridMapFile(filename string) (*GridMap, error) {
	rc, err := OpenMapFile(filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadGridMap(rc)
}

func WriteAdjacencyGraphFile(filename string, g Graph) error {
	wc, err := CreateMapFile(filename)
	if err != nil {
		return err
	}
	if err := WriteAdjacencyGraph(wc, g); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}

func WriteGridFile(filename string, g *GridGraph) error {
	wc, err := CreateMapFile(filename)
	if err != nil {
		return err
	}
	if err := WriteGrid(wc, g); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
