package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

const (
	magicBytes = "PREFGRPH"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 50_000_000
)

// fileHeader is the binary snapshot header.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
	Dim      uint32
}

// WriteBinary serializes a contracted Graph to a binary file, using
// unsafe.Slice for zero-copy array I/O and an atomic rename so a
// crash mid-write never leaves a corrupt snapshot at path.
func WriteBinary(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	cw := &crc32Writer{w: f, hash: crc32.NewIEEE()}

	hdr := fileHeader{
		Version:  version,
		NumNodes: g.NumNodes,
		NumEdges: g.NumEdges,
		Dim:      uint32(g.Dim),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := writeUint32Slice(cw, g.Level); err != nil {
		return fmt.Errorf("write Level: %w", err)
	}
	if err := writeUint32Slice(cw, g.EdgeSrc); err != nil {
		return fmt.Errorf("write EdgeSrc: %w", err)
	}
	if err := writeUint32Slice(cw, g.EdgeTgt); err != nil {
		return fmt.Errorf("write EdgeTgt: %w", err)
	}
	if err := writeFloat64Slice(cw, g.EdgeCosts); err != nil {
		return fmt.Errorf("write EdgeCosts: %w", err)
	}
	if err := writeInt32Slice(cw, g.Shortcut1); err != nil {
		return fmt.Errorf("write Shortcut1: %w", err)
	}
	if err := writeInt32Slice(cw, g.Shortcut2); err != nil {
		return fmt.Errorf("write Shortcut2: %w", err)
	}
	if err := writeUint32Slice(cw, g.OutFirst); err != nil {
		return fmt.Errorf("write OutFirst: %w", err)
	}
	if err := writeUint32Slice(cw, g.OutEdge); err != nil {
		return fmt.Errorf("write OutEdge: %w", err)
	}
	if err := writeUint32Slice(cw, g.InFirst); err != nil {
		return fmt.Errorf("write InFirst: %w", err)
	}
	if err := writeUint32Slice(cw, g.InEdge); err != nil {
		return fmt.Errorf("write InEdge: %w", err)
	}

	checksum := cw.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadBinary deserializes a Graph from a binary snapshot written by
// WriteBinary, validating its CRC32 trailer and CSR invariants.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	cr := &crc32Reader{r: f, hash: crc32.NewIEEE()}

	var hdr fileHeader
	if err := binary.Read(cr, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	g := &Graph{NumNodes: hdr.NumNodes, NumEdges: hdr.NumEdges, Dim: int(hdr.Dim)}

	if g.Level, err = readUint32Slice(cr, int(hdr.NumNodes)); err != nil {
		return nil, fmt.Errorf("read Level: %w", err)
	}
	if g.EdgeSrc, err = readUint32Slice(cr, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read EdgeSrc: %w", err)
	}
	if g.EdgeTgt, err = readUint32Slice(cr, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read EdgeTgt: %w", err)
	}
	if g.EdgeCosts, err = readFloat64Slice(cr, int(hdr.NumEdges)*int(hdr.Dim)); err != nil {
		return nil, fmt.Errorf("read EdgeCosts: %w", err)
	}
	if g.Shortcut1, err = readInt32Slice(cr, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read Shortcut1: %w", err)
	}
	if g.Shortcut2, err = readInt32Slice(cr, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read Shortcut2: %w", err)
	}
	if g.OutFirst, err = readUint32Slice(cr, int(hdr.NumNodes+1)); err != nil {
		return nil, fmt.Errorf("read OutFirst: %w", err)
	}
	if g.OutEdge, err = readUint32Slice(cr, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read OutEdge: %w", err)
	}
	if g.InFirst, err = readUint32Slice(cr, int(hdr.NumNodes+1)); err != nil {
		return nil, fmt.Errorf("read InFirst: %w", err)
	}
	if g.InEdge, err = readUint32Slice(cr, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read InEdge: %w", err)
	}

	expectedCRC := cr.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := validateCSR(g.OutFirst, g.EdgeTgt, g.OutEdge, hdr.NumNodes); err != nil {
		return nil, fmt.Errorf("out-adjacency CSR invalid: %w", err)
	}
	if err := validateCSR(g.InFirst, g.EdgeSrc, g.InEdge, hdr.NumNodes); err != nil {
		return nil, fmt.Errorf("in-adjacency CSR invalid: %w", err)
	}

	return g, nil
}

// validateCSR checks that firstOf is a monotonic CSR offset array
// whose referenced edge ids (via edgeIDs, indexed into farEnd) all
// address nodes in range.
func validateCSR(firstOf []uint32, farEnd []uint32, edgeIDs []uint32, numNodes uint32) error {
	if uint32(len(firstOf)) != numNodes+1 {
		return fmt.Errorf("offsets length %d != NumNodes+1 %d", len(firstOf), numNodes+1)
	}
	numEdges := firstOf[numNodes]
	if uint32(len(edgeIDs)) != numEdges {
		return fmt.Errorf("edge id slice length %d != offsets[last] %d", len(edgeIDs), numEdges)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOf[i] < firstOf[i-1] {
			return fmt.Errorf("offsets not monotonic at %d: %d < %d", i, firstOf[i], firstOf[i-1])
		}
	}
	for _, e := range edgeIDs {
		if farEnd[e] >= numNodes {
			return fmt.Errorf("edge %d references node %d >= NumNodes=%d", e, farEnd[e], numNodes)
		}
	}
	return nil
}

// Zero-copy array I/O helpers using unsafe.Slice, matched to the
// native byte layout of the slice's element type.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeInt32Slice(w io.Writer, s []int32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readInt32Slice(r io.Reader, n int) ([]int32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]int32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
