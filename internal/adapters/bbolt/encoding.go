// Binary encoding for snapshot blobs.
//
// Format v1 (little-endian):
//
//	version:   uint8
//	flags:     uint8 (bit 0: links present)
//	size:      uint32
//	nodeCount: uint32
//	per node:
//	  depth:     uint32
//	  edgeCount: uint16
//	  edges:     [edgeCount]× (symbol:uint8 + child:uint32)
//	  hasValue:  uint8
//	  value:     valueLen:uint32 + [valueLen]byte   (only if hasValue)
//	  suffix:    int32, -1 for none                  (only if links present)
//	  output:    int32, -1 for none                  (only if links present)
//
// Structural validation (reachability, depths, link targets) is left to
// automaton.Deserialize; the decoder only guarantees it never reads out of
// bounds.
package bbolt

import (
	"encoding/binary"
	"fmt"

	"github.com/corey/acmatch/internal/domain/automaton"
)

const (
	formatVersion = 1
	flagLinks     = 1 << 0
	headerSize    = 1 + 1 + 4 + 4
	edgeSize      = 1 + 4
	noLink        = -1
)

// encodeSnapshot encodes a snapshot to the v1 binary format.
// A single buffer is pre-allocated to avoid repeated growth.
func encodeSnapshot(s *automaton.Snapshot[string]) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("nil snapshot")
	}

	// Pre-calculate total size for single allocation.
	totalSize := headerSize
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if len(n.Edges) > 256 {
			return nil, fmt.Errorf("node %d has %d edges", i, len(n.Edges))
		}
		totalSize += 4 + 2 + len(n.Edges)*edgeSize + 1
		if n.Value != nil {
			totalSize += 4 + len(*n.Value)
		}
		if s.UpToDate {
			totalSize += 8
		}
	}

	buf := make([]byte, totalSize)
	offset := 0

	buf[offset] = formatVersion
	offset++
	var flags byte
	if s.UpToDate {
		flags |= flagLinks
	}
	buf[offset] = flags
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(s.Size))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(s.Nodes)))
	offset += 4

	for i := range s.Nodes {
		n := &s.Nodes[i]
		binary.LittleEndian.PutUint32(buf[offset:], uint32(n.Depth))
		offset += 4
		binary.LittleEndian.PutUint16(buf[offset:], uint16(len(n.Edges)))
		offset += 2
		for _, e := range n.Edges {
			buf[offset] = e.Symbol
			offset++
			binary.LittleEndian.PutUint32(buf[offset:], uint32(e.Child))
			offset += 4
		}

		if n.Value != nil {
			buf[offset] = 1
			offset++
			binary.LittleEndian.PutUint32(buf[offset:], uint32(len(*n.Value)))
			offset += 4
			copy(buf[offset:], *n.Value)
			offset += len(*n.Value)
		} else {
			buf[offset] = 0
			offset++
		}

		if s.UpToDate {
			binary.LittleEndian.PutUint32(buf[offset:], uint32(linkValue(n.Suffix)))
			offset += 4
			binary.LittleEndian.PutUint32(buf[offset:], uint32(linkValue(n.Output)))
			offset += 4
		}
	}

	return buf, nil
}

func linkValue(p *int32) int32 {
	if p == nil {
		return noLink
	}
	return *p
}

// decodeSnapshot decodes a v1 blob. Every read is bounds-checked to avoid
// panics on corrupt data.
func decodeSnapshot(data []byte) (*automaton.Snapshot[string], error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("snapshot too short: %d bytes", len(data))
	}

	offset := 0
	if v := data[offset]; v != formatVersion {
		return nil, fmt.Errorf("unsupported snapshot format version %d", v)
	}
	offset++
	links := data[offset]&flagLinks != 0
	offset++
	size := binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	nodeCount := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	// Each node needs at least 7 bytes; reject counts the blob cannot hold
	// before allocating.
	if uint64(nodeCount)*7 > uint64(len(data)-offset) {
		return nil, fmt.Errorf("node count %d exceeds blob size", nodeCount)
	}

	s := &automaton.Snapshot[string]{
		Nodes:    make([]automaton.SnapshotNode[string], nodeCount),
		Size:     int(size),
		UpToDate: links,
	}

	for i := uint32(0); i < nodeCount; i++ {
		n := &s.Nodes[i]

		if offset+6 > len(data) {
			return nil, fmt.Errorf("truncated at node %d header (offset %d)", i, offset)
		}
		n.Depth = int32(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		edgeCount := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2

		if offset+edgeCount*edgeSize > len(data) {
			return nil, fmt.Errorf("truncated at node %d edges (offset %d, need %d)", i, offset, edgeCount*edgeSize)
		}
		if edgeCount > 0 {
			n.Edges = make([]automaton.Edge, edgeCount)
			for j := range n.Edges {
				n.Edges[j].Symbol = data[offset]
				offset++
				n.Edges[j].Child = int32(binary.LittleEndian.Uint32(data[offset:]))
				offset += 4
			}
		}

		if offset+1 > len(data) {
			return nil, fmt.Errorf("truncated at node %d value flag (offset %d)", i, offset)
		}
		hasValue := data[offset]
		offset++
		switch hasValue {
		case 0:
		case 1:
			if offset+4 > len(data) {
				return nil, fmt.Errorf("truncated at node %d value length (offset %d)", i, offset)
			}
			valueLen := int(binary.LittleEndian.Uint32(data[offset:]))
			offset += 4
			if valueLen < 0 || offset+valueLen > len(data) {
				return nil, fmt.Errorf("truncated at node %d value (offset %d, need %d)", i, offset, valueLen)
			}
			v := string(data[offset : offset+valueLen])
			offset += valueLen
			n.Value = &v
		default:
			return nil, fmt.Errorf("node %d: bad value flag %d", i, hasValue)
		}

		if links {
			if offset+8 > len(data) {
				return nil, fmt.Errorf("truncated at node %d links (offset %d)", i, offset)
			}
			n.Suffix = linkPtr(int32(binary.LittleEndian.Uint32(data[offset:])))
			offset += 4
			n.Output = linkPtr(int32(binary.LittleEndian.Uint32(data[offset:])))
			offset += 4
		}
	}

	if offset != len(data) {
		return nil, fmt.Errorf("%d trailing bytes after snapshot", len(data)-offset)
	}
	return s, nil
}

func linkPtr(v int32) *int32 {
	if v == noLink {
		return nil
	}
	return &v
}
