package mpeg

// vlcKind tags a node of a variable length code tree.
type vlcKind uint8

const (
	vlcInternal vlcKind = iota // keep reading, children at next and next+1
	vlcLeaf                    // complete code, value holds the symbol
	vlcInvalid                 // reserved or illegal code
)

// vlcNode is one entry of a VLC table. A table is a flat slice where the
// children of the node reached so far sit at consecutive indices, the bit
// read selects between them.
type vlcNode struct {
	kind  vlcKind
	next  int32
	value int32
}

// branch points to the child pair number pair.
func branch(pair int) vlcNode {
	return vlcNode{kind: vlcInternal, next: int32(pair << 1)}
}

func leaf(v int) vlcNode {
	return vlcNode{kind: vlcLeaf, value: int32(v)}
}

var invalid = vlcNode{kind: vlcInvalid}

// readVLC walks table one bit at a time from the root. It returns false
// when the walk ends on an invalid node.
func (b *Buffer) readVLC(table []vlcNode) (int, bool) {
	i := int32(0)
	for {
		n := table[i+int32(b.read(1))]
		switch n.kind {
		case vlcLeaf:
			return int(n.value), true
		case vlcInternal:
			i = n.next
		default:
			return 0, false
		}
	}
}

// readVLCUint is readVLC for tables with unsigned 16-bit symbols.
func (b *Buffer) readVLCUint(table []vlcNode) (uint16, bool) {
	v, ok := b.readVLC(table)
	return uint16(v), ok
}
