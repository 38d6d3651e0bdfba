package archive

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Limits for generic rendering. Archives may share nodes, so a naive walk of
// a hostile buffer could be exponential.
const (
	maxDescribeDepth = 32
	maxDescribeNodes = 10000
)

// Describe writes an indented tree of the archive. It relies only on the
// self-describing tags, so it works without knowing the value's type.
func Describe(w io.Writer, a Archive) error {
	d := describer{w: w}
	d.node(a.Root(), 0)
	return d.err
}

type describer struct {
	w     io.Writer
	nodes int
	err   error
}

func (d *describer) printf(depth int, format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s"+format+"\n", append([]any{strings.Repeat("  ", depth)}, args...)...)
}

func (d *describer) node(n Node, depth int) {
	d.nodes++
	if depth > maxDescribeDepth || d.nodes > maxDescribeNodes {
		d.printf(depth, "...")
		return
	}
	switch n.Kind() {
	case KindString:
		d.printf(depth, "string @%d %q", n.Offset(), n.Text())
	case KindBytes:
		d.printf(depth, "bytes @%d len=%d %x", n.Offset(), n.Len(), clip(n.Data(), 32))
	case KindStruct:
		d.printf(depth, "struct @%d fields=%d", n.Offset(), n.Len())
		d.slots(n.slots(), depth+1)
	case KindList:
		d.printf(depth, "list @%d len=%d", n.Offset(), n.Len())
		d.slots(n.slots(), depth+1)
	default:
		d.printf(depth, "invalid node @%d", n.Offset())
	}
}

func (d *describer) slots(ss slots, depth int) {
	for i := 0; i < ss.Len(); i++ {
		tag := ss.Tag(i)
		switch {
		case tag == TagRef && ss.IsNone(i):
			d.printf(depth, "[%d] none", i)
		case tag == TagRef:
			d.printf(depth, "[%d] ->", i)
			d.node(ss.Node(i), depth+1)
		default:
			d.printf(depth, "[%d] %s %s", i, tag, scalar(ss, i))
		}
	}
}

func scalar(ss slots, i int) string {
	switch ss.Tag(i) {
	case TagBool:
		return strconv.FormatBool(ss.Bool(i))
	case TagInt:
		return strconv.FormatInt(ss.Int(i), 10)
	case TagUint:
		return strconv.FormatUint(ss.Uint(i), 10)
	case TagFloat:
		return strconv.FormatFloat(ss.Float(i), 'g', -1, 64)
	}
	return "?"
}

func clip(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// Interface converts the node into plain Go values: structs and lists become
// []any, strings string, bytes []byte, none nil. Intended for diagnostics.
func (n Node) Interface() any {
	budget := maxDescribeNodes
	return n.iface(0, &budget)
}

func (n Node) iface(depth int, budget *int) any {
	*budget--
	if depth > maxDescribeDepth || *budget < 0 {
		return nil
	}
	switch n.Kind() {
	case KindString:
		return n.Text()
	case KindBytes:
		return append([]byte(nil), n.Data()...)
	case KindStruct, KindList:
		ss := n.slots()
		out := make([]any, ss.Len())
		for i := range out {
			switch ss.Tag(i) {
			case TagBool:
				out[i] = ss.Bool(i)
			case TagInt:
				out[i] = ss.Int(i)
			case TagUint:
				out[i] = ss.Uint(i)
			case TagFloat:
				out[i] = ss.Float(i)
			case TagRef:
				if !ss.IsNone(i) {
					out[i] = ss.Node(i).iface(depth+1, budget)
				}
			}
		}
		return out
	}
	return nil
}
