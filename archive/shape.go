package archive

import (
	"strconv"
	"strings"
)

type shapeKind uint8

const (
	shapeAny shapeKind = iota
	shapeBool
	shapeInt
	shapeUint
	shapeFloat
	shapeString
	shapeBytes
	shapeStruct
	shapeList
	shapeOptional
	shapeEnum
)

// Shape describes the expected layout of an archived value. Validate checks
// untrusted buffers against it so that typed accessors on the resulting view
// always find the tags they expect.
type Shape struct {
	kind   shapeKind
	fields []*Shape
	elem   *Shape
	n      uint64
}

var (
	// AnyShape accepts any structurally valid archive.
	AnyShape = &Shape{kind: shapeAny}

	BoolShape   = &Shape{kind: shapeBool}
	IntShape    = &Shape{kind: shapeInt}
	UintShape   = &Shape{kind: shapeUint}
	FloatShape  = &Shape{kind: shapeFloat}
	StringShape = &Shape{kind: shapeString}
	BytesShape  = &Shape{kind: shapeBytes}
)

// StructShape expects a struct node with exactly len(fields) fields.
func StructShape(fields ...*Shape) *Shape {
	return &Shape{kind: shapeStruct, fields: fields}
}

// ListShape expects a list node whose elements all match elem.
func ListShape(elem *Shape) *Shape {
	return &Shape{kind: shapeList, elem: elem}
}

// OptionalShape accepts the none niche or a value matching s.
func OptionalShape(s *Shape) *Shape {
	return &Shape{kind: shapeOptional, elem: s}
}

// EnumShape expects a uint slot holding one of n declared variants [0, n).
func EnumShape(n uint64) *Shape {
	return &Shape{kind: shapeEnum, n: n}
}

// isNode reports whether values of this shape live in their own node.
func (s *Shape) isNode() bool {
	switch s.kind {
	case shapeString, shapeBytes, shapeStruct, shapeList:
		return true
	}
	return false
}

func (s *Shape) String() string {
	var sb strings.Builder
	s.write(&sb)
	return sb.String()
}

func (s *Shape) write(sb *strings.Builder) {
	switch s.kind {
	case shapeAny:
		sb.WriteString("any")
	case shapeBool:
		sb.WriteString("bool")
	case shapeInt:
		sb.WriteString("int")
	case shapeUint:
		sb.WriteString("uint")
	case shapeFloat:
		sb.WriteString("float")
	case shapeString:
		sb.WriteString("string")
	case shapeBytes:
		sb.WriteString("bytes")
	case shapeEnum:
		sb.WriteString("enum<")
		sb.WriteString(strconv.FormatUint(s.n, 10))
		sb.WriteString(">")
	case shapeOptional:
		sb.WriteString("opt<")
		s.elem.write(sb)
		sb.WriteString(">")
	case shapeList:
		sb.WriteString("[]")
		s.elem.write(sb)
	case shapeStruct:
		sb.WriteString("struct{")
		for i, f := range s.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			f.write(sb)
		}
		sb.WriteString("}")
	}
}
