package codegen

import "github.com/riicchhaarrd/rcc/ast"

// Sizes, in bytes, of the primitive data types this target supports.
// Pointer-sized slots are 4 bytes throughout (a 32-bit target — no
// 64-bit support, per the Non-goals). Double is deliberately kept at 4
// bytes rather than 8: spec.md §6 specifies this explicitly and §9 notes
// it is a documented simplification, not an oversight.
const (
	CharSize   = 1
	ShortSize  = 2
	IntSize    = 4
	LongSize   = 4
	FloatSize  = 4
	DoubleSize = 4
	PointerSize = 4
)

// dataTypeSize returns the size in bytes a value of type t occupies in a
// stack slot.
func dataTypeSize(t ast.Node) (int, error) {
	switch n := t.(type) {
	case *ast.PrimitiveDataTypeNode:
		switch n.Primitive {
		case ast.PrimChar:
			return CharSize, nil
		case ast.PrimShort:
			return ShortSize, nil
		case ast.PrimInt:
			return IntSize, nil
		case ast.PrimLong:
			return LongSize, nil
		case ast.PrimFloat:
			return FloatSize, nil
		case ast.PrimDouble:
			return DoubleSize, nil
		case ast.PrimVoid:
			return 0, nil
		}
		return 0, ErrUnhandledDataType
	case *ast.PointerDataTypeNode:
		return PointerSize, nil
	case *ast.ArrayDataTypeNode:
		inner, err := dataTypeSize(n.Inner)
		if err != nil {
			return 0, err
		}
		return inner * n.Size, nil
	}
	return 0, ErrUnhandledDataType
}

// dataTypePassByReference reports whether a value of type t is passed and
// stored as a pointer to its data rather than by value in a single slot
// — true for arrays; structs would also qualify but struct-by-value isn't
// modeled at the ABI level here, matching the scope this generator covers.
func dataTypePassByReference(t ast.Node) bool {
	_, ok := t.(*ast.ArrayDataTypeNode)
	return ok
}

// isSmall reports whether a store of type t should use the 8-bit mov
// form (0x88) instead of the 32-bit form (0x89).
func isSmall(t ast.Node) bool {
	if p, ok := t.(*ast.PrimitiveDataTypeNode); ok {
		return p.Primitive == ast.PrimChar
	}
	return false
}
