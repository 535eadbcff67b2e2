package codegen

import "errors"

// Sentinel error kinds, matching spec.md §7. Use errors.Is to test for a
// particular kind.
var (
	ErrUnhandledASTNode     = errors.New("unhandled ast node")
	ErrUnhandledDataType    = errors.New("unhandled data type")
	ErrUnhandledLiteralKind = errors.New("unhandled literal kind")
	ErrShortJumpOverflow    = errors.New("if-statement consequent exceeds 127 bytes")
	ErrTooManyParameters    = errors.New("function declares more than 32 parameters")
	ErrTooManyArguments     = errors.New("call site passes more than 32 arguments")
	ErrTooManyFields        = errors.New("struct declares more than 32 fields")
	ErrTooManyEnumValues    = errors.New("enum declares more than 32 values")
	ErrTooManySeqExprs      = errors.New("sequence expression has more than 16 children")
	ErrUnknownIdentifier    = errors.New("unknown identifier")
	ErrBreakOutsideLoop     = errors.New("break statement outside a loop")
)
