package parser

import "errors"

var (
	ErrTooManyParams     = errors.New("function declares more than 32 parameters")
	ErrTooManyArgs       = errors.New("call site passes more than 32 arguments")
	ErrTooManyFields     = errors.New("struct declares more than 32 fields")
	ErrTooManyEnumValues = errors.New("enum declares more than 32 values")
	ErrTooManySeqExprs   = errors.New("sequence expression has more than 16 children")
)
