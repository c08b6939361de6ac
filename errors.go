package statediff

import "errors"

var (
	ErrNegativeKey = errors.New("statediff: negative key in varint key codec")
	ErrNotDiffable = errors.New("statediff: opaque value codec cannot diff")
	ErrWriteOnly   = errors.New("statediff: write-only codec cannot read")
	ErrBadDelta    = errors.New("statediff: malformed delta")
)
