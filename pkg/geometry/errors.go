package geometry

import "errors"

var (
	ErrInvalidMaterial  = errors.New("geometry: invalid material")
	ErrInvalidPrimitive = errors.New("geometry: invalid primitive")
)
