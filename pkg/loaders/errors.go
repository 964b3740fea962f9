package loaders

import "errors"

var (
	ErrInvalidPLY       = errors.New("loaders: invalid PLY data")
	ErrInvalidSceneFile = errors.New("loaders: invalid scene file")
	ErrUnknownMaterial  = errors.New("loaders: unknown material")
)
