package assets

import "errors"

// Sentinel errors for asset operations.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	// ErrInvalidAssetName rejects empty names and names carrying path
	// separators or dots.
	ErrInvalidAssetName = errors.New("invalid asset name")
)
