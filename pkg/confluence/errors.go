package confluence

import "bardo/pkg/confluence/internal/pipeline"

// Errors surfaced by builder chains. Construction errors are held by the
// builder and returned from Execute; header errors are returned by SetHeader;
// transport errors are returned from Execute.
var (
	ErrConstruction = pipeline.ErrConstruction
	ErrTransport    = pipeline.ErrTransport
	ErrHeader       = pipeline.ErrHeader
	ErrConsumed     = pipeline.ErrConsumed
)

type (
	ConstructionError = pipeline.ConstructionError
	HeaderError       = pipeline.HeaderError
)
