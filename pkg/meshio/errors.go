package meshio

import "github.com/pkg/errors"

// Error taxonomy for ingestion and export. Concrete failures wrap one of
// these with file and line context; test with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMalformedSTL      = errors.New("malformed STL")
	ErrMalformedOBJ      = errors.New("malformed OBJ")
	ErrIO                = errors.New("i/o error")
	ErrEmptyResult       = errors.New("empty result")
)

