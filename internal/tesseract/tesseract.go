// Package tesseract recognizes text locally with libtesseract. The engine is
// only compiled in with the "tesseract" build tag since it needs cgo and the
// tesseract development headers.
package tesseract

import "errors"

// ErrUnavailable is returned when the binary was built without tesseract
var ErrUnavailable = errors.New("tesseract provider not compiled in; rebuild with -tags tesseract")

// Tesseract is a provider backed by a local tesseract installation
type Tesseract struct {
	Languages []string
}

// New returns a new Tesseract provider
func New(languages ...string) *Tesseract {
	return &Tesseract{Languages: languages}
}
