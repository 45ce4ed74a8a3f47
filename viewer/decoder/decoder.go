package decoder

import (
	"fmt"
	"image"
)

// Viewport describes a page's dimensions at a given scale.
// At scale 1.0 the units are document points (1/72 inch).
type Viewport struct {
	Width  float64
	Height float64
}

// Document is an open document handle. Page numbers are 1-based.
type Document interface {
	// PageCount returns the total number of pages
	PageCount() int

	// Viewport returns the page dimensions at the given scale
	Viewport(pageNumber int, scale float64) (Viewport, error)

	// RenderPage rasterizes a page at the given scale
	RenderPage(pageNumber int, scale float64) (image.Image, error)

	// Close releases the document
	Close() error
}

// Decoder defines the interface for opening rasterizable documents
type Decoder interface {
	// Open opens the document at the given source path
	Open(source string) (Document, error)

	// Close cleans up any resources used by the decoder
	Close() error
}

// New creates a decoder of the requested kind: "pdfium" (pure Go, no CGo)
// or "fitz" (CGo and MuPDF)
func New(kind string) (Decoder, error) {
	switch kind {
	case "pdfium":
		return NewPDFiumDecoder()
	case "fitz":
		return NewFitzDecoder()
	default:
		return nil, fmt.Errorf("unknown decoder kind %q", kind)
	}
}
