package decoder

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzDecoder implements document decoding using go-fitz (requires CGo and MuPDF)
type FitzDecoder struct {
}

// NewFitzDecoder creates a new Fitz-based document decoder
func NewFitzDecoder() (*FitzDecoder, error) {
	return &FitzDecoder{}, nil
}

// Open opens a document using go-fitz
func (d *FitzDecoder) Open(source string) (Document, error) {
	doc, err := fitz.New(source)
	if err != nil {
		return nil, fmt.Errorf("unable to open document: %w", err)
	}
	return &fitzDocument{doc: doc}, nil
}

// Close cleans up resources (no-op for Fitz decoder, documents own their handles)
func (d *FitzDecoder) Close() error {
	return nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (f *fitzDocument) PageCount() int {
	return f.doc.NumPage()
}

// Viewport returns the page bounds scaled from the native point size.
// go-fitz reports bounds in points, so scale 1.0 is the document-point size.
func (f *fitzDocument) Viewport(pageNumber int, scale float64) (Viewport, error) {
	bound, err := f.doc.Bound(pageNumber - 1)
	if err != nil {
		return Viewport{}, fmt.Errorf("unable to get bounds for page %d: %w", pageNumber, err)
	}
	return Viewport{
		Width:  float64(bound.Dx()) * scale,
		Height: float64(bound.Dy()) * scale,
	}, nil
}

// RenderPage rasterizes one page. A scale of 1.0 maps one document point to
// one pixel, so the render DPI is 72 * scale.
func (f *fitzDocument) RenderPage(pageNumber int, scale float64) (image.Image, error) {
	img, err := f.doc.ImageDPI(pageNumber-1, 72.0*scale)
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", pageNumber, err)
	}
	return img, nil
}

func (f *fitzDocument) Close() error {
	return f.doc.Close()
}
