package decoder

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// PDFiumDecoder implements document decoding using go-pdfium with WebAssembly (pure Go, no CGo)
type PDFiumDecoder struct {
	pool     pdfium.Pool
	instance pdfium.Pdfium
}

// NewPDFiumDecoder creates a new PDFium-based document decoder using WebAssembly
func NewPDFiumDecoder() (*PDFiumDecoder, error) {
	// Single-threaded usage, keep the worker pool minimal
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PDFium WebAssembly: %w", err)
	}

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to get PDFium instance: %w", err)
	}

	return &PDFiumDecoder{
		pool:     pool,
		instance: instance,
	}, nil
}

// Open reads and opens a document using go-pdfium
func (d *PDFiumDecoder) Open(source string) (Document, error) {
	pdfBytes, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("unable to read document file: %w", err)
	}

	doc, err := d.instance.OpenDocument(&requests.OpenDocument{
		File: &pdfBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open document: %w", err)
	}

	pageCountResp, err := d.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		d.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
		return nil, fmt.Errorf("unable to get page count: %w", err)
	}

	return &pdfiumDocument{
		instance:  d.instance,
		document:  doc.Document,
		pageCount: pageCountResp.PageCount,
	}, nil
}

// Close cleans up resources used by the PDFium decoder
func (d *PDFiumDecoder) Close() error {
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
	d.instance = nil
	return nil
}

type pdfiumDocument struct {
	instance  pdfium.Pdfium
	document  references.FPDF_DOCUMENT
	pageCount int
}

func (p *pdfiumDocument) PageCount() int {
	return p.pageCount
}

// Viewport returns the page size scaled from points; pdfium reports sizes in points
func (p *pdfiumDocument) Viewport(pageNumber int, scale float64) (Viewport, error) {
	sizeResp, err := p.instance.GetPageSize(&requests.GetPageSize{
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: p.document,
				Index:    pageNumber - 1,
			},
		},
	})
	if err != nil {
		return Viewport{}, fmt.Errorf("unable to get size of page %d: %w", pageNumber, err)
	}
	return Viewport{
		Width:  sizeResp.Width * scale,
		Height: sizeResp.Height * scale,
	}, nil
}

// RenderPage rasterizes one page at 72 * scale DPI
func (p *pdfiumDocument) RenderPage(pageNumber int, scale float64) (image.Image, error) {
	pageRender, err := p.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: int(72.0 * scale),
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: p.document,
				Index:    pageNumber - 1,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", pageNumber, err)
	}
	defer pageRender.Cleanup()

	// Copy out of the WebAssembly-backed buffer before Cleanup releases it
	src := pageRender.Result.Image
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out, nil
}

func (p *pdfiumDocument) Close() error {
	_, err := p.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: p.document,
	})
	return err
}
