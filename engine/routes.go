package engine

import (
	"bytes"
	"image/png"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"github.com/drummonds/goDocView/database"
	"github.com/drummonds/goDocView/viewer"
)

type loadDocumentRequest struct {
	Source string `json:"source"`
}

type highlightsRequest struct {
	Positions [][]float64 `json:"positions"`
}

type jumpRequest struct {
	Position []float64 `json:"position"`
}

type pageGeometry struct {
	Number       int     `json:"number"`
	NativeWidth  float64 `json:"nativeWidth"`
	NativeHeight float64 `json:"nativeHeight"`
	Scale        float64 `json:"scale"`
	OffsetTop    float64 `json:"offsetTop"`
	PixelWidth   int     `json:"pixelWidth"`
	PixelHeight  int     `json:"pixelHeight"`
}

type documentState struct {
	Document     *database.Document `json:"document"`
	State        viewer.LoadState   `json:"state"`
	PageCount    int                `json:"pageCount"`
	NominalScale float64            `json:"nominalScale"`
	ScrollOffset float64            `json:"scrollOffset"`
}

// RegisterRoutes wires all API routes onto the echo instance
func (serverHandler *ServerHandler) RegisterRoutes() {
	e := serverHandler.Echo

	// Document API routes
	e.POST("/api/document", serverHandler.LoadDocument)
	e.GET("/api/document/current", serverHandler.GetCurrentDocument)
	e.GET("/api/documents", serverHandler.GetAllDocuments)
	e.DELETE("/api/document/:id", serverHandler.DeleteDocument)

	// Page API routes
	e.GET("/api/page/:number", serverHandler.GetPageGeometry)
	e.GET("/api/page/:number/image", serverHandler.GetPageImage)
	e.GET("/api/page/:number/thumbnail", serverHandler.GetPageThumbnail)
	e.POST("/api/page/:number/export", serverHandler.ExportPage)

	// Highlight and navigation API routes
	e.PUT("/api/highlights", serverHandler.SetHighlights)
	e.POST("/api/jump", serverHandler.JumpToPosition)
	e.GET("/api/locate", serverHandler.LocateClause)

	// Job tracking API routes
	e.GET("/api/jobs", serverHandler.GetRecentJobs)
	e.GET("/api/jobs/:id", serverHandler.GetJob)
}

// LoadDocument starts an asynchronous document load and returns the tracking job
func (serverHandler *ServerHandler) LoadDocument(c echo.Context) error {
	var request loadDocumentRequest
	if err := c.Bind(&request); err != nil || request.Source == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "A document source is required",
		})
	}

	job, err := serverHandler.DB.CreateJob(database.JobTypeDocumentLoad, "Loading "+request.Source)
	if err != nil {
		Logger.Error("Failed to create load job", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to create load job",
		})
	}

	go serverHandler.loadDocumentJobFunc(request.Source, job.ID)

	return c.JSON(http.StatusAccepted, job)
}

// GetCurrentDocument reports the newest document together with the live viewer state
func (serverHandler *ServerHandler) GetCurrentDocument(c echo.Context) error {
	doc, err := serverHandler.DB.GetNewestDocument()
	if err != nil {
		Logger.Error("Failed to get newest document", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve document",
		})
	}
	if doc == nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "No document has been loaded",
		})
	}

	return c.JSON(http.StatusOK, documentState{
		Document:     doc,
		State:        serverHandler.Viewer.State(),
		PageCount:    serverHandler.Viewer.PageCount(),
		NominalScale: serverHandler.Viewer.NominalScale(),
		ScrollOffset: serverHandler.Scroll.Offset(),
	})
}

// GetAllDocuments lists every document the server has loaded
func (serverHandler *ServerHandler) GetAllDocuments(c echo.Context) error {
	docs, err := serverHandler.DB.GetAllDocuments()
	if err != nil {
		Logger.Error("Failed to list documents", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve documents",
		})
	}
	if docs == nil {
		docs = []database.Document{}
	}
	return c.JSON(http.StatusOK, docs)
}

// DeleteDocument removes a document record by ULID
func (serverHandler *ServerHandler) DeleteDocument(c echo.Context) error {
	ulidStr := c.Param("id")
	if _, err := ulid.Parse(ulidStr); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid document ID format",
		})
	}
	if err := serverHandler.DB.DeleteDocument(ulidStr); err != nil {
		Logger.Error("Failed to delete document", "ulid", ulidStr, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to delete document",
		})
	}
	return c.JSON(http.StatusOK, "Document Deleted")
}

// GetPageGeometry reports the layout of a single rendered page
func (serverHandler *ServerHandler) GetPageGeometry(c echo.Context) error {
	pageNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid page number",
		})
	}

	page := serverHandler.Viewer.Page(pageNumber)
	if page == nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Page not registered",
		})
	}

	bounds := page.Raster.Bounds()
	return c.JSON(http.StatusOK, pageGeometry{
		Number:       page.Number,
		NativeWidth:  page.NativeWidth,
		NativeHeight: page.NativeHeight,
		Scale:        page.Scale,
		OffsetTop:    page.OffsetTop,
		PixelWidth:   bounds.Dx(),
		PixelHeight:  bounds.Dy(),
	})
}

// GetPageImage serves the composited page (raster plus highlight overlay) as PNG
func (serverHandler *ServerHandler) GetPageImage(c echo.Context) error {
	pageNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid page number",
		})
	}

	composite, err := serverHandler.Viewer.CompositePage(pageNumber)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Page not registered",
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, composite); err != nil {
		Logger.Error("Failed to encode page image", "page", pageNumber, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to encode page image",
		})
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// GetPageThumbnail serves a reduced preview of a rendered page
func (serverHandler *ServerHandler) GetPageThumbnail(c echo.Context) error {
	pageNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid page number",
		})
	}

	width := 200
	if widthStr := c.QueryParam("width"); widthStr != "" {
		if w, err := strconv.Atoi(widthStr); err == nil && w > 0 && w <= 2000 {
			width = w
		}
	}

	thumb, err := serverHandler.Viewer.Thumbnail(pageNumber, width)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Page not registered",
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		Logger.Error("Failed to encode thumbnail", "page", pageNumber, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to encode thumbnail",
		})
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// ExportPage writes the composited page to the export folder and returns its path
func (serverHandler *ServerHandler) ExportPage(c echo.Context) error {
	pageNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid page number",
		})
	}

	path, err := serverHandler.Viewer.ExportPage(pageNumber, serverHandler.ServerConfig.ExportPath)
	if err != nil {
		Logger.Error("Failed to export page", "page", pageNumber, "error", err)
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Failed to export page",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"path": path})
}

// SetHighlights replaces the active highlight set and repaints all overlays
func (serverHandler *ServerHandler) SetHighlights(c echo.Context) error {
	var request highlightsRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid highlights payload",
		})
	}

	positions := viewer.ParsePositions(request.Positions)
	serverHandler.Viewer.SetHighlights(positions)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"accepted": len(positions),
	})
}

// JumpToPosition scrolls the viewport so the given position sits in the upper third
func (serverHandler *ServerHandler) JumpToPosition(c echo.Context) error {
	var request jumpRequest
	if err := c.Bind(&request); err != nil || len(request.Position) < 5 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "A position of [pageIndex, x1, y1, x2, y2] is required",
		})
	}

	p := request.Position
	offset, ok := serverHandler.Viewer.JumpTo(int(p[0]), p[1], p[2], p[3], p[4])
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Page not registered",
		})
	}
	return c.JSON(http.StatusOK, map[string]float64{"offset": offset})
}

// LocateClause searches the current document's text and returns highlight positions
func (serverHandler *ServerHandler) LocateClause(c echo.Context) error {
	needle := c.QueryParam("q")
	if needle == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "A query parameter q is required",
		})
	}

	doc, err := serverHandler.DB.GetNewestDocument()
	if err != nil || doc == nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "No document has been loaded",
		})
	}

	positions, err := viewer.LocateText(doc.Path, needle)
	if err != nil {
		Logger.Error("Failed to locate text", "query", needle, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to search document text",
		})
	}
	if positions == nil {
		positions = []viewer.Position{}
	}
	return c.JSON(http.StatusOK, positions)
}

// GetJob retrieves a job by ID
func (serverHandler *ServerHandler) GetJob(c echo.Context) error {
	jobIDStr := c.Param("id")

	jobID, err := ulid.Parse(jobIDStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid job ID format",
		})
	}

	job, err := serverHandler.DB.GetJob(jobID)
	if err != nil {
		Logger.Error("Failed to get job", "jobID", jobIDStr, "error", err)
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Job not found",
		})
	}

	return c.JSON(http.StatusOK, job)
}

// GetRecentJobs retrieves recent jobs with pagination
func (serverHandler *ServerHandler) GetRecentJobs(c echo.Context) error {
	limit := 20
	offset := 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	jobs, err := serverHandler.DB.GetRecentJobs(limit, offset)
	if err != nil {
		Logger.Error("Failed to get recent jobs", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve jobs",
		})
	}

	if jobs == nil {
		jobs = []database.Job{}
	}

	return c.JSON(http.StatusOK, jobs)
}
