package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"github.com/drummonds/goDocView/config"
	"github.com/drummonds/goDocView/database"
	"github.com/drummonds/goDocView/viewer"
)

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	DB           database.Repository
	Echo         *echo.Echo
	Viewer       *viewer.Viewer
	Scroll       *ScrollState
	ServerConfig config.ServerConfig
}

// ScrollState records the viewport offset the navigator last requested.
// It stands in for the browser scroll container on the server side.
type ScrollState struct {
	mu     sync.Mutex
	offset float64
	smooth bool
}

// ScrollTo implements viewer.Scroller
func (s *ScrollState) ScrollTo(offset float64, smooth bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = offset
	s.smooth = smooth
}

// Offset returns the last requested scroll offset
func (s *ScrollState) Offset() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// NewServerHandler wires the viewer's scroll requests into the handler
func NewServerHandler(db database.Repository, e *echo.Echo, v *viewer.Viewer, serverConfig config.ServerConfig) *ServerHandler {
	handler := &ServerHandler{
		DB:           db,
		Echo:         e,
		Viewer:       v,
		Scroll:       &ScrollState{},
		ServerConfig: serverConfig,
	}
	v.SetScroller(handler.Scroll)
	return handler
}

// loadDocumentJobFunc runs a full document load with job progress tracking.
// Step 1: Fetch the source into the documents folder and record it
// Step 2: Run the render pipeline, relaying per-page progress to the job
// Step 3: Record the outcome on the document row
func (serverHandler *ServerHandler) loadDocumentJobFunc(source string, jobID ulid.ULID) {
	db := serverHandler.DB

	// Add panic recovery to prevent entire application crash
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in document load job", "panic", r, "jobID", jobID)
			db.UpdateJobError(jobID, fmt.Sprintf("Panic: %v", r))
		}
	}()

	if err := db.UpdateJobStatus(jobID, database.JobStatusRunning, "Fetching document source"); err != nil {
		Logger.Error("Failed to update job status", "error", err)
	}

	// Step 1: Fetch and record
	localPath, err := serverHandler.fetchSource(source)
	if err != nil {
		Logger.Error("Step 1 failed: could not fetch source", "source", source, "error", err)
		db.UpdateJobError(jobID, fmt.Sprintf("Fetch failed: %v", err))
		return
	}

	doc, err := database.NewDocument(source, localPath)
	if err != nil {
		Logger.Error("Step 1 failed: could not create document record", "error", err)
		db.UpdateJobError(jobID, fmt.Sprintf("Record failed: %v", err))
		return
	}

	if existing, err := db.GetDocumentByHash(doc.Hash); err == nil && existing != nil {
		Logger.Info("Document already seen before, reloading it", "name", existing.Name, "ulid", existing.ULID.String())
	}

	if err := db.SaveDocument(doc); err != nil {
		Logger.Error("Step 1 failed: could not save document record", "error", err)
		db.UpdateJobError(jobID, fmt.Sprintf("Save failed: %v", err))
		return
	}
	Logger.Info("Step 1 complete: Document recorded", "ulid", doc.ULID.String(), "hash", doc.Hash)

	// Step 2: Render pipeline with progress relay
	progress := func(pct int, step string) {
		if err := db.UpdateJobProgress(jobID, pct, step); err != nil {
			Logger.Error("Failed to update job progress", "jobID", jobID, "error", err)
		}
	}

	err = serverHandler.Viewer.LoadDocument(context.Background(), localPath, progress)
	if errors.Is(err, viewer.ErrSuperseded) {
		Logger.Info("Document load superseded by a newer load", "ulid", doc.ULID.String())
		db.UpdateJobStatus(jobID, database.JobStatusCancelled, "Superseded by a newer document load")
		return
	}
	if err != nil {
		Logger.Error("Step 2 failed: render pipeline error", "ulid", doc.ULID.String(), "error", err)
		db.UpdateDocumentLoad(doc.ULID.String(), 0, 0, database.DocumentStatusFailed)
		db.UpdateJobError(jobID, fmt.Sprintf("Load failed: %v", err))
		return
	}

	// Step 3: Record outcome
	pageCount := serverHandler.Viewer.PageCount()
	nominalScale := serverHandler.Viewer.NominalScale()
	if err := db.UpdateDocumentLoad(doc.ULID.String(), pageCount, nominalScale, database.DocumentStatusReady); err != nil {
		Logger.Error("Failed to record load outcome", "ulid", doc.ULID.String(), "error", err)
	}

	result := fmt.Sprintf(`{"ulid": %q, "pageCount": %d, "nominalScale": %g}`, doc.ULID.String(), pageCount, nominalScale)
	if err := db.CompleteJob(jobID, result); err != nil {
		Logger.Error("Failed to complete job", "jobID", jobID, "error", err)
	}
	Logger.Info("Document load complete", "ulid", doc.ULID.String(), "pages", pageCount)
}

// fetchSource brings a document source into the documents folder.
// URLs are downloaded, local paths are copied.
func (serverHandler *ServerHandler) fetchSource(source string) (string, error) {
	documentPath := serverHandler.ServerConfig.DocumentPath
	if err := os.MkdirAll(documentPath, 0755); err != nil {
		return "", fmt.Errorf("unable to create documents folder: %w", err)
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return serverHandler.downloadSource(source, documentPath)
	}

	sourceInfo, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("source not readable: %w", err)
	}
	if sourceInfo.IsDir() {
		return "", fmt.Errorf("source is a folder, not a document: %s", source)
	}

	destPath := filepath.Join(documentPath, filepath.Base(source))
	if destPath == source {
		return source, nil
	}

	in, err := os.Open(source)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("unable to copy source into documents folder: %w", err)
	}
	return destPath, nil
}

// downloadSource fetches a remote document over HTTP
func (serverHandler *ServerHandler) downloadSource(source, documentPath string) (string, error) {
	parsed, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("invalid source URL: %w", err)
	}

	fileName := filepath.Base(parsed.Path)
	if fileName == "." || fileName == "/" || fileName == "" {
		fileName = "document.pdf"
	}
	destPath := filepath.Join(documentPath, fileName)

	resp, err := http.Get(source)
	if err != nil {
		return "", fmt.Errorf("unable to download source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("source returned status %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("unable to write downloaded source: %w", err)
	}
	return destPath, nil
}
