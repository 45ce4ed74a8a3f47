package database

import (
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// DocumentStatus tracks where a document is in the load pipeline
type DocumentStatus string

const (
	DocumentStatusLoading DocumentStatus = "loading"
	DocumentStatusReady   DocumentStatus = "ready"
	DocumentStatusFailed  DocumentStatus = "failed"
)

// Document is all of the document information stored in the database
type Document struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Source       string         `json:"source"` // the locator the load was requested with (path or URL)
	Path         string         `json:"path"`   // full local path to the file
	Hash         string         `json:"hash"`
	ULID         ulid.ULID      `json:"ulid"` // smaller (than hash) id usable in URLs
	PageCount    int            `json:"pageCount"`
	NominalScale float64        `json:"nominalScale"` // the first page's display scale, cached for cross-page consumers
	Status       DocumentStatus `json:"status"`
	LoadedAt     time.Time      `json:"loadedAt"`
}

// Repository defines database operations
type Repository interface {
	Close() error

	SaveDocument(doc *Document) error
	GetDocumentByULID(ulidStr string) (*Document, error)
	GetDocumentByHash(hash string) (*Document, error)
	GetNewestDocument() (*Document, error)
	GetAllDocuments() ([]Document, error)
	UpdateDocumentLoad(ulidStr string, pageCount int, nominalScale float64, status DocumentStatus) error
	DeleteDocument(ulidStr string) error

	CreateJob(jobType JobType, message string) (*Job, error)
	UpdateJobProgress(jobID ulid.ULID, progress int, currentStep string) error
	UpdateJobStatus(jobID ulid.ULID, status JobStatus, message string) error
	UpdateJobError(jobID ulid.ULID, errorMsg string) error
	CompleteJob(jobID ulid.ULID, result string) error
	GetJob(jobID ulid.ULID) (*Job, error)
	GetRecentJobs(limit, offset int) ([]Job, error)
	DeleteOldJobs(olderThan time.Duration) (int, error)
}

// NewDocument builds a document record for a freshly requested load
func NewDocument(source, path string) (*Document, error) {
	hash, err := CalculateHash(path)
	if err != nil {
		return nil, fmt.Errorf("unable to hash document: %w", err)
	}

	now := time.Now()
	newULID, err := CalculateUUID(now)
	if err != nil {
		return nil, fmt.Errorf("cannot generate ULID: %w", err)
	}

	return &Document{
		Name:     filepath.Base(path),
		Source:   source,
		Path:     path,
		Hash:     hash,
		ULID:     newULID,
		Status:   DocumentStatusLoading,
		LoadedAt: now,
	}, nil
}

// CalculateHash computes the MD5 hash of a file
func CalculateHash(fileName string) (string, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// CalculateUUID for the incoming file
func CalculateUUID(time time.Time) (ulid.ULID, error) {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.UnixNano())), 0)
	newULID, err := ulid.New(ulid.Timestamp(time), entropy)
	if err != nil {
		return newULID, err
	}
	return newULID, nil
}
