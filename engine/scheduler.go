package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// InitializeSchedules starts all the cron jobs (currently just the cleanup sweep)
func (serverHandler *ServerHandler) InitializeSchedules() {
	// Run the cleanup once at startup in a goroutine
	Logger.Info("Running cleanup job at startup")
	go serverHandler.cleanupJobFunc()

	c := cron.New()
	var cleanupJob cron.Job
	cleanupJob = cron.FuncJob(func() { serverHandler.cleanupJobFunc() })
	cleanupJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(cleanupJob) //ensure we don't kick off another if old one is still running
	c.AddJob(fmt.Sprintf("@every %dm", serverHandler.ServerConfig.CleanupInterval), cleanupJob)
	Logger.Info("Adding cleanup job scheduler", "interval_minutes", serverHandler.ServerConfig.CleanupInterval)
	c.Start()
}

// cleanupJobFunc removes finished jobs and stale exported pages past the retention window
func (serverHandler *ServerHandler) cleanupJobFunc() {
	// Add panic recovery to prevent entire application crash
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in cleanup job", "panic", r)
		}
	}()

	retention := time.Duration(serverHandler.ServerConfig.JobRetentionHours) * time.Hour
	Logger.Info("Starting cleanup job", "retention", retention)

	deleted, err := serverHandler.DB.DeleteOldJobs(retention)
	if err != nil {
		Logger.Error("Failed to delete old jobs", "error", err)
	} else if deleted > 0 {
		Logger.Info("Deleted old jobs", "count", deleted)
	}

	serverHandler.cleanupExports(retention)
}

// cleanupExports deletes exported page images older than the retention window
func (serverHandler *ServerHandler) cleanupExports(retention time.Duration) {
	exportPath := serverHandler.ServerConfig.ExportPath
	if exportPath == "" {
		return
	}

	entries, err := os.ReadDir(exportPath)
	if err != nil {
		if !os.IsNotExist(err) {
			Logger.Error("Failed to read export folder", "path", exportPath, "error", err)
		}
		return
	}

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		stalePath := filepath.Join(exportPath, entry.Name())
		if err := os.Remove(stalePath); err != nil {
			Logger.Warn("Failed to remove stale export", "path", stalePath, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		Logger.Info("Removed stale exports", "count", removed)
	}
}
