package engine

import (
	"os"

	"github.com/drummonds/goDocView/config"
)

// StartupChecks performs all the checks to make sure everything works
func (serverHandler *ServerHandler) StartupChecks() error {
	if err := documentDirectoryChecks(serverHandler.ServerConfig); err != nil {
		return err
	}
	if err := exportDirectoryChecks(serverHandler.ServerConfig); err != nil {
		return err
	}
	return nil
}

// documentDirectoryChecks ensures the documents directory exists
func documentDirectoryChecks(serverConfig config.ServerConfig) error {
	if serverConfig.DocumentPath == "" {
		Logger.Warn("Document path not configured")
		return nil
	}

	_, err := os.Stat(serverConfig.DocumentPath)
	if err != nil {
		if os.IsNotExist(err) {
			Logger.Info("Creating documents directory", "path", serverConfig.DocumentPath)
			if err := os.MkdirAll(serverConfig.DocumentPath, 0755); err != nil {
				Logger.Error("Unable to create documents directory", "path", serverConfig.DocumentPath, "error", err)
				return err
			}
			return nil
		}
		Logger.Error("Unable to check documents directory", "path", serverConfig.DocumentPath, "error", err)
		return err
	}
	Logger.Info("Documents directory found", "path", serverConfig.DocumentPath)
	return nil
}

// exportDirectoryChecks ensures the export directory exists
func exportDirectoryChecks(serverConfig config.ServerConfig) error {
	if serverConfig.ExportPath == "" {
		Logger.Warn("Export path not configured, page exports will be unavailable")
		return nil
	}

	_, err := os.Stat(serverConfig.ExportPath)
	if err != nil {
		if os.IsNotExist(err) {
			Logger.Info("Creating export directory", "path", serverConfig.ExportPath)
			if err := os.MkdirAll(serverConfig.ExportPath, 0755); err != nil {
				Logger.Error("Unable to create export directory", "path", serverConfig.ExportPath, "error", err)
				return err
			}
			return nil
		}
		Logger.Error("Unable to check export directory", "path", serverConfig.ExportPath, "error", err)
		return err
	}
	Logger.Info("Export directory found", "path", serverConfig.ExportPath)
	return nil
}
