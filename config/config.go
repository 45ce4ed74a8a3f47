package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServerConfig contains all of the server settings
type ServerConfig struct {
	ListenAddrIP     string
	ListenAddrPort   string
	DatabaseType     string
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string `json:"-"`
	DatabaseDbname   string
	DatabaseSslmode  string
	DatabaseVerbose  bool //log every query, not just failures
	DocumentPath     string //absolute path to the folder where loaded documents are kept
	ExportPath       string //absolute path to the folder for composited page exports
	Renderer         string //"pdfium" (pure Go) or "fitz" (CGo/MuPDF)
	ViewerConfig
	JobRetentionHours int
	CleanupInterval   int //minutes between stale-job sweeps
}

// ViewerConfig stores the geometry of the scrollable viewer the host renders into
type ViewerConfig struct {
	ContainerWidth  float64
	ContainerHeight float64
	PagePadding     float64 //horizontal padding subtracted from the container before scaling
	PageGap         float64 //vertical gap between stacked pages, in device pixels
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatVal
}

// SetupServer loads configuration and returns ServerConfig and Logger
func SetupServer() (ServerConfig, *slog.Logger) {
	serverConfigLive := ServerConfig{}
	viewerConfigLive := ViewerConfig{}

	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	logger := setupLogging()
	Logger = logger

	// Server configuration
	serverConfigLive.ListenAddrPort = getEnv("SERVER_PORT", "8000")
	serverConfigLive.ListenAddrIP = getEnv("SERVER_ADDR", "")

	// Database configuration
	serverConfigLive.DatabaseType = getEnv("DATABASE_TYPE", "sqlite")
	serverConfigLive.DatabaseHost = getEnv("DATABASE_HOST", "localhost")
	serverConfigLive.DatabasePort = getEnv("DATABASE_PORT", "5432")
	serverConfigLive.DatabaseUser = getEnv("DATABASE_USER", "godocview")
	serverConfigLive.DatabasePassword = getEnv("DATABASE_PASSWORD", "")
	serverConfigLive.DatabaseDbname = getEnv("DATABASE_NAME", "godocview")
	serverConfigLive.DatabaseSslmode = getEnv("DATABASE_SSLMODE", "")
	serverConfigLive.DatabaseVerbose = getEnvBool("DATABASE_VERBOSE", false)

	logger.Info("Database configuration loaded", "type", serverConfigLive.DatabaseType)

	// Document storage configuration
	documentPathRelative := filepath.ToSlash(getEnv("DOCUMENT_PATH", "documents"))
	documentPathAbs, err := filepath.Abs(documentPathRelative)
	if err != nil {
		logger.Error("Error creating document path", "path", documentPathRelative, "error", err)
	}
	serverConfigLive.DocumentPath = documentPathAbs

	exportPathRelative := filepath.ToSlash(getEnv("EXPORT_PATH", "exports"))
	exportPathAbs, err := filepath.Abs(exportPathRelative)
	if err != nil {
		logger.Error("Error creating export path", "path", exportPathRelative, "error", err)
	}
	serverConfigLive.ExportPath = exportPathAbs

	// Renderer configuration
	serverConfigLive.Renderer = getEnv("RENDERER", "pdfium")
	switch serverConfigLive.Renderer {
	case "pdfium", "fitz":
	default:
		logger.Warn("Unknown renderer, falling back to pdfium", "renderer", serverConfigLive.Renderer)
		serverConfigLive.Renderer = "pdfium"
	}

	// Viewer geometry. Pages are scaled so their native width fills the
	// container minus the padding; the viewport height drives scroll math.
	viewerConfigLive.ContainerWidth = getEnvFloat("CONTAINER_WIDTH", 840)
	viewerConfigLive.ContainerHeight = getEnvFloat("CONTAINER_HEIGHT", 900)
	viewerConfigLive.PagePadding = getEnvFloat("PAGE_PADDING", 40)
	viewerConfigLive.PageGap = getEnvFloat("PAGE_GAP", 16)
	serverConfigLive.ViewerConfig = viewerConfigLive

	if viewerConfigLive.ContainerWidth <= viewerConfigLive.PagePadding {
		logger.Warn("Container width does not exceed page padding, scale will degenerate",
			"containerWidth", viewerConfigLive.ContainerWidth, "pagePadding", viewerConfigLive.PagePadding)
	}

	// Housekeeping
	serverConfigLive.JobRetentionHours = getEnvInt("JOB_RETENTION_HOURS", 24)
	serverConfigLive.CleanupInterval = getEnvInt("CLEANUP_INTERVAL", 60)

	fmt.Println("\n========================================")
	fmt.Println("   goDocView - Document Overlay Viewer")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", serverConfigLive.ListenAddrIP, serverConfigLive.ListenAddrPort)
	if serverConfigLive.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
	}
	fmt.Printf("Detailed logs: %s\n", getEnv("LOG_FILE", "godocview.log"))
	fmt.Println("Initializing...")

	logger.Info("Viewer geometry loaded",
		"containerWidth", viewerConfigLive.ContainerWidth,
		"containerHeight", viewerConfigLive.ContainerHeight,
		"pagePadding", viewerConfigLive.PagePadding,
		"pageGap", viewerConfigLive.PageGap)

	return serverConfigLive, logger
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	logLevel := getEnv("LOG_LEVEL", "debug")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelDebug
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	logOutput := getEnv("LOG_OUTPUT", "file")
	var logWriter io.Writer

	if logOutput == "stdout" {
		logWriter = os.Stdout
	} else {
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "godocview.log")))
		if err != nil {
			fmt.Printf("Error creating log file path: %v\n", err)
			logWriter = os.Stdout
		} else {
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logWriter = os.Stdout
			} else {
				logWriter = logFile
				fmt.Println("Logging to file: ", logPath)
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}
