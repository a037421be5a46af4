package logger_test

import (
	"log/slog"

	"github.com/soundprediction/hskg/pkg/logger"
)

func ExampleNewDefaultLogger() {
	// Create a logger with default settings
	log := logger.NewDefaultLogger(slog.LevelDebug)

	// Log different levels
	log.Debug("This is a debug message")
	log.Info("This is an info message")
	log.Info("Saved graph", "graph_id", "7f9c") // Will be green in terminal
	log.Warn("This is a warning message")       // Will be yellow in terminal
	log.Error("This is an error message")       // Will be red in terminal
}

func ExampleNew() {
	// Create a logger from configuration values
	log := logger.New("info", "color")

	// Log with attributes
	log.Info("Building graph", "items", 120, "threshold", 0.7)
	log.Info("Persisting graph", "nodes", 120, "relations", 342)        // Green
	log.Warn("Dropping relation with unresolved endpoint", "id", "r-1") // Yellow
	log.Error("Storage connection failed", "error", "timeout")          // Red
}
