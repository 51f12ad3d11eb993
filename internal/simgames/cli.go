package simgames

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/pbpwpa/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends log lines to stderr and to logFile. An empty logFile
// gets a timestamped name. The returned function closes the file.
func SetupLogging(logFile string, format logger.Format) (func() error, error) {
	if logFile == "" {
		logFile = "test_games_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stderr, file)), logger.WithFormat(format)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file.Close, nil
}
