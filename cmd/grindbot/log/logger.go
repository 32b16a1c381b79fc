package log

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	logFile *os.File
	writer  *bufio.Writer
)

// NewLogger builds the process-wide slog logger, mirroring output to stdout
// and a timestamped file under saveDirectory. suffix is appended to the file
// name to tell instances apart when several characters run at once.
func NewLogger(debug bool, saveDirectory string, suffix string) (*slog.Logger, error) {
	if saveDirectory == "" {
		saveDirectory = "logs"
	}
	if err := os.MkdirAll(saveDirectory, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	name := fmt.Sprintf("grindbot-%s", time.Now().Format("2006-01-02-15_04_05"))
	if suffix != "" {
		name += "-" + suffix
	}

	f, err := os.Create(filepath.Join(saveDirectory, name+".txt"))
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}

	mu.Lock()
	logFile = f
	writer = bufio.NewWriter(f)
	mu.Unlock()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, writer), &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler), nil
}

// FlushLog forces buffered log lines to disk.
func FlushLog() {
	mu.Lock()
	defer mu.Unlock()
	if writer != nil {
		_ = writer.Flush()
	}
}

// FlushAndClose flushes and closes the log file, used on shutdown.
func FlushAndClose() {
	mu.Lock()
	defer mu.Unlock()
	if writer != nil {
		_ = writer.Flush()
		writer = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
