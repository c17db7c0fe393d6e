package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"romtidy/internal/logging"
)

// ErrNoRunLogs is returned when the log directory holds no run logs.
var ErrNoRunLogs = errors.New("no run logs found")

// RunLog describes one run log file.
type RunLog struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Name returns the file name.
func (r RunLog) Name() string { return filepath.Base(r.Path) }

// List returns the run logs in logDir, newest first. Names embed the run
// start stamp, so name order is chronological.
func List(logDir string) ([]RunLog, error) {
	logDir = strings.TrimSpace(logDir)
	if logDir == "" {
		return nil, nil
	}
	matches, err := filepath.Glob(filepath.Join(logDir, logging.RunLogPattern))
	if err != nil {
		return nil, fmt.Errorf("list run logs: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))

	out := make([]RunLog, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, RunLog{Path: path, Size: info.Size(), ModTime: info.ModTime()})
	}
	return out, nil
}

// Latest returns the newest run log in logDir.
func Latest(logDir string) (RunLog, error) {
	runs, err := List(logDir)
	if err != nil {
		return RunLog{}, err
	}
	if len(runs) == 0 {
		return RunLog{}, fmt.Errorf("%w in %s", ErrNoRunLogs, logDir)
	}
	return runs[0], nil
}

// Last returns up to limit trailing lines of path and the file offset after
// the last complete line.
func Last(path string, limit int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		_, offset, err := readComplete(file, 0, func(string) {})
		return nil, offset, err
	}

	ring := make([]string, limit)
	count, idx := 0, 0
	_, offset, err := readComplete(file, 0, func(line string) {
		ring[idx] = line
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}

	lines := make([]string, count)
	if count == limit {
		for i := range count {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, offset, nil
}

// Follow calls emit for each complete line appended to path after offset,
// polling every interval until ctx is done.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, emit func(string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		if info, err := file.Stat(); err == nil && info.Size() < offset {
			offset = 0
		}
		_, offset, err = readComplete(file, offset, emit)
		file.Close()
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// readComplete emits every newline-terminated line from offset and returns
// the offset just past the last one.
func readComplete(file *os.File, offset int64, emit func(string)) (int, int64, error) {
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return 0, offset, fmt.Errorf("seek log file: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	count := 0
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, offset, nil
			}
			return count, offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		emit(strings.TrimRight(line, "\r\n"))
		count++
	}
}
