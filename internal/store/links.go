package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LinkLog is the append-only record of document URLs processed in any run.
// A URL present here is never fetched again. The file holds one URL per
// line; blank lines are tolerated.
type LinkLog struct {
	file *os.File
	seen map[string]struct{}
}

// OpenLinkLog loads the existing log (creating an empty one if missing) and
// keeps the file open for appending for the life of the run.
func OpenLinkLog(path string) (*LinkLog, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open link log: %w", err)
	}

	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			seen[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		file.Close()
		return nil, fmt.Errorf("read link log: %w", err)
	}

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		file.Close()
		return nil, err
	}
	return &LinkLog{file: file, seen: seen}, nil
}

func (l *LinkLog) Seen(url string) bool {
	_, ok := l.seen[url]
	return ok
}

func (l *LinkLog) Len() int {
	return len(l.seen)
}

// Add appends the URL to the log and syncs it to disk before returning, so
// a crash later in the run cannot cause a refetch.
func (l *LinkLog) Add(url string) error {
	if l.Seen(url) {
		return nil
	}
	if _, err := fmt.Fprintf(l.file, "%s\n", url); err != nil {
		return fmt.Errorf("append link log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync link log: %w", err)
	}
	l.seen[url] = struct{}{}
	return nil
}

func (l *LinkLog) Close() error {
	return l.file.Close()
}
