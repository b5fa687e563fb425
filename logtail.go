package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// LogTailer follows the Archipelago client's log file and feeds each new
// line to subscribers. The file is reopened when it rotates or shrinks.
type LogTailer struct {
	path        string
	subscribers []LineSubscriber
}

func NewLogTailer(path string) *LogTailer {
	return &LogTailer{path: path}
}

func (t *LogTailer) Subscribe(sub LineSubscriber) {
	t.subscribers = append(t.subscribers, sub)
}

func (t *LogTailer) Run(ctx context.Context) error {
	for {
		if err := t.tail(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("log tail error: %v, retrying in 10s", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(10 * time.Second):
		}
	}
}

func (t *LogTailer) tail(ctx context.Context) error {
	f, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	// Start at the end: only new session output matters.
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("seek %s: %w", t.path, err)
	}
	log.Printf("tailing %s from offset %d", t.path, offset)

	reader := bufio.NewReader(f)
	var partial string
	for {
		if ctx.Err() != nil {
			return nil
		}

		chunk, err := reader.ReadString('\n')
		offset += int64(len(chunk))
		if err == nil {
			line := partial + chunk
			partial = ""
			for _, sub := range t.subscribers {
				sub.OnLine(line)
			}
			continue
		}
		if err != io.EOF {
			return fmt.Errorf("read %s: %w", t.path, err)
		}
		// Incomplete line at EOF: hold it until the writer finishes it.
		partial += chunk

		// Check for rotation or truncation, then poll for more output.
		info, statErr := os.Stat(t.path)
		if statErr != nil || info.Size() < offset {
			return fmt.Errorf("log file rotated or removed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(500 * time.Millisecond):
		}
	}
}
