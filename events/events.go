package events

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const maxRecentEvents = 50

var (
	mutex   = &sync.Mutex{}
	events  []Event
	logFile *os.File
)

// Init opens a new timestamped event log file in dir
func Init(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(dir, fmt.Sprintf("events_%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	mutex.Lock()
	defer mutex.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = file

	// Write initial log entry
	_, err = logFile.WriteString(fmt.Sprintf("=== Event Log Started at %s ===\n", time.Now().Format("2006-01-02 15:04:05")))
	return err
}

// Close closes the event log file
func Close() error {
	mutex.Lock()
	defer mutex.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func LogEvent(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	mutex.Lock()
	defer mutex.Unlock()
	events = append(events, event)
	if len(events) > maxRecentEvents {
		events = append([]Event(nil), events[len(events)-maxRecentEvents:]...)
	}

	if logFile == nil {
		return
	}

	// Format: [timestamp] EVENT_TYPE: source detail
	logLine := fmt.Sprintf("[%s] %s: %s",
		event.Timestamp.Format("2006-01-02 15:04:05"),
		strings.ToUpper(event.Type),
		event.Source)
	if event.Detail != "" {
		logLine += " (" + event.Detail + ")"
	}

	if _, err := logFile.WriteString(logLine + "\n"); err != nil {
		log.Printf("Failed to write to log file: %v", err)
	}
}

// GetEvents returns the recent events (last 50)
func GetEvents() []Event {
	mutex.Lock()
	defer mutex.Unlock()

	out := make([]Event, len(events))
	copy(out, events)
	return out
}
