package logscan

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"time"
)

// sampleMessages holds the message pool per level for generated logs.
var sampleMessages = map[string][]string{
	"INFO": {
		"Application started successfully",
		"User login successful",
		"Request processed",
		"Cache updated",
		"Task completed",
		"Service health check passed",
		"Configuration loaded",
		"Database connection established",
	},
	"WARN": {
		"High memory usage detected",
		"Slow query performance",
		"API rate limit approaching",
		"Cache miss",
		"Deprecated function used",
		"Connection retry attempted",
	},
	"ERROR": {
		"Database connection failed",
		"Authentication failed",
		"File not found",
		"Network timeout",
		"Invalid input received",
		"Permission denied",
		"Service unavailable",
		"Null pointer exception",
	},
}

// WriteSampleLog generates a random log file at path with entries lines in
// the "timestamp [LEVEL] message" format the analyzer expects. Levels are
// weighted roughly 70% INFO, 20% WARN, 10% ERROR.
func WriteSampleLog(path string, entries int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	ts := time.Now().Add(-2 * time.Hour)

	for i := 0; i < entries; i++ {
		level := weightedLevel()
		pool := sampleMessages[level]
		message := pool[rand.Intn(len(pool))]

		fmt.Fprintf(w, "%s [%s] %s\n", ts.Format("2006-01-02 15:04:05"), level, message)
		ts = ts.Add(time.Duration(1+rand.Intn(30)) * time.Second)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing log file: %w", err)
	}
	return nil
}

func weightedLevel() string {
	switch n := rand.Intn(100); {
	case n < 70:
		return "INFO"
	case n < 90:
		return "WARN"
	default:
		return "ERROR"
	}
}
