package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// EventFormatter writes one line per entry:
//
//	Date: 2024-01-01, Time: 09:00:00, Event Source: wbs, Event Type: INFO, Event ID: <uuid>, Message: ..., key=value
type EventFormatter struct {
	SystemName string
}

// Format implements logrus.Formatter.
func (f *EventFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	ts := entry.Time.UTC()
	fmt.Fprintf(b, "Date: %s, Time: %s, ", ts.Format("2006-01-02"), ts.Format("15:04:05"))
	fmt.Fprintf(b, "Event Source: %s, ", f.SystemName)
	fmt.Fprintf(b, "Event Type: %s, ", strings.ToUpper(entry.Level.String()))
	fmt.Fprintf(b, "Event ID: %s, ", uuid.NewString())
	fmt.Fprintf(b, "Message: %s", entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, ", %s=%v", k, entry.Data[k])
	}

	if entry.HasCaller() {
		fmt.Fprintf(b, ", Location: %s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Options configures New.
type Options struct {
	// File, when set, receives the log through a rotating writer.
	// Otherwise entries go to stderr so stdout stays free for the MCP transport.
	File   string
	Level  string
	System string
}

// New builds a logger for the service.
func New(opts Options) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		lvl, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = lvl
	}

	system := opts.System
	if system == "" {
		system = "wbs"
	}

	var out io.Writer = os.Stderr
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return nil, fmt.Errorf("logging: create log directory: %w", err)
		}
		out = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&EventFormatter{SystemName: system})
	logger.SetLevel(level)
	return logger, nil
}
