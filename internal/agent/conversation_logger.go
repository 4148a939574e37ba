package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"
)

// ConversationLogEvent is one NDJSON line in a conversation log.
type ConversationLogEvent struct {
	Timestamp  string         `json:"ts"`
	UserID     string         `json:"user_id"`
	SessionID  string         `json:"session_id"`
	Channel    string         `json:"channel"`
	Direction  string         `json:"direction"`
	EventType  string         `json:"event_type"`
	ContentRaw string         `json:"content_raw,omitempty"`
	Content    string         `json:"content,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// ConversationLogConfig controls where and whether conversations are logged.
type ConversationLogConfig struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
}

// ConversationLogger records plan and chat traffic.
type ConversationLogger interface {
	Log(event ConversationLogEvent)
	Close() error
}

type noopConversationLogger struct{}

func (noopConversationLogger) Log(ConversationLogEvent) {}
func (noopConversationLogger) Close() error             { return nil }

// fileConversationLogger writes events on a single goroutine.
// Log never blocks; when the queue is full the event is dropped.
type fileConversationLogger struct {
	cfg    ConversationLogConfig
	logger *slog.Logger
	queue  chan ConversationLogEvent
	done   chan struct{}

	mu     sync.RWMutex
	closed bool

	files map[string]*os.File // owned by the writer goroutine
}

// NewConversationLogger returns a file-backed logger, or a no-op logger when
// disabled.
func NewConversationLogger(cfg ConversationLogConfig, logger *slog.Logger) (ConversationLogger, error) {
	if !cfg.Enabled {
		return noopConversationLogger{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("conversation log dir is empty")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create conversation log dir: %w", err)
	}

	l := &fileConversationLogger{
		cfg:    cfg,
		logger: logger,
		queue:  make(chan ConversationLogEvent, cfg.QueueSize),
		done:   make(chan struct{}),
		files:  make(map[string]*os.File),
	}
	go l.run()
	return l, nil
}

func (l *fileConversationLogger) Log(event ConversationLogEvent) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if event.Content == "" && event.ContentRaw != "" {
		event.Content = cleanForReadability(event.ContentRaw)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- event:
	default:
		l.logger.Warn("conversation log queue full, dropping event",
			"user_id", event.UserID,
			"event_type", event.EventType,
		)
	}
}

func (l *fileConversationLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done

	var firstErr error
	for path, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", path, err)
		}
	}
	return firstErr
}

func (l *fileConversationLogger) run() {
	defer close(l.done)
	for event := range l.queue {
		line, err := json.Marshal(event)
		if err != nil {
			l.logger.Warn("failed to marshal conversation event", "error", err)
			continue
		}
		line = append(line, '\n')

		path := filepath.Join(l.cfg.Dir, safePathPart(event.UserID, "anonymous"), safePathPart(event.SessionID, "default")+".ndjson")
		l.write(path, line)
		if l.cfg.GlobalEnabled && l.cfg.GlobalPath != "" {
			l.write(l.cfg.GlobalPath, line)
		}
	}
}

func (l *fileConversationLogger) write(path string, line []byte) {
	f, ok := l.files[path]
	if !ok {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			l.logger.Warn("failed to create conversation log dir", "path", path, "error", err)
			return
		}
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // path components are sanitized
		if err != nil {
			l.logger.Warn("failed to open conversation log", "path", path, "error", err)
			return
		}
		l.files[path] = f
	}
	if _, err := f.Write(line); err != nil {
		l.logger.Warn("failed to write conversation log", "path", path, "error", err)
	}
}

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func safePathPart(s, fallback string) string {
	s = unsafePathChars.ReplaceAllString(strings.TrimSpace(s), "_")
	if s == "" || s == "." || s == ".." {
		return fallback
	}
	return s
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07]*\x07`)

// cleanForReadability strips ANSI escapes and control characters.
func cleanForReadability(s string) string {
	s = ansiPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
