// Package logging builds the console's structured logger. The terminal
// belongs to the UI, so records go to a JSON file.
package logging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveKeys are never written in plain text.
var sensitiveKeys = []string{"code", "digit", "phone", "token", "secret"}

// ParseLevel maps debug|info|warn|error to a slog level. Empty means info.
func ParseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(raw) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", raw, err)
	}
	return level, nil
}

// New returns a JSON logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(WrapHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}

// Open creates the log file's directory and returns a logger appending to
// it, plus the file to close on exit.
func Open(path, level string) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return New(f, lvl), f, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// RedactingHandler masks sensitive attributes and fingerprints usernames
// before passing records on.
type RedactingHandler struct {
	next slog.Handler
}

func WrapHandler(next slog.Handler) slog.Handler {
	return &RedactingHandler{next: next}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(RedactAttr(attr))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		clean = append(clean, RedactAttr(a))
	}
	return &RedactingHandler{next: h.next.WithAttrs(clean)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

// RedactAttr returns attr with sensitive values masked.
func RedactAttr(attr slog.Attr) slog.Attr {
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		members := attr.Value.Group()
		clean := make([]slog.Attr, 0, len(members))
		for _, m := range members {
			clean = append(clean, RedactAttr(m))
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(clean...)}
	}
	key := strings.ToLower(strings.TrimSpace(attr.Key))
	for _, part := range sensitiveKeys {
		if strings.Contains(key, part) {
			return slog.String(attr.Key, redacted)
		}
	}
	if key == "username" || key == "user" {
		return slog.String(attr.Key+"_fp", Fingerprint(attr.Value.String()))
	}
	return attr
}

// Fingerprint hashes an identifier so log lines can be correlated without
// storing it.
func Fingerprint(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return "fp_" + hex.EncodeToString(sum[:6])
}
