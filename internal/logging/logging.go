package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// JSONハンドラをデフォルトロガーにする
func Init(level string) *slog.Logger {
	return InitWriter(os.Stderr, level)
}

func InitWriter(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// 不明な値はinfo
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
