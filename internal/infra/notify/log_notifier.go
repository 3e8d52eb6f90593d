package notify

import (
	"context"
	"log/slog"
)

// メール送信の代わりにリンクをログに出す
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyVerification(ctx context.Context, email string, link string) error {
	n.logger.InfoContext(ctx, "verification link issued", "email", email, "link", link)
	return nil
}

func (n *LogNotifier) NotifyPasswordReset(ctx context.Context, email string, link string) error {
	n.logger.InfoContext(ctx, "password reset link issued", "email", email, "link", link)
	return nil
}
