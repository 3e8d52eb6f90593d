package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier_WritesLink(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, n.NotifyPasswordReset(context.Background(), "a@example.com", "http://x/auth/password-reset/tok"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "password reset link issued", rec["msg"])
	assert.Equal(t, "a@example.com", rec["email"])
	assert.Equal(t, "http://x/auth/password-reset/tok", rec["link"])
}
