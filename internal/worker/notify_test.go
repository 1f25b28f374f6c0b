package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"cvstudio/internal/errcode"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestPublishExportNotify(t *testing.T) {
	client := newTestRedis(t)
	h := &ExportTaskHandler{
		redisClient: client,
		logger:      slog.Default(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "user_notify:7")
	defer func() {
		_ = sub.Close()
	}()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	notify := ExportNotifyMessage{
		Status:        "completed",
		CVID:          "cv-123",
		CorrelationID: "corr-1",
		ErrorCode:     errcode.OK,
	}
	if err := h.publishExportNotify(ctx, 7, notify); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive message: %v", err)
	}

	var got ExportNotifyMessage
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got.Status != "completed" || got.CVID != "cv-123" || got.CorrelationID != "corr-1" {
		t.Fatalf("unexpected notify payload: %+v", got)
	}
	if got.ErrorCode != errcode.OK {
		t.Fatalf("error code = %d, want %d", got.ErrorCode, errcode.OK)
	}
	if len(got.MissingKeys) != 0 {
		t.Fatalf("missing keys should be omitted, got %v", got.MissingKeys)
	}
}
