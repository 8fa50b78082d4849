package amqp

import (
	"testing"
	"time"

	"pondo/internal/core"
)

func TestActivityMessageRoundTrip(t *testing.T) {
	msg := NewActivityMessage("create", core.KindExpense, 42, "ana")
	if msg.Timestamp.IsZero() {
		t.Fatalf("timestamp should be stamped")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := ActivityMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Op != "create" || got.Kind != core.KindExpense || got.ID != 42 || got.Username != "ana" {
		t.Fatalf("unexpected message: %+v", got)
	}
	if !got.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Fatalf("timestamp drifted: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestActivityMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ActivityMessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
