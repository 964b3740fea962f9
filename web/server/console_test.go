package server

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWebLogger_Levels(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("test-render-123", messageChan)

	logger.Infof("loading %s", "cornell")
	logger.Warningf("slow render: %d spp", 5000)
	logger.Errorf("render failed")

	expected := []struct {
		message string
		level   string
	}{
		{"loading cornell", "info"},
		{"slow render: 5000 spp", "warning"},
		{"render failed", "error"},
	}

	for i, want := range expected {
		select {
		case msg := <-messageChan:
			if msg.Message != want.message {
				t.Errorf("Message %d: expected %q, got %q", i, want.message, msg.Message)
			}
			if msg.Level != want.level {
				t.Errorf("Message %d: expected level %q, got %q", i, want.level, msg.Level)
			}
			if time.Since(msg.Timestamp) > time.Second {
				t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for message %d", i)
		}
	}
}

func TestWebLogger_ChannelFull(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewWebLogger("test-render-789", messageChan)

	logger.Infof("Message 1")
	// These must not block even though the channel is full
	logger.Infof("Message 2")
	logger.Infof("Message 3")

	msg := <-messageChan
	if msg.Message != "Message 1" {
		t.Errorf("Expected the first message to be kept, got %q", msg.Message)
	}
	select {
	case extra := <-messageChan:
		t.Errorf("Expected later messages to be dropped, got %q", extra.Message)
	default:
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	logger := NewWebLogger("test-render-nil", nil)

	// This should not panic
	logger.Infof("Test message with nil channel")
}

func TestConsoleMessage_JSON(t *testing.T) {
	msg := ConsoleMessage{
		Message:   "Test message",
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:     "info",
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := `{"message":"Test message","timestamp":"2024-01-02T03:04:05Z","level":"info"}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}
