package messenger

import (
	"context"
	"testing"
	"time"
)

func TestMockAdapter_ListenRequiresConnect(t *testing.T) {
	m := NewMockAdapter()
	if _, err := m.Listen(context.Background()); err == nil {
		t.Error("expected error listening before connect")
	}
}

func TestMockAdapter_InboundRoundTrip(t *testing.T) {
	m := NewMockAdapter()
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	ch, err := m.Listen(context.Background())
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	m.SimulateInbound(InboundMessage{ChatID: "chat-1", UserID: "u1", Text: "hello"})

	select {
	case msg := <-ch:
		if msg.Text != "hello" || msg.ChatID != "chat-1" {
			t.Errorf("inbound = %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no inbound message")
	}
}

func TestMockAdapter_RecordsSendsAndTypings(t *testing.T) {
	m := NewMockAdapter()
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := m.Send(context.Background(), "chat-1", "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := m.Typing(context.Background(), "chat-1"); err != nil {
		t.Fatalf("typing: %v", err)
	}

	sent := m.Sent()
	if len(sent) != 1 || sent[0].ChatID != "chat-1" || sent[0].Text != "hi" {
		t.Errorf("Sent() = %v", sent)
	}
	typings := m.Typings()
	if len(typings) != 1 || typings[0] != "chat-1" {
		t.Errorf("Typings() = %v", typings)
	}
}

func TestMockAdapter_FailFlags(t *testing.T) {
	m := NewMockAdapter()
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	m.FailSends(true)
	if err := m.Send(context.Background(), "chat-1", "hi"); err == nil {
		t.Error("expected send failure")
	}
	m.FailTypings(true)
	if err := m.Typing(context.Background(), "chat-1"); err == nil {
		t.Error("expected typing failure")
	}

	m.FailSends(false)
	if err := m.Send(context.Background(), "chat-1", "hi"); err != nil {
		t.Errorf("send after clearing flag: %v", err)
	}
}

func TestMockAdapter_CloseIdempotentAndClosesChannel(t *testing.T) {
	m := NewMockAdapter()
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	ch, err := m.Listen(context.Background())
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if _, ok := <-ch; ok {
		t.Error("inbound channel still open after close")
	}
	if err := m.Connect(context.Background()); err == nil {
		t.Error("expected error connecting a closed adapter")
	}
}

func TestMockAdapter_BotUserID(t *testing.T) {
	m := NewMockAdapter()
	m.SetBotUserID("B1")
	if got := m.BotUserID(); got != "B1" {
		t.Errorf("BotUserID() = %q, want B1", got)
	}
}
