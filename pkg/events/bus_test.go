package events

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	sub, unsub := bus.Subscribe()
	defer unsub()

	bus.Publish(Event{
		Type:     TypeNPCInteract,
		Interact: &Interact{CharacterID: "keeper"},
	})

	select {
	case e := <-sub:
		if e.Type != TypeNPCInteract {
			t.Errorf("Type = %q, want %q", e.Type, TypeNPCInteract)
		}
		if e.Interact == nil || e.Interact.CharacterID != "keeper" {
			t.Errorf("Interact payload = %+v", e.Interact)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
}

func TestBus_FanOut(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	sub1, unsub1 := bus.Subscribe()
	defer unsub1()
	sub2, unsub2 := bus.Subscribe()
	defer unsub2()

	bus.Publish(Event{Type: TypeTasksChanged, TasksChanged: &TasksChanged{Newly: []string{"task_x"}}})

	for i, sub := range []<-chan Event{sub1, sub2} {
		select {
		case e := <-sub:
			if e.Type != TypeTasksChanged {
				t.Errorf("Subscriber %d got %q", i, e.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("Subscriber %d timed out", i)
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	sub, unsub := bus.Subscribe()
	unsub()

	if _, ok := <-sub; ok {
		t.Error("Unsubscribed channel should be closed")
	}

	// Publishing after unsubscribe must not panic.
	bus.Publish(Event{Type: TypeDialogueAborted})
}

func TestBus_DropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	sub, unsub := bus.Subscribe()
	defer unsub()

	// Fill the buffer and then some; Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			bus.Publish(Event{Type: TypeDialogueTurn})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	// The buffered events are still deliverable.
	received := 0
	for {
		select {
		case <-sub:
			received++
		default:
			if received != subscriberBuffer {
				t.Errorf("Received %d events, want %d", received, subscriberBuffer)
			}
			return
		}
	}
}

func TestBus_Close(t *testing.T) {
	bus := NewBus(testLogger())
	sub, _ := bus.Subscribe()

	bus.Close()

	if _, ok := <-sub; ok {
		t.Error("Subscriber channel should be closed after bus close")
	}

	// Post-close operations are no-ops.
	bus.Publish(Event{Type: TypeDialogueTurn})
	bus.Close()

	late, lateUnsub := bus.Subscribe()
	defer lateUnsub()
	if _, ok := <-late; ok {
		t.Error("Subscription after close should be immediately closed")
	}
}
