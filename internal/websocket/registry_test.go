package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"doc-chat-be/internal/pkg/logger"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

var _ logger.ILogger = nopLogger{}

func newRunningRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(nopLogger{})
	go r.Run()
	return r
}

func registerClient(r *Registry, userID uuid.UUID) *Client {
	c := &Client{Registry: r, UserID: userID, Send: make(chan []byte, 4)}
	r.register <- c
	waitOnline(r, userID)
	return c
}

func waitOnline(r *Registry, userID uuid.UUID) {
	deadline := time.After(time.Second)
	for {
		if r.IsOnline(userID) {
			return
		}
		select {
		case <-deadline:
			return
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSendToOfflineUserReturnsFalse(t *testing.T) {
	r := newRunningRegistry(t)

	if r.Send(uuid.New(), []byte("hello")) {
		t.Error("Send() = true for offline user, want false")
	}
}

func TestSendDeliversToLiveConnection(t *testing.T) {
	r := newRunningRegistry(t)
	userID := uuid.New()
	client := registerClient(r, userID)

	if !r.Send(userID, []byte("hello")) {
		t.Fatal("Send() = false for live connection")
	}

	select {
	case got := <-client.Send:
		if string(got) != "hello" {
			t.Errorf("delivered %q, want %q", got, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("message never reached the client channel")
	}
}

func TestSendNeverQueuesPastBuffer(t *testing.T) {
	r := newRunningRegistry(t)
	userID := uuid.New()
	c := &Client{Registry: r, UserID: userID, Send: make(chan []byte)} // unbuffered, no reader
	r.register <- c
	waitOnline(r, userID)

	done := make(chan bool, 1)
	go func() {
		done <- r.Send(userID, []byte("hello"))
	}()

	select {
	case ok := <-done:
		if ok {
			t.Error("Send() = true with no reader, want false")
		}
	case <-time.After(time.Second):
		t.Fatal("Send() blocked instead of dropping")
	}
}

func TestSecondConnectionReplacesFirst(t *testing.T) {
	r := newRunningRegistry(t)
	userID := uuid.New()

	first := registerClient(r, userID)
	second := registerClient(r, userID)

	// The first client's outbound channel is closed on eviction.
	select {
	case _, open := <-first.Send:
		if open {
			t.Error("evicted client received a message instead of close")
		}
	case <-time.After(time.Second):
		t.Fatal("evicted client's channel was never closed")
	}

	if !r.Send(userID, []byte("for the new socket")) {
		t.Fatal("Send() = false after reconnect")
	}
	select {
	case got := <-second.Send:
		if string(got) != "for the new socket" {
			t.Errorf("delivered %q to replacement", got)
		}
	case <-time.After(time.Second):
		t.Fatal("replacement connection never got the message")
	}
}

func TestStaleUnregisterDoesNotEvictReplacement(t *testing.T) {
	r := newRunningRegistry(t)
	userID := uuid.New()

	first := registerClient(r, userID)
	second := registerClient(r, userID)

	// The evicted first connection's read pump eventually unregisters; that
	// must not tear down the replacement.
	r.unregister <- first
	time.Sleep(10 * time.Millisecond)

	if !r.IsOnline(userID) {
		t.Fatal("replacement connection was evicted by a stale unregister")
	}
	if !r.Send(userID, []byte("still here")) {
		t.Error("Send() = false, replacement lost")
	}
	<-second.Send
}

func TestDispatchWithoutHandlerDoesNotPanic(t *testing.T) {
	r := NewRegistry(nopLogger{})
	r.dispatch(uuid.New(), "hello")
}

func TestDispatchInvokesHandler(t *testing.T) {
	r := NewRegistry(nopLogger{})

	var gotUser uuid.UUID
	var gotText string
	r.SetInboundHandler(func(userID uuid.UUID, text string) {
		gotUser = userID
		gotText = text
	})

	userID := uuid.New()
	r.dispatch(userID, "a question")

	if gotUser != userID || gotText != "a question" {
		t.Errorf("handler got (%v, %q)", gotUser, gotText)
	}
}

func TestSendDuringReconnectNeverPanics(t *testing.T) {
	r := newRunningRegistry(t)
	userID := uuid.New()

	stop := make(chan struct{})
	var wg sync.WaitGroup

	// Unbuffered Send channels force the non-blocking send down the default
	// branch, where a racing eviction used to close the channel mid-send.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					r.Send(userID, []byte("ping"))
				}
			}
		}()
	}

	deadline := time.After(200 * time.Millisecond)
reconnect:
	for {
		select {
		case <-deadline:
			break reconnect
		default:
			r.register <- &Client{Registry: r, UserID: userID, Send: make(chan []byte)}
		}
	}

	close(stop)
	wg.Wait()
}
