package websocket

import (
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

func TestHandleFrameDoesNotBlockOnSlowTurn(t *testing.T) {
	r := NewRegistry(nopLogger{})

	release := make(chan struct{})
	handled := make(chan string, 2)
	r.SetInboundHandler(func(userID uuid.UUID, text string) {
		<-release
		handled <- text
	})

	c := &Client{Registry: r, UserID: uuid.New(), Send: make(chan []byte, 4)}

	done := make(chan struct{})
	go func() {
		c.handleFrame(websocket.TextMessage, []byte("first"))
		c.handleFrame(websocket.TextMessage, []byte("second"))
		close(done)
	}()

	// Both frames must be accepted while the handler is still busy.
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handleFrame blocked behind a slow inbound turn")
	}

	close(release)
	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case text := <-handled:
			got[text] = true
		case <-time.After(time.Second):
			t.Fatal("handler never ran for a dispatched frame")
		}
	}
	if !got["first"] || !got["second"] {
		t.Errorf("handled frames = %v, want both", got)
	}
}

func TestHandleFrameIgnoresNonTextFrames(t *testing.T) {
	r := NewRegistry(nopLogger{})

	handled := make(chan struct{}, 1)
	r.SetInboundHandler(func(uuid.UUID, string) {
		handled <- struct{}{}
	})

	c := &Client{Registry: r, UserID: uuid.New(), Send: make(chan []byte, 4)}
	c.handleFrame(websocket.BinaryMessage, []byte{0x01})

	select {
	case <-handled:
		t.Error("binary frame reached the inbound handler")
	case <-time.After(50 * time.Millisecond):
	}
}
