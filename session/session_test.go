package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/room4-2/openlive/messages"
)

// newTestSession builds a session without a client connection or Gemini
// proxy, enough to exercise lifecycle and queueing.
func newTestSession(id string) *ClientSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &ClientSession{
		ID:           id,
		AudioBuffer:  NewAudioBuffer(1024, clientSampleRate),
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
		writeChan:    make(chan any, writeBufferSize),
		CloseChan:    make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	cs := newTestSession("aaaabbbb-test")
	require.NoError(t, cs.Close())
	require.NoError(t, cs.Close())
	assert.True(t, cs.IsClosed())
}

func TestUnknownMessageTypeIsRejected(t *testing.T) {
	cs := newTestSession("aaaabbbb-test")
	defer cs.Close()

	cs.processClientMessage(&messages.ClientMessage{Type: "config", Payload: []byte(`{}`)})

	select {
	case queued := <-cs.writeChan:
		msg, ok := queued.(*messages.ServerMessage)
		require.True(t, ok)
		assert.Equal(t, messages.TypeError, msg.Type)
	default:
		t.Fatal("expected an error message to be queued")
	}
}

func TestQueueMessageDuringCloseDoesNotPanic(t *testing.T) {
	cs := newTestSession("aaaabbbb-test")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				cs.queueMessage(messages.NewStatusMessage(cs.ID, "pong", ""))
			}
		}()
	}

	cs.Close()
	wg.Wait()

	assert.True(t, cs.IsClosed())

	// Queueing after close is a silent drop
	cs.queueMessage(messages.NewStatusMessage(cs.ID, "pong", ""))
}
