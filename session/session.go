package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/room4-2/openlive/config"
	"github.com/room4-2/openlive/functions"
	"github.com/room4-2/openlive/gemini"
	"github.com/room4-2/openlive/live"
	"github.com/room4-2/openlive/messages"
)

const (
	writeBufferSize = 256
	writeTimeout    = 10 * time.Second

	// Frontend clients stream 16kHz 16-bit LE PCM
	clientSampleRate = 16000
)

// ClientSession represents a single user's connection
type ClientSession struct {
	ID           string
	ClientConn   *websocket.Conn
	GeminiProxy  *gemini.Proxy
	AudioBuffer  *AudioBuffer // Buffer for incoming audio chunks
	CreatedAt    time.Time
	LastActivity time.Time

	tools *functions.Registry

	// Use channels for non-blocking writes
	writeChan chan any

	mu        sync.RWMutex
	closed    bool
	CloseChan chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClientSession creates a session with a live Gemini connection
func NewClientSession(ctx context.Context, id string, clientConn *websocket.Conn, cfg *config.Config, systemPrompt string, tools *functions.Registry) (*ClientSession, error) {
	proxy, err := gemini.NewProxy(cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini proxy: %w", err)
	}

	if err := proxy.Setup(ctx, cfg.LiveSetup(systemPrompt, tools.Tools())); err != nil {
		proxy.Close()
		return nil, fmt.Errorf("failed to setup Gemini session: %w", err)
	}

	sessionCtx, cancel := context.WithCancel(context.Background())

	// Configure WebSocket for better performance
	clientConn.SetReadLimit(512 * 1024) // 512KB max message
	clientConn.EnableWriteCompression(true)
	clientConn.SetCompressionLevel(6)

	session := &ClientSession{
		ID:           id,
		ClientConn:   clientConn,
		GeminiProxy:  proxy,
		AudioBuffer:  NewAudioBuffer(cfg.MaxBufferSize, clientSampleRate),
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
		tools:        tools,
		writeChan:    make(chan any, writeBufferSize),
		CloseChan:    make(chan struct{}),
		ctx:          sessionCtx,
		cancel:       cancel,
	}

	return session, nil
}

// Start begins the bidirectional message handling
func (cs *ClientSession) Start() {
	go cs.writePump()
	cs.setupGeminiCallbacks()
	cs.GeminiProxy.StartReceiving(cs.ctx)
	cs.queueMessage(messages.NewStatusMessage(cs.ID, "connected", "Session established"))
	go cs.handleClientMessages()
}

func (cs *ClientSession) setupGeminiCallbacks() {
	cs.GeminiProxy.OnAudioRaw = func(base64Data string) {
		cs.queueMessage(messages.NewAudioMessage(cs.ID, base64Data))
	}

	cs.GeminiProxy.OnText = func(text string) {
		cs.queueMessage(messages.NewTextMessage(cs.ID, text))
	}

	cs.GeminiProxy.OnInputTranscription = func(text string) {
		cs.queueMessage(messages.NewTranscriptMessage(cs.ID, "input", text))
	}

	cs.GeminiProxy.OnOutputTranscription = func(text string) {
		cs.queueMessage(messages.NewTranscriptMessage(cs.ID, "output", text))
	}

	cs.GeminiProxy.OnInterrupted = func() {
		cs.queueMessage(messages.NewStatusMessage(cs.ID, "interrupted", ""))
	}

	cs.GeminiProxy.OnComplete = func() {
		cs.queueMessage(messages.NewStatusMessage(cs.ID, "turn_complete", ""))
	}

	cs.GeminiProxy.OnUsage = func(usage *live.UsageMetadata) {
		if usage.TotalTokenCount != nil {
			log.Printf("📊 [%s] Usage: %d total tokens", cs.ID[:8], *usage.TotalTokenCount)
		}
	}

	cs.GeminiProxy.OnError = func(err error) {
		log.Printf("❌ [%s] Gemini error: %v", cs.ID[:8], err)
		cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeGeminiError, err.Error()))
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) ||
			websocket.IsUnexpectedCloseError(err) {
			log.Printf("🔌 [%s] Closing session due to Gemini connection error", cs.ID[:8])
			cs.Close()
		}
	}

	cs.GeminiProxy.OnToolCall = func(functionCalls []live.FunctionCall) {
		cs.handleToolCalls(functionCalls)
	}
}

// writePump handles all outgoing messages in a single goroutine
func (cs *ClientSession) writePump() {
	defer func() {
		cs.ClientConn.SetWriteDeadline(time.Now().Add(writeTimeout))
		cs.ClientConn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
	}()

	// writeChan is never closed; CloseChan is the shutdown signal. Closing
	// the channel would race with concurrent queueMessage sends.
	for {
		select {
		case <-cs.CloseChan:
			return
		case msg := <-cs.writeChan:
			cs.ClientConn.SetWriteDeadline(time.Now().Add(writeTimeout))

			if err := cs.ClientConn.WriteJSON(msg); err != nil {
				return
			}

			// Drain whatever queued up while writing
			n := len(cs.writeChan)
			for i := 0; i < n; i++ {
				select {
				case msg := <-cs.writeChan:
					if err := cs.ClientConn.WriteJSON(msg); err != nil {
						return
					}
				default:
				}
			}
		}
	}
}

// queueMessage adds a message to the write queue (non-blocking)
func (cs *ClientSession) queueMessage(msg any) {
	cs.mu.RLock()
	closed := cs.closed
	cs.mu.RUnlock()
	if closed {
		return
	}
	select {
	case cs.writeChan <- msg:
		cs.mu.Lock()
		cs.LastActivity = time.Now()
		cs.mu.Unlock()
	default:
		// Queue full, drop message (shouldn't happen with proper sizing)
	}
}

// Close terminates the session and cleans up resources
func (cs *ClientSession) Close() error {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return nil
	}
	cs.closed = true
	cs.mu.Unlock()

	cs.cancel()

	// Only CloseChan is closed; writeChan stays open so a queueMessage racing
	// with Close lands in the buffered channel instead of panicking. The
	// stragglers are dropped with the session.
	close(cs.CloseChan)

	if cs.AudioBuffer != nil {
		cs.AudioBuffer.Clear()
	}

	if cs.GeminiProxy != nil {
		cs.GeminiProxy.Close()
	}

	if cs.ClientConn != nil {
		cs.ClientConn.Close()
	}

	return nil
}

func (cs *ClientSession) handleClientMessages() {
	defer cs.Close()

	for {
		select {
		case <-cs.CloseChan:
			return
		default:
			messageType, message, err := cs.ClientConn.ReadMessage()
			if err != nil {
				return
			}

			cs.mu.Lock()
			cs.LastActivity = time.Now()
			cs.mu.Unlock()

			// Binary messages are raw PCM audio; buffer until end of turn
			if messageType == websocket.BinaryMessage {
				if err := cs.AudioBuffer.Append(message); err != nil {
					cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeBufferFull,
						fmt.Sprintf("Audio buffer full (max %d bytes)", cs.AudioBuffer.MaxSize())))
				}
				continue
			}

			var clientMsg messages.ClientMessage
			if err := json.Unmarshal(message, &clientMsg); err != nil {
				cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Invalid message format"))
				continue
			}

			cs.processClientMessage(&clientMsg)
		}
	}
}

func (cs *ClientSession) processClientMessage(msg *messages.ClientMessage) {
	switch msg.Type {
	case "audio":
		var payload messages.AudioPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Invalid audio payload"))
			return
		}
		audioBytes, err := base64.StdEncoding.DecodeString(payload.Data)
		if err != nil {
			cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Invalid base64 audio data"))
			return
		}
		if err := cs.AudioBuffer.Append(audioBytes); err != nil {
			cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeBufferFull,
				fmt.Sprintf("Audio buffer full (max %d bytes)", cs.AudioBuffer.MaxSize())))
		}

	case "control":
		var payload messages.ControlPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Invalid control payload"))
			return
		}
		cs.handleControlMessage(&payload)

	default:
		cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Unknown message type: "+msg.Type))
	}
}

func (cs *ClientSession) handleControlMessage(payload *messages.ControlPayload) {
	switch payload.Action {
	case "ping":
		cs.queueMessage(messages.NewStatusMessage(cs.ID, "pong", ""))
	case "end_turn":
		cs.handleEndTurn()
	default:
		cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Unknown control action: "+payload.Action))
	}
}

// handleEndTurn flushes the audio buffer and sends the batch to Gemini
func (cs *ClientSession) handleEndTurn() {
	batch := cs.AudioBuffer.Flush()
	if batch.IsEmpty() {
		log.Printf("⚠️ [%s] end_turn received but buffer is empty, ignoring", cs.ID[:8])
		return
	}
	log.Printf("📤 [%s] Sending batch audio to Gemini: %d bytes (%d chunks)", cs.ID[:8], len(batch.Data), batch.ChunkCount)

	if err := cs.GeminiProxy.SendAudioBatch(batch.Data, batch.SampleRate); err != nil {
		log.Printf("❌ [%s] Failed to send audio to Gemini: %v", cs.ID[:8], err)
		cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeGeminiError, err.Error()))
	}
}

// IsClosed returns whether the session is closed
func (cs *ClientSession) IsClosed() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.closed
}

// handleToolCalls runs the requested functions and sends responses back
func (cs *ClientSession) handleToolCalls(functionCalls []live.FunctionCall) {
	var responses []live.FunctionResponse

	for _, fc := range functionCalls {
		log.Printf("🔧 [%s] Function call: %s (id: %s)", cs.ID[:8], fc.Name, fc.ID)

		result, ok := cs.tools.Call(fc.Name, fc.Args)
		if !ok {
			result = map[string]any{"error": fmt.Sprintf("Unknown function: %s", fc.Name)}
			log.Printf("⚠️ [%s] Unknown function called: %s", cs.ID[:8], fc.Name)
		}

		responses = append(responses, live.FunctionResponse{
			ID:       fc.ID,
			Name:     fc.Name,
			Response: result,
		})
	}

	if err := cs.GeminiProxy.SendToolResponse(responses); err != nil {
		log.Printf("❌ [%s] Failed to send tool response: %v", cs.ID[:8], err)
		cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeGeminiError, err.Error()))
	}
}
