// Package gemini manages the WebSocket connection to the Gemini Live
// (BidiGenerateContent) API. Wire messages are built and decoded by the live
// package; this package only sequences them: inbound frames are parsed in
// arrival order, outbound messages are serialized in send order. Reconnection
// and backoff are deliberately absent; callers that want them wrap the proxy.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/room4-2/openlive/live"
	"github.com/room4-2/openlive/media"
)

const (
	defaultHost      = "generativelanguage.googleapis.com"
	bidiGeneratePath = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// Input audio is 16kHz 16-bit LE PCM; the model answers at 24kHz.
	inputSampleRate = 16000
)

// Proxy manages one Live API session over a raw WebSocket.
type Proxy struct {
	apiKey  string
	host    string
	parser  *live.Parser
	encoder live.ImageEncoder

	conn    *websocket.Conn
	writeMu sync.Mutex

	// Callbacks for handling server events
	OnAudio               func(data []byte)       // Decoded audio bytes
	OnAudioRaw            func(base64Data string) // Raw base64 (avoids re-encoding)
	OnText                func(text string)
	OnInterrupted         func()
	OnComplete            func()
	OnToolCall            func(functionCalls []live.FunctionCall)
	OnInputTranscription  func(text string)
	OnOutputTranscription func(text string)
	OnUsage               func(usage *live.UsageMetadata)
	OnGrounding           func(meta *live.GroundingMetadata)
	OnError               func(err error)

	mu     sync.RWMutex
	closed bool
}

// NewProxy creates a disconnected proxy. Call Setup to open the session.
func NewProxy(apiKey string) (*Proxy, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	return &Proxy{
		apiKey:  apiKey,
		host:    defaultHost,
		parser:  live.NewParser(nil),
		encoder: &media.JPEGEncoder{},
	}, nil
}

// Setup dials the Live endpoint, sends the setup message and waits for the
// service's setupComplete acknowledgement.
func (gp *Proxy) Setup(ctx context.Context, setup live.Setup) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if gp.closed {
		return fmt.Errorf("proxy is closed")
	}
	if gp.conn != nil {
		return fmt.Errorf("session already established")
	}

	u := url.URL{
		Scheme:   "wss",
		Host:     gp.host,
		Path:     bidiGeneratePath,
		RawQuery: url.Values{"key": {gp.apiKey}}.Encode(),
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to dial Live API: %w", err)
	}

	if err := gp.writeJSON(conn, live.NewSetupMessage(setup)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to send setup: %w", err)
	}

	// The first frame must acknowledge the setup.
	_, raw, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to read setup acknowledgement: %w", err)
	}
	evt := gp.parser.Parse(string(raw))
	if evt == nil || evt.SetupComplete == nil {
		conn.Close()
		return fmt.Errorf("expected setupComplete acknowledgement")
	}

	gp.conn = conn
	log.Printf("✅ Connected to Gemini Live (%s)", setup.Model)
	return nil
}

// StartReceiving begins listening for server events. Malformed frames are
// logged by the parser and skipped; the stream continues with the next frame.
func (gp *Proxy) StartReceiving(ctx context.Context) {
	go func() {
		for {
			gp.mu.RLock()
			conn, closed := gp.conn, gp.closed
			gp.mu.RUnlock()
			if closed || conn == nil {
				return
			}

			_, raw, err := conn.ReadMessage()
			if err != nil {
				gp.mu.RLock()
				closed := gp.closed
				gp.mu.RUnlock()
				if !closed && ctx.Err() == nil {
					log.Printf("❌ Gemini receive error: %v", err)
					if gp.OnError != nil {
						gp.OnError(err)
					}
				}
				return
			}

			evt := gp.parser.Parse(string(raw))
			if evt == nil {
				continue
			}
			gp.handleEvent(evt)
		}
	}()
}

func (gp *Proxy) handleEvent(evt *live.ServerEvent) {
	if evt.ToolCall != nil && len(evt.ToolCall.FunctionCalls) > 0 {
		log.Printf("📥 Received from Gemini: %d function call(s)", len(evt.ToolCall.FunctionCalls))
		if gp.OnToolCall != nil {
			gp.OnToolCall(evt.ToolCall.FunctionCalls)
		}
	}

	if sc := evt.ServerContent; sc != nil {
		if sc.Interrupted != nil && *sc.Interrupted && gp.OnInterrupted != nil {
			log.Println("📥 Received from Gemini: interrupted")
			gp.OnInterrupted()
		}

		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part.Text != nil && *part.Text != "" && gp.OnText != nil {
					log.Printf("📥 Received from Gemini: text '%s'", *part.Text)
					gp.OnText(*part.Text)
				}
				if part.InlineData != nil {
					if gp.OnAudioRaw != nil {
						gp.OnAudioRaw(part.InlineData.Data)
					} else if gp.OnAudio != nil {
						data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
						if err != nil {
							log.Printf("⚠️ Invalid base64 in inlineData: %v", err)
							continue
						}
						gp.OnAudio(data)
					}
				}
			}
		}

		if sc.InputTranscription != nil && gp.OnInputTranscription != nil {
			gp.OnInputTranscription(sc.InputTranscription.Text)
		}
		if sc.OutputTranscription != nil && gp.OnOutputTranscription != nil {
			gp.OnOutputTranscription(sc.OutputTranscription.Text)
		}
		if sc.GroundingMetadata != nil && gp.OnGrounding != nil {
			gp.OnGrounding(sc.GroundingMetadata)
		}

		if sc.TurnComplete != nil && *sc.TurnComplete && gp.OnComplete != nil {
			log.Println("📥 Received from Gemini: turn complete")
			gp.OnComplete()
		}
	}

	if evt.UsageMetadata != nil && gp.OnUsage != nil {
		gp.OnUsage(evt.UsageMetadata)
	}
}

// SendAudio forwards one chunk of 16kHz PCM audio.
func (gp *Proxy) SendAudio(audioData []byte) error {
	return gp.send(live.NewAudioInputMessage(audioData, inputSampleRate))
}

// SendAudioBase64 forwards base64-encoded PCM audio.
func (gp *Proxy) SendAudioBase64(encodedAudio string) error {
	data, err := base64.StdEncoding.DecodeString(encodedAudio)
	if err != nil {
		return fmt.Errorf("invalid base64: %w", err)
	}
	return gp.SendAudio(data)
}

// SendAudioBatch sends complete batched audio at the stated sample rate,
// followed by a turn-complete signal prompting the model to respond.
func (gp *Proxy) SendAudioBatch(audioData []byte, sampleRate int) error {
	if len(audioData) == 0 {
		return nil
	}
	if err := gp.send(live.NewAudioInputMessage(audioData, sampleRate)); err != nil {
		return fmt.Errorf("failed to send audio batch: %w", err)
	}
	return gp.SendTurnComplete()
}

// SendImageFrame compresses a raw video frame to JPEG and forwards it.
// Encoder failure propagates; the caller decides whether to drop the frame.
func (gp *Proxy) SendImageFrame(frame live.ImageFrame) error {
	msg, err := live.NewVideoInputMessage(gp.encoder, frame)
	if err != nil {
		return err
	}
	return gp.send(msg)
}

// SendText sends a complete user text turn (useful for testing).
func (gp *Proxy) SendText(text string) error {
	msg := live.NewClientContentMessage([]live.Turn{
		{Role: live.RoleUser, Parts: []live.ContentPart{live.NewTextContent(text)}},
	}, true)
	if err := gp.send(msg); err != nil {
		return fmt.Errorf("failed to send text: %w", err)
	}
	log.Printf("📤 Sent text to Gemini: %s", text)
	return nil
}

// SendTurnComplete signals the end of the client's turn without new content.
func (gp *Proxy) SendTurnComplete() error {
	return gp.send(live.NewClientContentMessage(nil, true))
}

// SendToolResponse sends function call responses back to the model.
func (gp *Proxy) SendToolResponse(responses []live.FunctionResponse) error {
	if err := gp.send(live.NewToolResponseMessage(responses)); err != nil {
		return fmt.Errorf("failed to send tool response: %w", err)
	}
	log.Printf("📤 Sent %d tool response(s) to Gemini", len(responses))
	return nil
}

func (gp *Proxy) send(msg any) error {
	gp.mu.RLock()
	conn, closed := gp.conn, gp.closed
	gp.mu.RUnlock()

	if closed || conn == nil {
		return fmt.Errorf("proxy is closed or not connected")
	}
	return gp.writeJSON(conn, msg)
}

func (gp *Proxy) writeJSON(conn *websocket.Conn, msg any) error {
	payload, err := sonic.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	gp.writeMu.Lock()
	defer gp.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// Close terminates the Live connection.
func (gp *Proxy) Close() error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if gp.closed {
		return nil
	}
	gp.closed = true

	if gp.conn != nil {
		return gp.conn.Close()
	}
	return nil
}
