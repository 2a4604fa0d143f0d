package live

import (
	"encoding/base64"
	"fmt"

	"github.com/bytedance/sonic"
)

// MediaChunk is one inline media payload. Data is base64-encoded raw bytes;
// MIMEType fully describes the codec and its parameters
// (e.g. "audio/pcm;rate=16000").
type MediaChunk struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

func (c *MediaChunk) UnmarshalJSON(data []byte) error {
	var raw struct {
		MIMEType *string `json:"mimeType"`
		Data     *string `json:"data"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.MIMEType == nil {
		return fmt.Errorf("mediaChunk: missing mimeType")
	}
	if raw.Data == nil {
		return fmt.Errorf("mediaChunk: missing data")
	}
	c.MIMEType = *raw.MIMEType
	c.Data = *raw.Data
	return nil
}

// FileData references a file previously uploaded to the File API.
type FileData struct {
	MIMEType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

func (f *FileData) UnmarshalJSON(data []byte) error {
	var raw struct {
		MIMEType *string `json:"mimeType"`
		FileURI  *string `json:"fileUri"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.MIMEType == nil {
		return fmt.Errorf("fileData: missing mimeType")
	}
	if raw.FileURI == nil {
		return fmt.Errorf("fileData: missing fileUri")
	}
	f.MIMEType = *raw.MIMEType
	f.FileURI = *raw.FileURI
	return nil
}

// ContentPart is a union-by-presence over text, inline media, and file
// references. The wire protocol permits any combination of fields, so this is
// deliberately not a strict single-variant union.
type ContentPart struct {
	Text       *string     `json:"text,omitempty"`
	InlineData *MediaChunk `json:"inlineData,omitempty"`
	FileData   *FileData   `json:"fileData,omitempty"`
}

// NewTextContent builds a text-only content part.
func NewTextContent(text string) ContentPart {
	return ContentPart{Text: &text}
}

// Turn is one exchange unit attributed to either the user or the model.
type Turn struct {
	Role  Role          `json:"role"`
	Parts []ContentPart `json:"parts"`
}

// UnmarshalJSON applies the protocol default of "user" when role is absent and
// requires parts to be present. A role outside {user, model} fails via
// Role.UnmarshalJSON.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role  *Role          `json:"role"`
		Parts *[]ContentPart `json:"parts"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Parts == nil {
		return fmt.Errorf("turn: missing parts")
	}
	t.Role = RoleUser
	if raw.Role != nil {
		t.Role = *raw.Role
	}
	t.Parts = *raw.Parts
	return nil
}

// RealtimeInput carries one or more simultaneous streaming media chunks.
// In practice a single chunk per message.
type RealtimeInput struct {
	MediaChunks []MediaChunk `json:"mediaChunks"`
}

func (r *RealtimeInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		MediaChunks *[]MediaChunk `json:"mediaChunks"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.MediaChunks == nil {
		return fmt.Errorf("realtimeInput: missing mediaChunks")
	}
	r.MediaChunks = *raw.MediaChunks
	return nil
}

// ClientContent carries discrete turns, as opposed to realtime media.
// TurnComplete is always serialized so false is explicit on the wire.
type ClientContent struct {
	Turns        []Turn `json:"turns,omitempty"`
	TurnComplete bool   `json:"turnComplete"`
}

// AudioInputMessage is the realtimeInput envelope for a PCM audio chunk.
type AudioInputMessage struct {
	RealtimeInput RealtimeInput `json:"realtimeInput"`
}

// NewAudioInputMessage wraps already-framed PCM bytes at the stated sample
// rate. No resampling or length validation happens here; the caller guarantees
// the framing.
func NewAudioInputMessage(rawAudio []byte, sampleRate int) *AudioInputMessage {
	return &AudioInputMessage{
		RealtimeInput: RealtimeInput{
			MediaChunks: []MediaChunk{{
				MIMEType: fmt.Sprintf("audio/pcm;rate=%d", sampleRate),
				Data:     base64.StdEncoding.EncodeToString(rawAudio),
			}},
		},
	}
}

// ImageFrame is a raw pixel buffer handed to an ImageEncoder.
type ImageFrame struct {
	Pixels []byte
	Format string // "RGBA", "RGB" or "L"
	Width  int
	Height int
}

// ImageEncoder compresses a raw frame to JPEG. Implementations live outside
// this package; see the media package for the default one.
type ImageEncoder interface {
	EncodeJPEG(pixels []byte, format string, width, height int) ([]byte, error)
}

// VideoInputMessage is the realtimeInput envelope for a JPEG video frame.
type VideoInputMessage struct {
	RealtimeInput RealtimeInput `json:"realtimeInput"`
}

// NewVideoInputMessage compresses the frame through enc and wraps the result.
// Encoder failure propagates to the caller, which decides whether to drop the
// frame or abort the session.
func NewVideoInputMessage(enc ImageEncoder, frame ImageFrame) (*VideoInputMessage, error) {
	jpeg, err := enc.EncodeJPEG(frame.Pixels, frame.Format, frame.Width, frame.Height)
	if err != nil {
		return nil, fmt.Errorf("encode image frame: %w", err)
	}
	return &VideoInputMessage{
		RealtimeInput: RealtimeInput{
			MediaChunks: []MediaChunk{{
				MIMEType: "image/jpeg",
				Data:     base64.StdEncoding.EncodeToString(jpeg),
			}},
		},
	}, nil
}

// ClientContentMessage is the clientContent envelope.
type ClientContentMessage struct {
	ClientContent ClientContent `json:"clientContent"`
}

func NewClientContentMessage(turns []Turn, turnComplete bool) *ClientContentMessage {
	return &ClientContentMessage{
		ClientContent: ClientContent{Turns: turns, TurnComplete: turnComplete},
	}
}

// SystemInstruction is the system prompt, expressed as content parts.
type SystemInstruction struct {
	Parts []ContentPart `json:"parts"`
}

func (si *SystemInstruction) UnmarshalJSON(data []byte) error {
	var raw struct {
		Parts *[]ContentPart `json:"parts"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Parts == nil {
		return fmt.Errorf("systemInstruction: missing parts")
	}
	si.Parts = *raw.Parts
	return nil
}

// AudioTranscriptionConfig enables transcription for a direction when present.
// It carries no fields; presence is the signal.
type AudioTranscriptionConfig struct{}

// AutomaticActivityDetection configures server-side voice activity detection.
type AutomaticActivityDetection struct {
	Disabled                 *bool             `json:"disabled,omitempty"`
	StartOfSpeechSensitivity *StartSensitivity `json:"start_of_speech_sensitivity,omitempty"`
	PrefixPaddingMs          *int              `json:"prefix_padding_ms,omitempty"`
	EndOfSpeechSensitivity   *EndSensitivity   `json:"end_of_speech_sensitivity,omitempty"`
	SilenceDurationMs        *int              `json:"silence_duration_ms,omitempty"`
}

// RealtimeInputConfig configures how realtime media input is handled.
type RealtimeInputConfig struct {
	AutomaticActivityDetection *AutomaticActivityDetection `json:"automatic_activity_detection,omitempty"`
}

// ContextWindowCompressionConfig enables sliding-window compression of the
// session context once TriggerTokens is exceeded.
type ContextWindowCompressionConfig struct {
	SlidingWindow *bool `json:"sliding_window,omitempty"`
	TriggerTokens *int  `json:"trigger_tokens,omitempty"`
}

// NewContextWindowCompressionConfig returns a config with the sliding window
// enabled, the protocol default.
func NewContextWindowCompressionConfig(triggerTokens int) *ContextWindowCompressionConfig {
	sliding := true
	return &ContextWindowCompressionConfig{
		SlidingWindow: &sliding,
		TriggerTokens: &triggerTokens,
	}
}

// Setup is the session configuration, sent exactly once after connecting.
// Tools and GenerationConfig pass through opaquely; this package does not
// interpret their structure. Note the snake_case field names: Setup follows
// the service's config-field convention, unlike the camelCase messages.
type Setup struct {
	Model                    string                          `json:"model"`
	SystemInstruction        *SystemInstruction              `json:"system_instruction,omitempty"`
	Tools                    []map[string]any                `json:"tools,omitempty"`
	GenerationConfig         map[string]any                  `json:"generation_config,omitempty"`
	InputAudioTranscription  *AudioTranscriptionConfig       `json:"input_audio_transcription,omitempty"`
	OutputAudioTranscription *AudioTranscriptionConfig       `json:"output_audio_transcription,omitempty"`
	RealtimeInputConfig      *RealtimeInputConfig            `json:"realtime_input_config,omitempty"`
	ContextWindowCompression *ContextWindowCompressionConfig `json:"context_window_compression,omitempty"`
}

// SetupMessage is the setup envelope.
type SetupMessage struct {
	Setup Setup `json:"setup"`
}

func NewSetupMessage(setup Setup) *SetupMessage {
	return &SetupMessage{Setup: setup}
}

// FunctionResponse answers one FunctionCall from the model.
type FunctionResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// ToolResponse carries function responses back to the model.
type ToolResponse struct {
	FunctionResponses []FunctionResponse `json:"functionResponses"`
}

// ToolResponseMessage is the toolResponse envelope.
type ToolResponseMessage struct {
	ToolResponse ToolResponse `json:"toolResponse"`
}

func NewToolResponseMessage(responses []FunctionResponse) *ToolResponseMessage {
	return &ToolResponseMessage{ToolResponse: ToolResponse{FunctionResponses: responses}}
}
