package live

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAudioInputMessageRoundTrip(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xFE, 0xFF, 0x7F, 0x80}
	msg := NewAudioInputMessage(raw, 16000)

	require.Len(t, msg.RealtimeInput.MediaChunks, 1)
	chunk := msg.RealtimeInput.MediaChunks[0]
	assert.Equal(t, "audio/pcm;rate=16000", chunk.MIMEType)

	decoded, err := base64.StdEncoding.DecodeString(chunk.Data)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestNewAudioInputMessageRateInMIMEType(t *testing.T) {
	msg := NewAudioInputMessage([]byte{1}, 24000)
	assert.Equal(t, "audio/pcm;rate=24000", msg.RealtimeInput.MediaChunks[0].MIMEType)
}

type stubEncoder struct {
	out []byte
	err error
}

func (s *stubEncoder) EncodeJPEG(pixels []byte, format string, width, height int) ([]byte, error) {
	return s.out, s.err
}

func TestNewVideoInputMessage(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	msg, err := NewVideoInputMessage(&stubEncoder{out: jpeg}, ImageFrame{
		Pixels: []byte{0, 0, 0, 255},
		Format: "RGBA",
		Width:  1,
		Height: 1,
	})
	require.NoError(t, err)
	require.Len(t, msg.RealtimeInput.MediaChunks, 1)

	chunk := msg.RealtimeInput.MediaChunks[0]
	assert.Equal(t, "image/jpeg", chunk.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(jpeg), chunk.Data)
}

func TestNewVideoInputMessageEncoderFailure(t *testing.T) {
	encErr := errors.New("bad frame")
	msg, err := NewVideoInputMessage(&stubEncoder{err: encErr}, ImageFrame{})
	assert.Nil(t, msg)
	require.Error(t, err)
	assert.ErrorIs(t, err, encErr)
}

func TestClientContentSerialization(t *testing.T) {
	msg := NewClientContentMessage(nil, false)
	out, err := sonic.Marshal(msg)
	require.NoError(t, err)

	// turnComplete is always explicit; absent turns are omitted
	assert.Contains(t, string(out), `"turnComplete":false`)
	assert.NotContains(t, string(out), `"turns"`)

	msg = NewClientContentMessage([]Turn{
		{Role: RoleUser, Parts: []ContentPart{NewTextContent("hi")}},
	}, true)
	out, err = sonic.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"turnComplete":true`)
	assert.Contains(t, string(out), `"role":"user"`)
	assert.Contains(t, string(out), `"text":"hi"`)
}

func TestContentPartOmitsAbsentFields(t *testing.T) {
	out, err := sonic.Marshal(NewTextContent("hello"))
	require.NoError(t, err)
	assert.Equal(t, `{"text":"hello"}`, string(out))

	part := ContentPart{FileData: &FileData{MIMEType: "video/mp4", FileURI: "files/abc"}}
	out, err = sonic.Marshal(part)
	require.NoError(t, err)
	assert.Equal(t, `{"fileData":{"mimeType":"video/mp4","fileUri":"files/abc"}}`, string(out))
}

func TestSetupSerialization(t *testing.T) {
	pad := 300
	silence := 800
	start := StartSensitivityHigh
	end := EndSensitivityLow

	setup := Setup{
		Model:                   "models/gemini-live",
		SystemInstruction:       &SystemInstruction{Parts: []ContentPart{NewTextContent("be brief")}},
		Tools:                   []map[string]any{{"google_search": map[string]any{}}},
		InputAudioTranscription: &AudioTranscriptionConfig{},
		RealtimeInputConfig: &RealtimeInputConfig{
			AutomaticActivityDetection: &AutomaticActivityDetection{
				StartOfSpeechSensitivity: &start,
				PrefixPaddingMs:          &pad,
				EndOfSpeechSensitivity:   &end,
				SilenceDurationMs:        &silence,
			},
		},
		ContextWindowCompression: NewContextWindowCompressionConfig(16000),
	}

	out, err := sonic.Marshal(NewSetupMessage(setup))
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, sonic.Unmarshal(out, &tree))

	s, ok := tree["setup"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "models/gemini-live", s["model"])
	assert.Contains(t, s, "system_instruction")
	assert.Contains(t, s, "input_audio_transcription")
	assert.NotContains(t, s, "output_audio_transcription")
	assert.NotContains(t, s, "generation_config")

	ric, ok := s["realtime_input_config"].(map[string]any)
	require.True(t, ok)
	vad, ok := ric["automatic_activity_detection"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "START_SENSITIVITY_HIGH", vad["start_of_speech_sensitivity"])
	assert.Equal(t, "END_SENSITIVITY_LOW", vad["end_of_speech_sensitivity"])
	assert.Equal(t, float64(300), vad["prefix_padding_ms"])
	assert.Equal(t, float64(800), vad["silence_duration_ms"])
	assert.NotContains(t, vad, "disabled")

	cwc, ok := s["context_window_compression"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, cwc["sliding_window"])
	assert.Equal(t, float64(16000), cwc["trigger_tokens"])
}

func TestToolResponseMessage(t *testing.T) {
	msg := NewToolResponseMessage([]FunctionResponse{
		{ID: "1", Name: "foo", Response: map[string]any{"output": "ok"}},
	})
	out, err := sonic.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"toolResponse"`)
	assert.Contains(t, string(out), `"functionResponses"`)
	assert.Contains(t, string(out), `"id":"1"`)
}

func TestMediaChunkRequiredFields(t *testing.T) {
	var chunk MediaChunk
	require.Error(t, sonic.Unmarshal([]byte(`{"mimeType": "audio/pcm"}`), &chunk))
	require.Error(t, sonic.Unmarshal([]byte(`{"data": "AAAA"}`), &chunk))
	require.NoError(t, sonic.Unmarshal([]byte(`{"mimeType": "audio/pcm", "data": ""}`), &chunk))
	assert.Equal(t, "audio/pcm", chunk.MIMEType)
	assert.Empty(t, chunk.Data)
}

func TestFileDataRequiredFields(t *testing.T) {
	var fd FileData
	require.Error(t, sonic.Unmarshal([]byte(`{"mimeType": "video/mp4"}`), &fd))
	require.NoError(t, sonic.Unmarshal([]byte(`{"mimeType": "video/mp4", "fileUri": "files/x"}`), &fd))
	assert.Equal(t, "files/x", fd.FileURI)
}

func TestRealtimeInputRequiresMediaChunks(t *testing.T) {
	var ri RealtimeInput
	require.Error(t, sonic.Unmarshal([]byte(`{}`), &ri))
	require.NoError(t, sonic.Unmarshal([]byte(`{"mediaChunks": []}`), &ri))
	assert.Empty(t, ri.MediaChunks)
}

func TestSystemInstructionRequiresParts(t *testing.T) {
	var si SystemInstruction
	require.Error(t, sonic.Unmarshal([]byte(`{}`), &si))
	require.NoError(t, sonic.Unmarshal([]byte(`{"parts": [{"text": "hi"}]}`), &si))
	require.Len(t, si.Parts, 1)
}

func TestContentPartNesting(t *testing.T) {
	// A ContentPart carrying fileData round-trips through the wire form
	raw := `{"text": "caption", "fileData": {"mimeType": "image/png", "fileUri": "files/img"}}`
	var part ContentPart
	require.NoError(t, sonic.Unmarshal([]byte(raw), &part))
	require.NotNil(t, part.Text)
	require.NotNil(t, part.FileData)
	assert.Nil(t, part.InlineData)
	assert.Equal(t, "caption", *part.Text)
	assert.Equal(t, "files/img", part.FileData.FileURI)
}
