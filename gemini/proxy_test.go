package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/room4-2/openlive/live"
)

func TestNewProxyRequiresKey(t *testing.T) {
	_, err := NewProxy("")
	assert.Error(t, err)

	gp, err := NewProxy("key")
	require.NoError(t, err)
	assert.NotNil(t, gp)
}

func TestSendRequiresConnection(t *testing.T) {
	gp, err := NewProxy("key")
	require.NoError(t, err)

	assert.Error(t, gp.SendAudio([]byte{1, 2}))
	assert.Error(t, gp.SendText("hi"))
	assert.Error(t, gp.SendTurnComplete())
	assert.Error(t, gp.SendToolResponse(nil))
}

func TestCloseIsIdempotent(t *testing.T) {
	gp, err := NewProxy("key")
	require.NoError(t, err)

	require.NoError(t, gp.Close())
	require.NoError(t, gp.Close())
	assert.Error(t, gp.SendAudio([]byte{1}))
}

func TestHandleEventDispatch(t *testing.T) {
	gp, err := NewProxy("key")
	require.NoError(t, err)

	var texts []string
	var audio []string
	var toolNames []string
	var inputTx, outputTx []string
	interrupted, complete := false, false
	var total int

	gp.OnText = func(s string) { texts = append(texts, s) }
	gp.OnAudioRaw = func(b64 string) { audio = append(audio, b64) }
	gp.OnInterrupted = func() { interrupted = true }
	gp.OnComplete = func() { complete = true }
	gp.OnInputTranscription = func(s string) { inputTx = append(inputTx, s) }
	gp.OnOutputTranscription = func(s string) { outputTx = append(outputTx, s) }
	gp.OnToolCall = func(calls []live.FunctionCall) {
		for _, fc := range calls {
			toolNames = append(toolNames, fc.Name)
		}
	}
	gp.OnUsage = func(u *live.UsageMetadata) {
		if u.TotalTokenCount != nil {
			total = *u.TotalTokenCount
		}
	}

	frames := []string{
		`{"serverContent": {"modelTurn": {"parts": [
			{"text": "hello"},
			{"inlineData": {"mimeType": "audio/pcm;rate=24000", "data": "UENN"}}
		]}}}`,
		`{"serverContent": {"inputTranscription": {"text": "user said"}}}`,
		`{"serverContent": {"outputTranscription": {"text": "model said"}}}`,
		`{"toolCall": {"functionCalls": [{"id": "1", "name": "lookup", "args": {"q": "x"}}]}}`,
		`{"serverContent": {"interrupted": true}}`,
		`{"serverContent": {"turnComplete": true}, "usageMetadata": {"totalTokenCount": 99}}`,
	}
	for _, raw := range frames {
		evt := gp.parser.Parse(raw)
		require.NotNil(t, evt, raw)
		gp.handleEvent(evt)
	}

	assert.Equal(t, []string{"hello"}, texts)
	assert.Equal(t, []string{"UENN"}, audio)
	assert.Equal(t, []string{"user said"}, inputTx)
	assert.Equal(t, []string{"model said"}, outputTx)
	assert.Equal(t, []string{"lookup"}, toolNames)
	assert.True(t, interrupted)
	assert.True(t, complete)
	assert.Equal(t, 99, total)
}

func TestMalformedFrameIsSkipped(t *testing.T) {
	gp, err := NewProxy("key")
	require.NoError(t, err)

	// The receive loop skips frames the parser rejects; nil must never be
	// dispatched
	assert.Nil(t, gp.parser.Parse(`{"serverContent": {"modelTurn": {}}}`))
	assert.Nil(t, gp.parser.Parse(`garbage`))
}
