package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferAppendFlushOrder(t *testing.T) {
	buf := NewAudioBuffer(1024, 16000)

	require.NoError(t, buf.Append([]byte{1, 2}))
	require.NoError(t, buf.Append([]byte{3}))
	require.NoError(t, buf.Append([]byte{4, 5, 6}))

	assert.Equal(t, 6, buf.Size())
	assert.Equal(t, 3, buf.ChunkCount())

	batch := buf.Flush()
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, batch.Data)
	assert.Equal(t, 16000, batch.SampleRate)
	assert.Equal(t, 3, batch.ChunkCount)
	assert.False(t, batch.IsEmpty())

	assert.True(t, buf.IsEmpty())
	assert.Equal(t, 0, buf.Size())
}

func TestBufferFull(t *testing.T) {
	buf := NewAudioBuffer(4, 16000)

	require.NoError(t, buf.Append([]byte{1, 2, 3}))
	err := buf.Append([]byte{4, 5})
	assert.ErrorIs(t, err, ErrBufferFull)

	// The rejected chunk is not partially stored
	assert.Equal(t, 3, buf.Size())
	assert.Equal(t, 1, buf.ChunkCount())
}

func TestBufferFlushEmpty(t *testing.T) {
	buf := NewAudioBuffer(16, 24000)

	batch := buf.Flush()
	assert.True(t, batch.IsEmpty())
	assert.Nil(t, batch.Data)
	assert.Equal(t, 24000, batch.SampleRate)
	assert.Equal(t, 0, batch.ChunkCount)
}

func TestBufferClear(t *testing.T) {
	buf := NewAudioBuffer(16, 16000)
	require.NoError(t, buf.Append([]byte{1}))
	buf.Clear()
	assert.True(t, buf.IsEmpty())
	assert.True(t, buf.Flush().IsEmpty())
}
