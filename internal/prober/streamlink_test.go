package prober

import (
	"testing"
	"time"

	"github.com/NordCoder/Streamwatch/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_LiveWithMetadata(t *testing.T) {
	stdout := []byte(`{
		"plugin": "twitch",
		"metadata": {"author": "somechannel", "category": "Just Chatting", "title": "hi"},
		"streams": {"best": {}, "720p": {}}
	}`)

	res := classify("https://twitch.tv/somechannel", stdout, nil, time.Unix(1000, 0))
	require.True(t, res.IsOk())
	st := res.Value()
	assert.True(t, st.Live)
	assert.Equal(t, "somechannel", st.Name)
	assert.Equal(t, "Just Chatting", st.Category)
	assert.Equal(t, time.Unix(1000, 0), st.CheckedAt)
}

func TestClassify_LiveWithoutAuthorFallsBackToURL(t *testing.T) {
	stdout := []byte(`{"streams": {"best": {}}}`)

	res := classify("https://kick.com/streamer", stdout, nil, time.Now())
	require.True(t, res.IsOk())
	assert.Equal(t, "streamer", res.Value().Name)
}

func TestClassify_OfflineIsSuccessNotError(t *testing.T) {
	stdout := []byte(`{"error": "No playable streams found on this URL: https://twitch.tv/x"}`)

	res := classify("https://twitch.tv/x", stdout, nil, time.Now())
	require.True(t, res.IsOk(), "a known-but-offline target is a successful probe")
	assert.False(t, res.Value().Live)
}

func TestClassify_UnsupportedURLIsNotFound(t *testing.T) {
	stderr := []byte("error: No plugin can handle URL: https://example.com/foo")

	res := classify("https://example.com/foo", nil, stderr, time.Now())
	require.False(t, res.IsOk())
	assert.Equal(t, engine.KindNotFound, res.Err().Kind)
}

func TestClassify_NetworkError(t *testing.T) {
	stdout := []byte(`{"error": "Unable to open URL: https://twitch.tv/x (connection refused)"}`)

	res := classify("https://twitch.tv/x", stdout, nil, time.Now())
	require.False(t, res.IsOk())
	assert.Equal(t, engine.KindNetwork, res.Err().Kind)
}

func TestClassify_TimeoutMessage(t *testing.T) {
	stderr := []byte("error: read timed out")

	res := classify("https://twitch.tv/x", nil, stderr, time.Now())
	require.False(t, res.IsOk())
	assert.Equal(t, engine.KindTimeout, res.Err().Kind)
}

func TestClassify_GarbageOutputIsUnclassified(t *testing.T) {
	res := classify("https://twitch.tv/x", []byte("not json"), nil, time.Now())
	require.False(t, res.IsOk())
	assert.Equal(t, engine.KindUnclassified, res.Err().Kind)
}
