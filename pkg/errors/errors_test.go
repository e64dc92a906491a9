package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindHelpersSeeThroughWrapping(t *testing.T) {
	invalid := NewInvalidInputError("missing v= marker", "url", "https://youtu.be/x")
	notFound := NewNotFoundError("video", "abc123")
	upstream := NewUpstreamError("videos.list failed", "videos.list", fmt.Errorf("boom"))

	wrapped := fmt.Errorf("collect: %w", invalid)
	assert.True(t, IsInvalidInput(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.False(t, IsUpstream(wrapped))

	assert.True(t, IsNotFound(fmt.Errorf("layer: %w", notFound)))
	assert.True(t, IsUpstream(fmt.Errorf("layer: %w", upstream)))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeInvalidInput, CodeOf(NewInvalidInputError("bad", "url", "")))
	assert.Equal(t, CodeNotFound, CodeOf(NewNotFoundError("channel", "UC1")))
	assert.Equal(t, CodeUpstream, CodeOf(NewUpstreamError("x", "op", nil)))
	assert.Equal(t, CodeCache, CodeOf(NewCacheError("x", "get", "k", nil)))
	assert.Equal(t, "", CodeOf(fmt.Errorf("plain")))
}

func TestUpstreamErrorCarriesStatus(t *testing.T) {
	cause := fmt.Errorf("quota")
	err := NewUpstreamError("channels.list failed", "channels.list", cause).WithStatus(403, "quotaExceeded")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, 403, err.StatusCode)
	assert.Equal(t, "quotaExceeded", err.Reason)
	assert.Equal(t, "quotaExceeded", err.Context["reason"])
	assert.True(t, err.Retryable())
	assert.Equal(t, "channels.list failed: quota", err.Error())
}

func TestNotFoundMessageNamesResource(t *testing.T) {
	err := NewNotFoundError("channel", "UCxyz")
	assert.Equal(t, "channel not found: UCxyz", err.Error())
	assert.Equal(t, "UCxyz", err.Context["id"])
}
