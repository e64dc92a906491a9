package collector

import (
	"context"
	"fmt"
	"testing"

	"github.com/kapu/youtube-data-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	ids   map[string]string
	err   error
	calls []string
}

func (s *stubResolver) ResolveHandle(_ context.Context, handle string) (string, error) {
	s.calls = append(s.calls, handle)
	if s.err != nil {
		return "", s.err
	}
	return s.ids[handle], nil
}

func TestExtractVideoID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=abc123":                   "abc123",
		"https://www.youtube.com/watch?v=abc123&t=42s":             "abc123",
		"https://www.youtube.com/watch?v=abc123&list=PL1&index=2":  "abc123",
		"https://m.youtube.com/watch?feature=share&v=dQw4w9WgXcQ":  "dQw4w9WgXcQ",
		"v=only":                                                   "only",
	}
	for url, want := range cases {
		t.Run(url, func(t *testing.T) {
			got, err := ExtractVideoID(url)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestExtractVideoIDRejectsMissingMarker(t *testing.T) {
	for _, url := range []string{
		"https://youtu.be/abc123",
		"https://www.youtube.com/playlist?list=PL123",
		"",
		"https://www.youtube.com/watch?v=&t=1",
	} {
		_, err := ExtractVideoID(url)
		require.Error(t, err, url)
		assert.True(t, errors.IsInvalidInput(err), url)
	}
}

func TestExtractPlaylistID(t *testing.T) {
	got, err := ExtractPlaylistID("https://www.youtube.com/playlist?list=PLabc&si=xyz")
	require.NoError(t, err)
	assert.Equal(t, "PLabc", got)

	got, err = ExtractPlaylistID("https://www.youtube.com/watch?v=abc&list=PLdef")
	require.NoError(t, err)
	assert.Equal(t, "PLdef", got)
}

// A playlist URL without "list=" fails with InvalidInputError, same as the
// other extractors.
func TestExtractPlaylistIDWithoutMarker(t *testing.T) {
	_, err := ExtractPlaylistID("https://www.youtube.com/watch?v=abc123")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))

	var invalid *errors.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "url", invalid.Field)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", invalid.Value)
}

func TestExtractChannelIDVerbatim(t *testing.T) {
	resolver := &stubResolver{}
	for url, want := range map[string]string{
		"https://www.youtube.com/channel/UC1DCedRgGHBdm81E1llLhOQ":          "UC1DCedRgGHBdm81E1llLhOQ",
		"https://www.youtube.com/channel/UC1DCedRgGHBdm81E1llLhOQ/videos":   "UC1DCedRgGHBdm81E1llLhOQ",
		"https://www.youtube.com/channel/UC1DCedRgGHBdm81E1llLhOQ?si=share": "UC1DCedRgGHBdm81E1llLhOQ",
	} {
		got, err := ExtractChannelID(context.Background(), url, resolver)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Empty(t, resolver.calls)
}

func TestExtractChannelIDResolvesHandle(t *testing.T) {
	resolver := &stubResolver{ids: map[string]string{"usadapekora": "UC1DCedRgGHBdm81E1llLhOQ"}}

	got, err := ExtractChannelID(context.Background(), "https://www.youtube.com/@usadapekora/featured", resolver)
	require.NoError(t, err)
	assert.Equal(t, "UC1DCedRgGHBdm81E1llLhOQ", got)
	assert.Equal(t, []string{"usadapekora"}, resolver.calls)
}

func TestExtractChannelIDUnknownHandle(t *testing.T) {
	resolver := &stubResolver{ids: map[string]string{}}

	_, err := ExtractChannelID(context.Background(), "https://www.youtube.com/@nobody", resolver)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestExtractChannelIDResolverFailure(t *testing.T) {
	resolverErr := errors.NewUpstreamError("channels.list failed", "channels.list", fmt.Errorf("503"))
	resolver := &stubResolver{err: resolverErr}

	_, err := ExtractChannelID(context.Background(), "https://www.youtube.com/@someone", resolver)
	require.ErrorIs(t, err, resolverErr)
}

func TestExtractChannelIDRejectsOtherShapes(t *testing.T) {
	for _, url := range []string{
		"https://www.youtube.com/user/legacyname",
		"https://www.youtube.com/c/custom",
		"https://www.youtube.com/channel/",
		"https://www.youtube.com/@/videos",
		"not a url",
	} {
		_, err := ExtractChannelID(context.Background(), url, &stubResolver{})
		require.Error(t, err, url)
		assert.True(t, errors.IsInvalidInput(err), url)
	}
}
