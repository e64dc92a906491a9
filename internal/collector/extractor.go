package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/youtube-data-go/internal/util"
	"github.com/kapu/youtube-data-go/pkg/errors"
)

// HandleResolver maps a channel handle (without "@") to a channel id.
type HandleResolver interface {
	ResolveHandle(ctx context.Context, handle string) (string, error)
}

// ExtractVideoID returns the text between "v=" and the next "&".
func ExtractVideoID(rawURL string) (string, error) {
	return extractQueryValue(rawURL, "v=")
}

// ExtractPlaylistID returns the text between "list=" and the next "&".
func ExtractPlaylistID(rawURL string) (string, error) {
	return extractQueryValue(rawURL, "list=")
}

func extractQueryValue(rawURL, marker string) (string, error) {
	_, rest, found := strings.Cut(rawURL, marker)
	if !found {
		return "", errors.NewInvalidInputError(fmt.Sprintf("url has no %q parameter", marker), "url", rawURL)
	}

	id := util.CutAny(rest, "&")
	if id == "" {
		return "", errors.NewInvalidInputError(fmt.Sprintf("url has an empty %q parameter", marker), "url", rawURL)
	}
	return id, nil
}

// ExtractChannelID accepts /channel/<id> and /@<handle> URLs. Handles are
// resolved through resolver.
func ExtractChannelID(ctx context.Context, rawURL string, resolver HandleResolver) (string, error) {
	if _, rest, found := strings.Cut(rawURL, "/channel/"); found {
		id := util.CutAny(rest, "/?#")
		if id == "" {
			return "", errors.NewInvalidInputError("url has an empty channel id", "url", rawURL)
		}
		return id, nil
	}

	if _, rest, found := strings.Cut(rawURL, "/@"); found {
		handle := util.CutAny(rest, "/?#")
		if handle == "" {
			return "", errors.NewInvalidInputError("url has an empty channel handle", "url", rawURL)
		}

		id, err := resolver.ResolveHandle(ctx, handle)
		if err != nil {
			return "", err
		}
		if id == "" {
			return "", errors.NewNotFoundError("channel handle", "@"+handle)
		}
		return id, nil
	}

	return "", errors.NewInvalidInputError("url must be a /channel/<id> or /@<handle> link", "url", rawURL)
}
