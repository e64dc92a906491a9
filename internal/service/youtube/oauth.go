package youtube

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// OAuthCredentials holds an installed-app OAuth config and the token cached
// on disk, if any.
type OAuthCredentials struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	logger    *zap.Logger
}

// LoadOAuthCredentials reads credentialsFile (the client secret downloaded
// from the Cloud console) and tokenFile. A missing token is not an error;
// IsAuthorized reports false until Authorize succeeds.
func LoadOAuthCredentials(credentialsFile, tokenFile string, logger *zap.Logger) (*OAuthCredentials, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	credBytes, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(credBytes, youtube.YoutubeReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	creds := &OAuthCredentials{
		config:    config,
		tokenFile: tokenFile,
		logger:    logger,
	}

	token, err := loadToken(tokenFile)
	if err != nil {
		logger.Warn("No existing token found, need to authorize",
			zap.String("file", tokenFile))
		return creds, nil
	}
	creds.token = token
	return creds, nil
}

func (c *OAuthCredentials) IsAuthorized() bool {
	return c != nil && c.token != nil
}

// Authorize runs the copy-paste consent flow: it prints the consent URL to
// out, reads the authorization code from in and stores the token.
func (c *OAuthCredentials) Authorize(ctx context.Context, in io.Reader, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("credentials not loaded")
	}

	authURL := c.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	c.logger.Info("Authorization required")
	fmt.Fprintln(out, "=== YouTube API Authorization ===")
	fmt.Fprintln(out, "Go to the following link in your browser:")
	fmt.Fprintln(out, authURL)
	fmt.Fprintln(out, "After authorization, enter the code here:")

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("unable to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("empty authorization code")
	}

	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("unable to retrieve token: %w", err)
	}

	if err := saveToken(c.tokenFile, token); err != nil {
		return fmt.Errorf("unable to save token: %w", err)
	}
	c.token = token

	c.logger.Info("YouTube OAuth authorization complete",
		zap.String("token_file", c.tokenFile))
	fmt.Fprintln(out, "Authorization successful, token saved.")
	return nil
}

// TokenSource refreshes the stored token as it expires and writes every
// refreshed token back to the token file.
func (c *OAuthCredentials) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if !c.IsAuthorized() {
		return nil, fmt.Errorf("YouTube OAuth not authorized, run `ytdata auth` first")
	}
	src := &savingTokenSource{
		base:  c.config.TokenSource(ctx, c.token),
		creds: c,
		last:  c.token,
	}
	return oauth2.ReuseTokenSource(c.token, src), nil
}

// ClientOption returns an HTTP client option backed by TokenSource.
func (c *OAuthCredentials) ClientOption(ctx context.Context) (option.ClientOption, error) {
	src, err := c.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return option.WithHTTPClient(oauth2.NewClient(ctx, src)), nil
}

type savingTokenSource struct {
	base  oauth2.TokenSource
	creds *OAuthCredentials

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != nil && s.last.AccessToken == token.AccessToken {
		return token, nil
	}
	s.last = token
	s.creds.token = token
	if err := saveToken(s.creds.tokenFile, token); err != nil {
		// The refreshed token still works for this run.
		s.creds.logger.Warn("Failed to save refreshed OAuth token",
			zap.String("file", s.creds.tokenFile),
			zap.Error(err))
		return token, nil
	}
	s.creds.logger.Debug("Saved refreshed OAuth token",
		zap.String("file", s.creds.tokenFile),
		zap.Time("expiry", token.Expiry))
	return token, nil
}

// NewOAuthService builds a YouTubeService authenticated with creds.
func NewOAuthService(ctx context.Context, creds *OAuthCredentials, logger *zap.Logger, opts Options) (*YouTubeService, error) {
	clientOpt, err := creds.ClientOption(ctx)
	if err != nil {
		return nil, err
	}
	return NewYouTubeService(ctx, logger, opts, clientOpt)
}

func loadToken(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

func saveToken(file string, token *oauth2.Token) error {
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
