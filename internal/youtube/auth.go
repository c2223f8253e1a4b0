package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

const missingSecretsHint = `a client secrets file is required to upload.

Create an OAuth 2.0 client of type "Desktop app" in the Google Cloud console
(https://console.cloud.google.com/apis/credentials), download its JSON, and
point the secrets_file config key or the --secrets flag at it.`

// AuthOptions controls how the authenticated client is built.
type AuthOptions struct {
	// SecretsPath is the OAuth client secrets JSON file.
	SecretsPath string
	// TokenPath is where the OAuth token is cached between runs.
	TokenPath string
	// NoStoredAuth ignores any cached token and forces a fresh consent
	// flow.
	NoStoredAuth bool
	// Prompt writes the consent URL and instructions for the user.
	Prompt io.Writer
	// CodeInput supplies the verification code; defaults to stdin.
	CodeInput io.Reader
}

// NewClient builds an HTTP client authorized for the full YouTube scope,
// which covers both uploading videos and reading back their processing
// status. A cached token is reused when present and permitted; otherwise the
// installed-app consent flow runs and the resulting token is cached.
func NewClient(ctx context.Context, opts AuthOptions) (*http.Client, error) {
	secrets, err := os.ReadFile(opts.SecretsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("client secrets file %q not found: %s", opts.SecretsPath, missingSecretsHint)
		}
		return nil, fmt.Errorf("read client secrets: %w", err)
	}

	config, err := google.ConfigFromJSON(secrets, youtube.YoutubeScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}

	var token *oauth2.Token
	if !opts.NoStoredAuth {
		token, _ = tokenFromFile(opts.TokenPath)
	}
	if token == nil {
		token, err = tokenFromFlow(ctx, config, opts)
		if err != nil {
			return nil, err
		}
		if err := saveToken(opts.TokenPath, token); err != nil {
			return nil, err
		}
	}

	return config.Client(ctx, token), nil
}

// tokenFromFlow runs the installed-app consent flow: print the auth URL,
// read the verification code, exchange it for a token.
func tokenFromFlow(ctx context.Context, config *oauth2.Config, opts AuthOptions) (*oauth2.Token, error) {
	prompt := opts.Prompt
	if prompt == nil {
		prompt = os.Stderr
	}
	input := opts.CodeInput
	if input == nil {
		input = os.Stdin
	}

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(prompt, "Open the following link in your browser, authorize the application, then paste the code here:\n%v\n> ", authURL)

	var code string
	if _, err := fmt.Fscan(input, &code); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}
	token, err := config.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}

// tokenFromFile loads a cached token.
func tokenFromFile(path string) (*oauth2.Token, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(file).Decode(token); err != nil {
		return nil, fmt.Errorf("decode cached token: %w", err)
	}
	return token, nil
}

// saveToken caches the token for later runs. The file is user-readable only
// since it grants account access.
func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create token directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("cache oauth token: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(token); err != nil {
		return fmt.Errorf("encode oauth token: %w", err)
	}
	return nil
}
