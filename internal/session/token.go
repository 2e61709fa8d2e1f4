package session

import (
	"os"
	"strings"
)

// TokenSource yields the current bearer token. An empty string means no
// token is available; callers treat that as "stay idle", never as an error.
type TokenSource interface {
	Token() string
}

// FileTokenSource reads the bearer token from a file on every call, so a
// login performed by another process is picked up without a restart.
type FileTokenSource struct {
	Path string
}

// NewFileTokenSource returns a token source backed by the profile's token file.
func NewFileTokenSource(profile string) *FileTokenSource {
	return &FileTokenSource{Path: TokenPath(profile)}
}

// Token returns the stored bearer token, or "" when absent or unreadable.
func (s *FileTokenSource) Token() string {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SaveToken persists the bearer token for a profile with 0600 permissions.
func SaveToken(profile, token string) error {
	if err := EnsureDir(profile); err != nil {
		return err
	}
	f, err := createPrivate(TokenPath(profile))
	if err != nil {
		return err
	}
	_, writeErr := f.WriteString(token + "\n")
	if closeErr := f.Close(); closeErr != nil && writeErr == nil {
		return closeErr
	}
	return writeErr
}

// ClearToken removes the stored token. A missing file is a no-op.
func ClearToken(profile string) error {
	err := os.Remove(TokenPath(profile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// StaticTokenSource returns a fixed token. Used in tests and by flows that
// already hold a token in memory.
type StaticTokenSource string

// Token returns the fixed token.
func (s StaticTokenSource) Token() string { return string(s) }
