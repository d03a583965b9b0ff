// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/qaren/internal/models"
)

// FakeSearcher is a test double for services.FlightSearcher.
//
// Results and errors are keyed by [models.SearchQuery.Route].
type FakeSearcher struct {
	mu      sync.Mutex
	Results map[string]models.SearchResult
	Errors  map[string]error
	Default models.SearchResult
	calls   []models.SearchQuery
}

func (f *FakeSearcher) Search(ctx context.Context, q models.SearchQuery) (models.SearchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.Errors[q.Route()]; ok {
		return nil, err
	}
	if r, ok := f.Results[q.Route()]; ok {
		return r, nil
	}
	if f.Default != nil {
		return f.Default, nil
	}
	return models.SearchResult(`{"data":[]}`), nil
}

// Calls returns the queries seen so far.
func (f *FakeSearcher) Calls() []models.SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SearchQuery(nil), f.calls...)
}

// IdentityServer is an httptest OAuth2 token endpoint that counts exchanges.
type IdentityServer struct {
	*httptest.Server

	AccessToken string
	ExpiresIn   int
	Status      int // defaults to 200

	calls    atomic.Int32
	mu       sync.Mutex
	lastForm url.Values
}

// NewIdentityServer starts a token endpoint answering with token and expiresIn. Closed on test cleanup.
func NewIdentityServer(t *testing.T, token string, expiresIn int) *IdentityServer {
	t.Helper()
	s := &IdentityServer{AccessToken: token, ExpiresIn: expiresIn}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *IdentityServer) serve(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)
	if err := r.ParseForm(); err == nil {
		s.mu.Lock()
		s.lastForm = r.PostForm
		s.mu.Unlock()
	}

	w.Header().Set("Content-Type", "application/json")
	if s.Status != 0 && s.Status != http.StatusOK {
		w.WriteHeader(s.Status)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
		return
	}

	body := map[string]any{"token_type": "Bearer", "expires_in": s.ExpiresIn}
	if s.AccessToken != "" {
		body["access_token"] = s.AccessToken
	}
	json.NewEncoder(w).Encode(body)
}

// Calls returns how many exchanges were served.
func (s *IdentityServer) Calls() int {
	return int(s.calls.Load())
}

// LastForm returns the form body of the most recent exchange.
func (s *IdentityServer) LastForm() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastForm
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// StaticTokens is a services.TokenSource double returning a fixed token or error.
type StaticTokens struct {
	Value string
	Err   error
	calls atomic.Int32
}

func (s *StaticTokens) Token(context.Context) (string, error) {
	s.calls.Add(1)
	return s.Value, s.Err
}

// Calls returns how many tokens were requested.
func (s *StaticTokens) Calls() int {
	return int(s.calls.Load())
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
