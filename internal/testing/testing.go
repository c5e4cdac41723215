// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/services"
)

// MockGenerator is a test double for [services.Generator].
//
// Zero-value fields produce deterministic content; set Fail to return the failure sentinels instead.
type MockGenerator struct {
	Fail    bool
	Message string

	mu    sync.Mutex
	calls []string
}

func (m *MockGenerator) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns the actions invoked so far, in order.
func (m *MockGenerator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockGenerator) message() string {
	if m.Message != "" {
		return m.Message
	}
	return services.MessageGeneric
}

func (m *MockGenerator) GenerateInspiration(ctx context.Context, category models.Category, language models.Language) models.Inspiration {
	m.record(services.ActionGenerateInspiration)
	if m.Fail {
		return models.Inspiration{InspirationalText: m.message()}
	}
	return models.Inspiration{
		InspirationalText: "Rejoice in " + string(category) + " (" + string(language) + ")",
		BibleVerse:        "Psalm 100:1",
	}
}

func (m *MockGenerator) GenerateHymn(ctx context.Context, topic string, language models.Language) models.GeneratedHymn {
	m.record(services.ActionGenerateHymn)
	if m.Fail {
		return models.GeneratedHymn{Title: models.ErrorTitle, Lyrics: m.message()}
	}
	return models.GeneratedHymn{Title: "Hymn of " + topic, Lyrics: "Verse 1\nSing of " + topic, SessionID: "session-" + topic}
}

func (m *MockGenerator) SearchAndGenerateHymn(ctx context.Context, searchTerm string, language models.Language) models.GeneratedHymn {
	return m.GenerateHymn(ctx, searchTerm, language)
}

func (m *MockGenerator) Translate(ctx context.Context, text string, target, source models.Language) string {
	out, err := m.TryTranslate(ctx, text, target, source)
	if err != nil {
		return text
	}
	return out
}

func (m *MockGenerator) TryTranslate(ctx context.Context, text string, target, source models.Language) (string, error) {
	m.record(services.ActionTranslate)
	if m.Fail {
		return "", errors.New(m.message())
	}
	if text == "" {
		return "", nil
	}
	return "[" + string(target) + "] " + text, nil
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

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
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
