// ABOUTME: Tests for the HTTP transcriber
// ABOUTME: Verifies headers, happy path, and error surfaces via httptest
package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "audio/wav", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer sk", r.Header.Get("Authorization"))
		assert.Equal(t, "fake-wav-bytes", string(body))
		_, _ = w.Write([]byte(`{"text":"we discussed the renewal"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL, "sk")
	text, err := tr.Transcribe(context.Background(), []byte("fake-wav-bytes"), "audio/wav")
	require.NoError(t, err)
	assert.Equal(t, "we discussed the renewal", text)
}

func TestTranscribeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL, "")
	_, err := tr.Transcribe(context.Background(), []byte("x"), "audio/wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestTranscribeMissingEndpoint(t *testing.T) {
	tr := NewHTTPTranscriber("", "")
	_, err := tr.Transcribe(context.Background(), []byte("x"), "audio/wav")
	assert.Error(t, err)
}

func TestTranscribeEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL, "")
	_, err := tr.Transcribe(context.Background(), []byte("x"), "")
	assert.Error(t, err)
}
