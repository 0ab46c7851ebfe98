package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nutriscan/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g, err := NewGenerator(context.Background(), Config{
		APIKey:      "test-key",
		Model:       "gemini-2.0-flash",
		Temperature: 0.4,
		BaseURL:     server.URL,
	}, zap.NewNop())
	require.NoError(t, err)
	return g
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestGenerate_Success(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent"), r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Contains(t, string(body), "Is this safe?")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"SAFETY ASSESSMENT: Safe\n\nLooks fine."}]}}]}`))
	})

	text, err := g.Generate(context.Background(), "Is this safe?")

	require.NoError(t, err)
	assert.Equal(t, "SAFETY ASSESSMENT: Safe\n\nLooks fine.", text)
}

func TestGenerate_EmptyResponse(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := g.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
}

func TestGenerate_APIError(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := g.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
}
