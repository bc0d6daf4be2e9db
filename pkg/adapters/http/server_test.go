package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	easelhttp "github.com/aretw0/easel/pkg/adapters/http"
	"github.com/aretw0/easel/pkg/domain"
)

// fakeProvider serves fixed changes, optionally failing after them.
type fakeProvider struct {
	changes []domain.Change
	err     error
	prompts []domain.Prompt
}

func (f *fakeProvider) Generate(_ context.Context, p domain.Prompt) ([]domain.Change, error) {
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return nil, f.err
	}
	return f.changes, nil
}

func (f *fakeProvider) Stream(_ context.Context, p domain.Prompt) iter.Seq2[domain.Change, error] {
	f.prompts = append(f.prompts, p)
	return func(yield func(domain.Change, error) bool) {
		for _, c := range f.changes {
			if !yield(c, nil) {
				return
			}
		}
		if f.err != nil {
			yield(domain.Change{}, f.err)
		}
	}
}

func changes() []domain.Change {
	return []domain.Change{
		domain.CreateEntity("box", domain.EntityPatch{ID: "0", Type: "geo", X: domain.Ptr(1.0), Y: domain.Ptr(2.0)}),
		domain.DeleteEntity("gone", "1"),
	}
}

func promptBody(t *testing.T) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(domain.Prompt{Message: domain.TextMessage("draw")})
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func TestServer_Generate(t *testing.T) {
	provider := &fakeProvider{changes: changes()}
	handler := easelhttp.NewHandler(provider)

	req := httptest.NewRequest(http.MethodPost, "/generate", promptBody(t))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp easelhttp.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Changes, 2)
	assert.Equal(t, "0", resp.Changes[0].Entity.ID)
	assert.Equal(t, "1", resp.Changes[1].EntityID)

	require.Len(t, provider.prompts, 1)
	assert.Equal(t, "draw", domain.Text(provider.prompts[0].Message))
}

func TestServer_GenerateErrors(t *testing.T) {
	handler := easelhttp.NewHandler(&fakeProvider{err: errors.New("model down")})

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader("{"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/generate", promptBody(t))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "model down")
}

func TestServer_Stream(t *testing.T) {
	handler := easelhttp.NewHandler(&fakeProvider{changes: changes()})

	req := httptest.NewRequest(http.MethodPost, "/stream", promptBody(t))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	var units []easelhttp.Unit
	require.NoError(t, easelhttp.ReadUnits(w.Body, func(u easelhttp.Unit) bool {
		units = append(units, u)
		return true
	}))
	require.Len(t, units, 3)
	assert.Empty(t, units[0].Event)
	assert.Contains(t, units[0].Data, `"type":"createEntity"`)
	assert.Equal(t, easelhttp.EventDone, units[2].Event)
}

func TestServer_StreamError(t *testing.T) {
	handler := easelhttp.NewHandler(&fakeProvider{changes: changes()[:1], err: errors.New("cut off")})

	req := httptest.NewRequest(http.MethodPost, "/stream", promptBody(t))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "event: error\ndata: {\"error\":\"cut off\"}\n\n")
	assert.NotContains(t, body, "event: done")
}

func TestServer_HealthInfoMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("easel_runs_total 1\n"))
	})
	handler := easelhttp.NewHandler(&fakeProvider{}, easelhttp.WithMetrics(metrics))

	for path, want := range map[string]string{
		"/health":  `"status":"ok"`,
		"/info":    `"app":"easel-http"`,
		"/metrics": "easel_runs_total",
	} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), want, path)
	}

	w := httptest.NewRecorder()
	easelhttp.NewHandler(&fakeProvider{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CORS(t *testing.T) {
	handler := easelhttp.NewHandler(&fakeProvider{})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/generate", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
