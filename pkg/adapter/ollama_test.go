package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOllamaStub(t *testing.T, handler http.HandlerFunc) *OllamaAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewOllamaAdapter(srv.URL, srv.Client())
	require.NoError(t, err)
	return a
}

func TestOllamaShow(t *testing.T) {
	a := newOllamaStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/show", r.URL.Path)
		var body struct {
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Model != "llama3:8b" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"modelfile":"FROM llama3"}`))
	})

	require.NoError(t, a.Show(context.Background(), "llama3:8b"))

	err := a.Show(context.Background(), "missing:1b")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelNotFound))
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestOllamaList(t *testing.T) {
	a := newOllamaStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"qwen2.5:14b","model":"qwen2.5:14b"},{"name":"llama3:8b","model":"llama3:8b"}]}`))
	})

	models, err := a.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"qwen2.5:14b", "llama3:8b"}, models)
}

func TestOllamaGenerate(t *testing.T) {
	var got map[string]any
	a := newOllamaStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3:8b","response":"  Hello there.  ","done":true,"prompt_eval_count":5,"eval_count":7}` + "\n"))
	})

	res := a.Generate(context.Background(), Request{
		Model:   "llama3:8b",
		Prompt:  "hi",
		Options: Options{Temperature: 0.7, MaxTokens: 2048, TopP: 0.9, RepeatPenalty: 1.1},
	})

	require.True(t, res.OK(), "unexpected failure: %v", res.Err)
	assert.Equal(t, "Hello there.", res.Text)
	require.NotNil(t, res.Usage)
	assert.Equal(t, 12, res.Usage.TotalTokens)

	assert.Equal(t, false, got["stream"])
	opts, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2048, opts["num_predict"])
	assert.EqualValues(t, 1.1, opts["repeat_penalty"])
}

func TestOllamaGenerateEmptyIsSuccess(t *testing.T) {
	a := newOllamaStub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"","done":true,"eval_count":0}` + "\n"))
	})

	res := a.Generate(context.Background(), Request{Model: "qwen2.5:14b", Prompt: "hi", Options: DefaultOptions()})
	require.True(t, res.OK(), "unexpected failure: %v", res.Err)
	assert.Equal(t, "", res.Text)
	assert.Equal(t, "qwen2.5:14b", res.Model)
}

func TestOllamaGenerateFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
		want    Outcome
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"out of memory"}`))
			},
			want: OutcomeBackendError,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("this is not json\n"))
			},
			want: OutcomeMalformed,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout: 50 * time.Millisecond,
			want:    OutcomeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newOllamaStub(t, tt.handler)

			ctx := context.Background()
			if tt.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.timeout)
				defer cancel()
			}

			res := a.Generate(ctx, Request{Model: "llama3:8b", Prompt: "hi", Options: DefaultOptions()})
			assert.False(t, res.OK())
			assert.Equal(t, tt.want, res.Outcome, "err: %v", res.Err)
			if tt.want == OutcomeMalformed {
				assert.ErrorIs(t, res.Err, ErrMalformedResponse)
			}
			assert.Empty(t, res.Text)
		})
	}
}

func TestOllamaUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a, err := NewOllamaAdapter(url, nil)
	require.NoError(t, err)

	res := a.Generate(context.Background(), Request{Model: "llama3:8b", Prompt: "hi", Options: DefaultOptions()})
	assert.Equal(t, OutcomeUnreachable, res.Outcome, "err: %v", res.Err)

	_, err = a.List(context.Background())
	assert.Error(t, err)
}

func TestNewOllamaAdapterDefaults(t *testing.T) {
	a, err := NewOllamaAdapter("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaHost, a.Host())

	a, err = NewOllamaAdapter("localhost:11434", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", a.Host())
	assert.Equal(t, "ollama", a.Name())
}
