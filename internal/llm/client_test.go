package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func newCompletionServer(t *testing.T, status int, content string, captured *capturedRequest, auth *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"rate_limit"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
		})
	}))
}

func TestCompleteSendsSystemHistoryAndPrompt(t *testing.T) {
	var captured capturedRequest
	var auth string
	srv := newCompletionServer(t, http.StatusOK, "  Try isolating x first.  ", &captured, &auth)
	defer srv.Close()

	c := NewOpenAIClient(Config{BaseURL: srv.URL + "/", APIKey: "k-123", Model: "test-model", Timeout: 5 * time.Second})

	reply, err := c.Complete(context.Background(), Request{
		System: "You are a math tutor.",
		History: []Turn{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
		},
		Prompt: "2x + 5 = 15",
	})

	require.NoError(t, err)
	assert.Equal(t, "Try isolating x first.", reply)
	assert.Equal(t, "Bearer k-123", auth)
	assert.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "assistant", captured.Messages[2].Role)
	assert.Equal(t, "2x + 5 = 15", captured.Messages[3].Content)
	assert.Nil(t, captured.ResponseFormat)
}

func TestCompleteJSONMode(t *testing.T) {
	var captured capturedRequest
	srv := newCompletionServer(t, http.StatusOK, `{"questions":[]}`, &captured, nil)
	defer srv.Close()

	c := NewOpenAIClient(Config{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: 5 * time.Second})
	_, err := c.Complete(context.Background(), Request{Prompt: "make a quiz", JSON: true})

	require.NoError(t, err)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
	require.Len(t, captured.Messages, 1)
}

func TestCompleteUpstreamError(t *testing.T) {
	srv := newCompletionServer(t, http.StatusTooManyRequests, "", nil, nil)
	defer srv.Close()

	c := NewOpenAIClient(Config{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: 5 * time.Second})
	_, err := c.Complete(context.Background(), Request{Prompt: "hi"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}

func TestCompleteEmptyReply(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK, "   ", nil, nil)
	defer srv.Close()

	c := NewOpenAIClient(Config{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: 5 * time.Second})
	_, err := c.Complete(context.Background(), Request{Prompt: "hi"})

	assert.ErrorIs(t, err, ErrEmptyReply)
}
