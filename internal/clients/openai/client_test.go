package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completedResponse = `{
	"id": "resp_2",
	"object": "response",
	"status": "completed",
	"output": [
		{"type": "reasoning", "id": "rs_1", "summary": []},
		{"type": "message", "id": "msg_1", "role": "assistant", "status": "completed", "content": [
			{"type": "output_text", "text": "Hello there", "annotations": []},
			{"type": "refusal", "refusal": "Not that though"}
		]}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient("test-key", "", option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))
}

func envelope(previous string) models.RequestEnvelope {
	return models.RequestEnvelope{
		UserID:        42,
		Text:          "I need 3 people Friday",
		Mode:          models.ModeHiring,
		Locale:        models.LocaleEN,
		PreviousToken: previous,
	}
}

func Test_Respond_SendsContinuationAndParsesBlocks(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/responses"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completedResponse))
	})

	result, err := client.Respond(context.Background(), envelope("resp_1"))
	require.NoError(t, err)

	assert.Equal(t, "resp_2", result.Token)
	assert.Equal(t, models.StructuredBlocks{
		{Kind: models.BlockText, Text: "Hello there"},
		{Kind: models.BlockRefusal, Text: "Not that though"},
	}, result.Reply)

	assert.Equal(t, DefaultModel, body["model"])
	assert.Equal(t, "I need 3 people Friday", body["input"])
	assert.Equal(t, "resp_1", body["previous_response_id"])
	assert.Equal(t, map[string]any{"telegram_user_id": "42"}, body["metadata"])
	assert.Contains(t, body["instructions"], "English")
	assert.NotContains(t, body, "background")
}

func Test_Respond_WithoutPreviousToken(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completedResponse))
	})

	_, err := client.Respond(context.Background(), envelope(""))
	require.NoError(t, err)

	assert.NotContains(t, body, "previous_response_id")
}

func Test_Respond_ToolCallIsIncomplete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "resp_2", "object": "response", "status": "completed", "output": [
			{"type": "function_call", "id": "fc_1", "call_id": "call_1", "name": "lookup", "arguments": "{}"}
		]}`))
	})

	_, err := client.Respond(context.Background(), envelope(""))

	assert.ErrorIs(t, err, models.ErrResponderIncomplete)
	assert.ErrorIs(t, err, models.ErrResponderFailure)
}

func Test_Respond_FailedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "resp_2", "object": "response", "status": "failed",
			"error": {"code": "server_error", "message": "boom"}, "output": []}`))
	})

	_, err := client.Respond(context.Background(), envelope(""))

	assert.ErrorIs(t, err, models.ErrResponderFailure)
	assert.NotErrorIs(t, err, models.ErrResponderIncomplete)
}

func Test_Respond_HttpError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "internal", "type": "server_error"}}`))
	})

	_, err := client.Respond(context.Background(), envelope(""))

	assert.Error(t, err)
}

func Test_Respond_BackgroundPollsUntilDone(t *testing.T) {
	var polls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"id": "resp_2", "object": "response", "status": "queued", "output": []}`))
			return
		}

		assert.True(t, strings.HasSuffix(r.URL.Path, "/responses/resp_2"))
		if polls.Add(1) < 2 {
			_, _ = w.Write([]byte(`{"id": "resp_2", "object": "response", "status": "in_progress", "output": []}`))
			return
		}
		_, _ = w.Write([]byte(completedResponse))
	})
	client.SetBackground(time.Millisecond, 5)

	result, err := client.Respond(context.Background(), envelope(""))
	require.NoError(t, err)

	assert.Equal(t, int32(2), polls.Load())
	assert.Equal(t, "resp_2", result.Token)
}

func Test_Respond_BackgroundGivesUpAfterMaxPolls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "resp_2", "object": "response", "status": "in_progress", "output": []}`))
	})
	client.SetBackground(time.Millisecond, 2)

	_, err := client.Respond(context.Background(), envelope(""))

	assert.Error(t, err)
}
