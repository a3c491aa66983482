package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) send(ctx context.Context, instructions string, history []*genai.Content,
	text string) ([]*genai.Content, *genai.GenerateContentResponse, error) {

	args := m.Called(ctx, instructions, history, text)
	updated, _ := args.Get(0).([]*genai.Content)
	resp, _ := args.Get(1).(*genai.GenerateContentResponse)
	return updated, resp, args.Error(2)
}

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: &genai.Content{Role: "model", Parts: parts}},
	}}
}

func turn(text string) []*genai.Content {
	return []*genai.Content{
		{Role: "user", Parts: []genai.Part{genai.Text(text)}},
		{Role: "model", Parts: []genai.Part{genai.Text("re: " + text)}},
	}
}

func envelope(text, previous string) models.RequestEnvelope {
	return models.RequestEnvelope{UserID: 1, Text: text, Mode: models.ModeGeneral, Locale: models.LocaleNL, PreviousToken: previous}
}

func Test_Respond_IssuesNewHandleAndDropsOld(t *testing.T) {
	generator := &mockGenerator{}
	client := newClient(generator)

	var emptyHistory []*genai.Content
	generator.On("send", mock.Anything, mock.Anything, emptyHistory, "first").
		Return(turn("first"), textResponse(genai.Text("re: first")), nil).Once()

	first, err := client.Respond(context.Background(), envelope("first", ""))
	require.NoError(t, err)
	assert.Equal(t, models.StructuredBlocks{{Kind: models.BlockText, Text: "re: first"}}, first.Reply)
	require.NotEmpty(t, first.Token)

	generator.On("send", mock.Anything, mock.Anything, turn("first"), "second").
		Return(append(turn("first"), turn("second")...), textResponse(genai.Text("re: second")), nil).Once()

	second, err := client.Respond(context.Background(), envelope("second", first.Token))
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	_, found := client.sessions.Get(first.Token)
	assert.False(t, found)
	_, found = client.sessions.Get(second.Token)
	assert.True(t, found)
	generator.AssertExpectations(t)
}

func Test_Respond_UnknownHandleStartsNewSession(t *testing.T) {
	generator := &mockGenerator{}
	client := newClient(generator)

	var emptyHistory []*genai.Content
	generator.On("send", mock.Anything, mock.Anything, emptyHistory, "hi").
		Return(turn("hi"), textResponse(genai.Text("re: hi")), nil).Once()

	result, err := client.Respond(context.Background(), envelope("hi", "expired-handle"))

	require.NoError(t, err)
	assert.NotEqual(t, "expired-handle", result.Token)
}

func Test_Respond_FunctionCallIsIncomplete(t *testing.T) {
	generator := &mockGenerator{}
	client := newClient(generator)

	generator.On("send", mock.Anything, mock.Anything, mock.Anything, "hi").
		Return(turn("hi"), textResponse(genai.FunctionCall{Name: "lookup"}), nil).Once()

	_, err := client.Respond(context.Background(), envelope("hi", ""))

	assert.ErrorIs(t, err, models.ErrResponderIncomplete)
	assert.Equal(t, 0, client.sessions.ItemCount())
}

func Test_Respond_FailureKeepsSession(t *testing.T) {
	generator := &mockGenerator{}
	client := newClient(generator)
	client.sessions.SetDefault("handle", turn("first"))

	generator.On("send", mock.Anything, mock.Anything, turn("first"), "second").
		Return(nil, nil, errors.New("Error 400: bad request")).Once()

	_, err := client.Respond(context.Background(), envelope("second", "handle"))

	assert.Error(t, err)
	_, found := client.sessions.Get("handle")
	assert.True(t, found)
	generator.AssertNumberOfCalls(t, "send", 1)
}

func Test_Respond_PassesInstructions(t *testing.T) {
	generator := &mockGenerator{}
	client := newClient(generator)
	client.SetSystemPrompt("Base prompt.")

	generator.On("send", mock.Anything, mock.MatchedBy(func(instructions string) bool {
		return len(instructions) > len("Base prompt.") && instructions[:len("Base prompt.")] == "Base prompt."
	}), mock.Anything, "hi").Return(turn("hi"), textResponse(genai.Text("ok")), nil).Once()

	_, err := client.Respond(context.Background(), envelope("hi", ""))

	require.NoError(t, err)
	generator.AssertExpectations(t)
}

func Test_ToReply_NoCandidates(t *testing.T) {
	_, err := toReply(&genai.GenerateContentResponse{})

	assert.ErrorIs(t, err, models.ErrResponderFailure)
}
