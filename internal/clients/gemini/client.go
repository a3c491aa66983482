package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/maxaizer/tg-relay-bot/internal/clients"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/maxaizer/tg-relay-bot/internal/domain/prompts"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

type Model string

const (
	//Model15Flash is fastest multimodal model with great performance for diverse, repetitive tasks
	Model15Flash Model = "gemini-1.5-flash"
	//Model15Flash8b is the smallest model for lower intelligence use cases
	Model15Flash8b Model = "gemini-1.5-flash-8b"
	//Model15Pro is next-generation model with a breakthrough 2 million context window
	Model15Pro Model = "gemini-1.5-pro"
)

const (
	sessionTTL             = 24 * time.Hour
	sessionCleanupInterval = time.Hour
)

type generator interface {
	send(ctx context.Context, instructions string, history []*genai.Content, text string) ([]*genai.Content, *genai.GenerateContentResponse, error)
}

// Client keeps Gemini chat histories locally. Every answered turn gets a new
// uuid handle and the previous one is dropped.
type Client struct {
	clients.RateLimits
	client       *genai.Client
	generator    generator
	systemPrompt string
	sessions     *gocache.Cache
}

func NewClient(ctx context.Context, apiKey string, model Model) (*Client, error) {

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	service := newClient(chatGenerator{client: client, model: model})
	service.client = client
	return service, nil
}

func newClient(generator generator) *Client {
	return &Client{
		generator: generator,
		sessions:  gocache.New(sessionTTL, sessionCleanupInterval),
	}
}

func (c *Client) SetSystemPrompt(prompt string) {
	c.systemPrompt = prompt
}

func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) Respond(ctx context.Context, request models.RequestEnvelope) (models.ResponderResult, error) {

	var history []*genai.Content
	if request.HasPreviousToken() {
		if cached, ok := c.sessions.Get(request.PreviousToken); ok {
			history = cached.([]*genai.Content)
		} else {
			log.Warnf("gemini session %s of user %d expired, starting a new one", request.PreviousToken, request.UserID)
		}
	}

	instructions := prompts.Instructions(c.systemPrompt, request.Mode, request.Locale)

	var updated []*genai.Content
	var resp *genai.GenerateContentResponse
	var err error

	_, _, _ = lo.AttemptWhileWithDelay(3, 2*time.Second, func(i int, _ time.Duration) (error, bool) {
		if i > 0 {
			log.Warn("gemini api returned 500 error, retrying...")
		}
		updated, resp, err = c.waitAndSend(ctx, instructions, history, request.Text)
		return err, isInternalError(err)
	})

	if err != nil {
		return models.ResponderResult{}, errors.Wrap(err, "gemini request failed")
	}

	reply, err := toReply(resp)
	if err != nil {
		return models.ResponderResult{}, err
	}

	handle := uuid.NewString()
	c.sessions.SetDefault(handle, updated)
	if request.HasPreviousToken() {
		c.sessions.Delete(request.PreviousToken)
	}

	return models.ResponderResult{Reply: reply, Token: handle}, nil
}

func (c *Client) waitAndSend(ctx context.Context, instructions string, history []*genai.Content,
	text string) ([]*genai.Content, *genai.GenerateContentResponse, error) {

	if err := c.Wait(ctx); err != nil {
		return nil, nil, err
	}
	return c.generator.send(ctx, instructions, history, text)
}

func toReply(resp *genai.GenerateContentResponse) (models.Reply, error) {

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: gemini returned no candidates", models.ErrResponderFailure)
	}

	var blocks models.StructuredBlocks
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			blocks = append(blocks, models.Block{Kind: models.BlockText, Text: string(p)})
		case genai.FunctionCall, *genai.FunctionCall:
			return nil, fmt.Errorf("%w: gemini asks for a function call", models.ErrResponderIncomplete)
		}
	}
	return blocks, nil
}

func isInternalError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "Error 500")
}

type chatGenerator struct {
	client *genai.Client
	model  Model
}

func (g chatGenerator) send(ctx context.Context, instructions string, history []*genai.Content,
	text string) ([]*genai.Content, *genai.GenerateContentResponse, error) {

	model := g.client.GenerativeModel(string(g.model))
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(instructions)}}

	session := model.StartChat()
	session.History = append([]*genai.Content(nil), history...)

	resp, err := session.SendMessage(ctx, genai.Text(text))
	if err != nil {
		return nil, nil, err
	}
	return session.History, resp, nil
}
