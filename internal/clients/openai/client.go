package openai

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/maxaizer/tg-relay-bot/internal/clients"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/maxaizer/tg-relay-bot/internal/domain/prompts"
	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultModel = "gpt-4o-mini"

	userMetadataKey = "telegram_user_id"
)

const (
	statusCompleted  = "completed"
	statusIncomplete = "incomplete"
	statusQueued     = "queued"
	statusInProgress = "in_progress"
)

// Client answers turns through the Responses API. The id of each response is
// the continuation handle for the next turn.
type Client struct {
	clients.RateLimits
	api          openaisdk.Client
	model        string
	systemPrompt string
	background   bool
	pollInterval time.Duration
	maxPolls     int
}

func NewClient(apiKey string, model string, opts ...option.RequestOption) *Client {
	if model == "" {
		model = DefaultModel
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &Client{
		api:          openaisdk.NewClient(opts...),
		model:        model,
		pollInterval: time.Second,
		maxPolls:     1,
	}
}

func (c *Client) SetSystemPrompt(prompt string) {
	c.systemPrompt = prompt
}

// SetBackground makes the API run responses in the background; the client
// then polls at most maxPolls times, pollInterval apart.
func (c *Client) SetBackground(pollInterval time.Duration, maxPolls int) {
	c.background = true
	c.pollInterval = pollInterval
	c.maxPolls = maxPolls
}

func (c *Client) Respond(ctx context.Context, request models.RequestEnvelope) (models.ResponderResult, error) {

	if err := c.Wait(ctx); err != nil {
		return models.ResponderResult{}, errors.Wrap(err, "rate limit wait interrupted")
	}

	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(c.model),
		Input:        responses.ResponseNewParamsInputUnion{OfString: openaisdk.String(request.Text)},
		Instructions: openaisdk.String(prompts.Instructions(c.systemPrompt, request.Mode, request.Locale)),
		Metadata:     shared.Metadata{userMetadataKey: strconv.FormatInt(request.UserID, 10)},
	}

	if request.HasPreviousToken() {
		params.PreviousResponseID = openaisdk.String(request.PreviousToken)
	}

	if c.background {
		params.Background = openaisdk.Bool(true)
	}

	resp, err := c.api.Responses.New(ctx, params)
	if err != nil {
		return models.ResponderResult{}, errors.Wrap(err, "failed to create response")
	}

	resp, err = c.await(ctx, resp)
	if err != nil {
		return models.ResponderResult{}, err
	}

	reply, err := toReply(resp)
	if err != nil {
		return models.ResponderResult{}, err
	}

	return models.ResponderResult{Reply: reply, Token: resp.ID}, nil
}

func (c *Client) await(ctx context.Context, resp *responses.Response) (*responses.Response, error) {

	for polls := 0; isPending(resp); polls++ {
		if polls >= c.maxPolls {
			return nil, errors.Errorf("response %s is still %s after %d polls", resp.ID, resp.Status, polls)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		next, err := c.api.Responses.Get(ctx, resp.ID, responses.ResponseGetParams{})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to poll response %s", resp.ID)
		}
		resp = next
	}

	return resp, nil
}

func isPending(resp *responses.Response) bool {
	status := string(resp.Status)
	return status == statusQueued || status == statusInProgress
}

func toReply(resp *responses.Response) (models.Reply, error) {

	switch string(resp.Status) {
	case statusCompleted:
	case statusIncomplete:
		return nil, fmt.Errorf("%w: response %s is incomplete", models.ErrResponderIncomplete, resp.ID)
	default:
		return nil, fmt.Errorf("%w: response %s ended as %q: %s",
			models.ErrResponderFailure, resp.ID, resp.Status, resp.Error.Message)
	}

	var blocks models.StructuredBlocks
	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, content := range item.Content {
				switch content.Type {
				case "output_text":
					blocks = append(blocks, models.Block{Kind: models.BlockText, Text: content.Text})
				case "refusal":
					blocks = append(blocks, models.Block{Kind: models.BlockRefusal, Text: content.Refusal})
				}
			}
		case "reasoning":
		default:
			return nil, fmt.Errorf("%w: response %s asks for %s", models.ErrResponderIncomplete, resp.ID, item.Type)
		}
	}

	if len(blocks) == 0 {
		log.Warnf("response %s has no text output", resp.ID)
	}
	return blocks, nil
}
