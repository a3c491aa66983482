package assistants

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/maxaizer/tg-relay-bot/internal/clients"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/maxaizer/tg-relay-bot/internal/domain/prompts"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

const userMetadataKey = "telegram_user_id"

// Client answers turns with an assistant run on an OpenAI thread.
// The thread id is the continuation handle.
type Client struct {
	clients.RateLimits
	api          *openai.Client
	assistantID  string
	systemPrompt string
	pollInterval time.Duration
	maxPolls     int
}

func NewClient(apiKey string, assistantID string, pollInterval time.Duration, maxPolls int) *Client {
	return NewClientWithConfig(openai.DefaultConfig(apiKey), assistantID, pollInterval, maxPolls)
}

func NewClientWithConfig(config openai.ClientConfig, assistantID string, pollInterval time.Duration, maxPolls int) *Client {
	return &Client{
		api:          openai.NewClientWithConfig(config),
		assistantID:  assistantID,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}
}

func (c *Client) SetSystemPrompt(prompt string) {
	c.systemPrompt = prompt
}

func (c *Client) Respond(ctx context.Context, request models.RequestEnvelope) (models.ResponderResult, error) {

	if err := c.Wait(ctx); err != nil {
		return models.ResponderResult{}, errors.Wrap(err, "rate limit wait interrupted")
	}

	threadID := request.PreviousToken
	if !request.HasPreviousToken() {
		thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{
			Metadata: map[string]any{userMetadataKey: strconv.FormatInt(request.UserID, 10)},
		})
		if err != nil {
			return models.ResponderResult{}, errors.Wrap(err, "failed to create thread")
		}
		threadID = thread.ID
	}

	_, err := c.api.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    string(openai.ThreadMessageRoleUser),
		Content: request.Text,
	})
	if err != nil {
		return models.ResponderResult{}, errors.Wrapf(err, "failed to add message to thread %s", threadID)
	}

	run, err := c.api.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID:            c.assistantID,
		AdditionalInstructions: prompts.Instructions(c.systemPrompt, request.Mode, request.Locale),
	})
	if err != nil {
		return models.ResponderResult{}, errors.Wrapf(err, "failed to start run on thread %s", threadID)
	}

	run, err = c.await(ctx, threadID, run)
	if err != nil {
		c.cancel(threadID, run.ID)
		return models.ResponderResult{}, err
	}

	reply, err := c.reply(ctx, threadID, run.ID)
	if err != nil {
		return models.ResponderResult{}, err
	}

	return models.ResponderResult{Reply: reply, Token: threadID}, nil
}

func (c *Client) await(ctx context.Context, threadID string, run openai.Run) (openai.Run, error) {

	for polls := 0; ; polls++ {
		switch run.Status {
		case openai.RunStatusCompleted:
			return run, nil
		case openai.RunStatusRequiresAction:
			return run, fmt.Errorf("%w: run %s requires action", models.ErrResponderIncomplete, run.ID)
		case openai.RunStatusQueued, openai.RunStatusInProgress:
		default:
			return run, fmt.Errorf("%w: run %s ended as %q%s", models.ErrResponderFailure, run.ID, run.Status, lastError(run))
		}

		if polls >= c.maxPolls {
			return run, errors.Errorf("run %s is still %s after %d polls", run.ID, run.Status, polls)
		}

		select {
		case <-ctx.Done():
			return run, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		next, err := c.api.RetrieveRun(ctx, threadID, run.ID)
		if err != nil {
			return run, errors.Wrapf(err, "failed to poll run %s", run.ID)
		}
		run = next
	}
}

// cancel frees the thread for the next turn; a thread with an active run rejects new messages.
func (c *Client) cancel(threadID, runID string) {
	if runID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := c.api.CancelRun(ctx, threadID, runID); err != nil {
		log.Warnf("failed to cancel run %s: %v", runID, err)
	}
}

func (c *Client) reply(ctx context.Context, threadID, runID string) (models.Reply, error) {
	limit := 20
	order := "asc"

	list, err := c.api.ListMessage(ctx, threadID, &limit, &order, nil, nil, &runID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list messages of run %s", runID)
	}

	var blocks models.StructuredBlocks
	for _, message := range list.Messages {
		if message.Role != string(openai.ThreadMessageRoleAssistant) {
			continue
		}
		for _, content := range message.Content {
			if content.Text != nil {
				blocks = append(blocks, models.Block{Kind: models.BlockText, Text: content.Text.Value})
			}
		}
	}
	return blocks, nil
}

func lastError(run openai.Run) string {
	if run.LastError == nil {
		return ""
	}
	return ": " + run.LastError.Message
}
