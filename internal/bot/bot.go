package bot

import (
	"context"
	"errors"
	"strings"
	"sync"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/maxaizer/tg-relay-bot/internal/logger"
	log "github.com/sirupsen/logrus"
)

const WebhookPath = "/webhook"

type turnHandler interface {
	Handle(ctx context.Context, in models.Inbound) models.Outbound
}

type WebhookConfig struct {
	// URL is the public base url of the server, the webhook path is appended.
	URL    string
	Secret string
}

type Bot struct {
	client  *botApi.BotAPI
	api     apiInterface
	handler turnHandler
	webhook WebhookConfig
	ctx     context.Context
	cancel  context.CancelFunc
	turns   sync.WaitGroup
}

func NewBot(token string, handler turnHandler, webhook WebhookConfig) (*Bot, error) {

	if handler == nil {
		return nil, errors.New("turn handler is nil")
	}

	client, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", client.Self.UserName)

	err = botApi.SetLogger(log.StandardLogger())
	if err != nil {
		return nil, err
	}

	b := newBot(client, handler, webhook)
	b.client = client
	return b, nil
}

func newBot(api apiInterface, handler turnHandler, webhook WebhookConfig) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{api: api, handler: handler, webhook: webhook, ctx: ctx, cancel: cancel}
}

// Run registers the webhook and returns, or polls for updates until Stop is called.
func (b *Bot) Run() error {

	b.registerCommands()

	if b.webhook.URL != "" {
		return b.registerWebhook()
	}

	if _, err := b.client.Request(botApi.DeleteWebhookConfig{}); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Warnf("failed to delete webhook: %v", err)
	}

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.client.GetUpdatesChan(updateConfig)
	log.Info("polling for updates")

	for update := range updates {
		b.HandleUpdate(update)
	}
	return nil
}

// Stop cancels the turns in flight and waits for them to deliver.
func (b *Bot) Stop() {
	if b.client != nil && b.webhook.URL == "" {
		b.client.StopReceivingUpdates()
	}
	b.cancel()
	b.turns.Wait()
}

// HandleUpdate starts a turn for the update and returns without waiting for it.
func (b *Bot) HandleUpdate(update botApi.Update) {

	in, ok := toInbound(update)
	if !ok {
		return
	}

	b.turns.Add(1)
	go func() {
		defer b.turns.Done()
		b.deliver(b.handler.Handle(b.ctx, in))
	}()
}

func (b *Bot) ShowTyping(chatID int64) {
	if _, err := b.api.Request(botApi.NewChatAction(chatID, botApi.ChatTyping)); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Warnf("failed to send typing action: %v", err)
	}
}

func (b *Bot) SendText(chatID int64, text string) error {
	_, err := sendWithLogError(b.api, botApi.NewMessage(chatID, text))
	return err
}

func (b *Bot) deliver(out models.Outbound) {

	if out.CallbackID != "" {
		if _, err := b.api.Request(botApi.NewCallback(out.CallbackID, "")); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Warnf("failed to answer callback: %v", err)
		}
	}

	if out.Text == "" {
		return
	}

	chunks := splitMessage(out.Text, maxMessageLength)
	for i, chunk := range chunks {
		msg := botApi.NewMessage(out.ChatID, chunk)
		msg.DisableWebPagePreview = out.DisablePreview
		if i == len(chunks)-1 && out.HasMenu() {
			msg.ReplyMarkup = inlineKeyboard(out.Menu)
		}

		if _, err := sendWithLogError(b.api, msg); err != nil {
			return
		}
	}
}

func (b *Bot) registerWebhook() error {
	params := botApi.Params{}
	params["url"] = strings.TrimSuffix(b.webhook.URL, "/") + WebhookPath
	params.AddNonEmpty("secret_token", b.webhook.Secret)

	if _, err := b.client.MakeRequest("setWebhook", params); err != nil {
		return err
	}
	log.Infof("webhook registered at %s", params["url"])
	return nil
}

func (b *Bot) registerCommands() {
	_, err := b.api.Request(botApi.NewSetMyCommands(
		botApi.BotCommand{Command: "start", Description: "Start"},
		botApi.BotCommand{Command: "menu", Description: "Onderwerp en taal / Topic and language"},
		botApi.BotCommand{Command: "reset", Description: "Opnieuw beginnen / Start over"},
		botApi.BotCommand{Command: "help", Description: "Help"},
	))
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Warnf("failed to set bot commands: %v", err)
	}
}

func toInbound(update botApi.Update) (models.Inbound, bool) {

	switch {
	case update.Message != nil:
		message := update.Message
		if message.From == nil || message.Chat == nil || message.Chat.IsGroup() || message.Chat.IsSuperGroup() {
			return models.Inbound{}, false
		}

		in := models.Inbound{UserID: message.From.ID, ChatID: message.Chat.ID, At: message.Time()}
		if message.IsCommand() {
			in.Kind = models.InboundCommand
			in.Command = strings.ToLower(message.Command())
			in.Args = message.CommandArguments()
		} else {
			in.Kind = models.InboundText
			in.Text = message.Text
		}
		return in, true

	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if query.From == nil {
			return models.Inbound{}, false
		}

		chatID := query.From.ID
		if query.Message != nil && query.Message.Chat != nil {
			if query.Message.Chat.IsGroup() || query.Message.Chat.IsSuperGroup() {
				return models.Inbound{}, false
			}
			chatID = query.Message.Chat.ID
		}

		return models.Inbound{
			Kind:       models.InboundCallback,
			UserID:     query.From.ID,
			ChatID:     chatID,
			Data:       query.Data,
			CallbackID: query.ID,
		}, true
	}

	return models.Inbound{}, false
}
