package services

import (
	"context"
	"errors"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/tg-relay-bot/internal/domain/events"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/maxaizer/tg-relay-bot/internal/logger"
	"github.com/maxaizer/tg-relay-bot/internal/metrics"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"sort"
	"strings"
	"time"
)

const (
	startCommandName = "start"
	resetCommandName = "reset"
	menuCommandName  = "menu"
	modeCommandName  = "mode"
	helpCommandName  = "help"
	statsCommandName = "stats"
)

const defaultResponderTimeout = 60 * time.Second

type ConversationStore interface {
	Get(ctx context.Context, userID int64) models.ConversationRecord
	Reset(ctx context.Context, userID int64) models.ConversationRecord
	Touch(ctx context.Context, userID int64, now time.Time)
	Save(ctx context.Context, record models.ConversationRecord) error
}

type Responder interface {
	Respond(ctx context.Context, request models.RequestEnvelope) (models.ResponderResult, error)
}

type ledgerReader interface {
	Snapshot(now time.Time) models.LedgerSnapshot
}

type presence interface {
	ShowTyping(chatID int64)
}

type OrchestratorConfig struct {
	RequireExplicitMode bool
	AdminID             int64
	ResponderTimeout    time.Duration
}

// DefaultMode is the mode a fresh or reset record starts with.
func (c OrchestratorConfig) DefaultMode() models.Mode {
	if c.RequireExplicitMode {
		return models.ModeUnset
	}
	return models.ModeGeneral
}

// Orchestrator runs one turn per inbound event. It is the only writer of conversation records.
type Orchestrator struct {
	cfg       OrchestratorConfig
	store     ConversationStore
	responder Responder
	ledger    ledgerReader
	bus       EventBus.Bus
	policy    Policy
	linker    *Linker
	locks     *userLocks
	presence  presence
	now       func() time.Time
}

func NewOrchestrator(cfg OrchestratorConfig, store ConversationStore, responder Responder,
	ledger ledgerReader, bus EventBus.Bus) (*Orchestrator, error) {

	if store == nil {
		return nil, errors.New("conversation store is nil")
	}

	if responder == nil {
		return nil, errors.New("responder is nil")
	}

	if ledger == nil {
		return nil, errors.New("ledger is nil")
	}

	if bus == nil {
		return nil, errors.New("bus is nil")
	}

	if cfg.ResponderTimeout <= 0 {
		cfg.ResponderTimeout = defaultResponderTimeout
	}

	return &Orchestrator{
		cfg:       cfg,
		store:     store,
		responder: responder,
		ledger:    ledger,
		bus:       bus,
		policy:    NewPolicy(cfg.DefaultMode()),
		linker:    NewLinker(),
		locks:     newUserLocks(),
		now:       time.Now,
	}, nil
}

func (o *Orchestrator) WithPresence(p presence) {
	o.presence = p
}

func (o *Orchestrator) Handle(ctx context.Context, in models.Inbound) models.Outbound {

	if in.Kind == models.InboundCommand && in.Command == statsCommandName {
		return o.handleStats(ctx, in)
	}

	now := o.now()
	if in.At.IsZero() {
		in.At = now
	}

	metrics.UpdatesCounter.WithLabelValues(string(in.Kind)).Inc()
	o.bus.Publish(events.UpdateReceivedTopic, events.UpdateReceived{
		UserID:  in.UserID,
		Kind:    in.Kind,
		Command: in.Command,
		HasText: strings.TrimSpace(in.Text) != "",
		At:      in.At,
	})

	unlock := o.locks.Lock(in.UserID)
	defer unlock()

	record := o.store.Get(ctx, in.UserID)
	o.store.Touch(ctx, in.UserID, now)
	record.LastSeenAt = now

	var out models.Outbound
	switch in.Kind {
	case models.InboundCommand:
		out = o.handleCommand(ctx, record, in)
	case models.InboundCallback:
		out = o.handleCallback(ctx, record, in)
	default:
		out = o.handleText(ctx, record, in)
	}

	out.ChatID = in.ChatID
	out.CallbackID = in.CallbackID
	return out
}

func (o *Orchestrator) handleCommand(ctx context.Context, record models.ConversationRecord, in models.Inbound) models.Outbound {

	switch in.Command {
	case startCommandName:
		return models.Outbound{Text: welcomeText.in(record.Locale), Menu: o.policy.Menu(record)}
	case resetCommandName:
		record = o.store.Reset(ctx, in.UserID)
		out := models.Outbound{Text: resetText.in(record.Locale)}
		if !record.HasMode() {
			out.Menu = o.policy.Menu(record)
		}
		return out
	case menuCommandName, modeCommandName:
		return models.Outbound{Text: menuText.in(record.Locale), Menu: o.policy.Menu(record)}
	case helpCommandName:
		return models.Outbound{Text: helpText.in(record.Locale)}
	default:
		return models.Outbound{Text: unknownCommandText.in(record.Locale)}
	}
}

func (o *Orchestrator) handleCallback(ctx context.Context, record models.ConversationRecord, in models.Inbound) models.Outbound {

	kind, value, ok := ParseTransition(in.Data)
	if !ok {
		return models.Outbound{Text: unknownOptionText.in(record.Locale)}
	}

	updated, confirmation := o.policy.ApplyTransition(record, kind, value)

	if kind == TransitionReset {
		updated = o.store.Reset(ctx, in.UserID)
	} else if updated != record {
		if err := o.store.Save(ctx, updated); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to save conversation after %s: %v", kind, err)
			return models.Outbound{Text: apologyText.in(record.Locale)}
		}
	}

	out := models.Outbound{Text: confirmation}
	if !updated.HasMode() {
		out.Menu = o.policy.Menu(updated)
	}
	return out
}

func (o *Orchestrator) handleText(ctx context.Context, record models.ConversationRecord, in models.Inbound) models.Outbound {

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return models.Outbound{Text: sendTextText.in(record.Locale)}
	}

	if o.cfg.RequireExplicitMode && !record.HasMode() {
		metrics.TurnsCounter.WithLabelValues(metrics.OutcomeGated).Inc()
		return models.Outbound{Text: chooseFirstText.in(record.Locale), Menu: o.policy.Menu(record)}
	}

	request := o.linker.PrepareCall(record, text)

	if o.presence != nil {
		o.presence.ShowTyping(in.ChatID)
	}

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.ResponderTimeout)
	defer cancel()

	start := time.Now()
	result, callErr := o.responder.Respond(callCtx, request)
	metrics.ResponderDuration.Observe(time.Since(start).Seconds())

	updated, answer, err := o.linker.CompleteCall(record, result, callErr)
	if err != nil {
		metrics.TurnsCounter.WithLabelValues(metrics.OutcomeFailed).Inc()
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
			Errorf("turn of user %d failed: %v", in.UserID, err)
		return models.Outbound{Text: apologyText.in(record.Locale)}
	}

	if err = o.store.Save(ctx, updated); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to save continuation of user %d: %v", in.UserID, err)
	}

	metrics.TurnsCounter.WithLabelValues(metrics.OutcomeAnswered).Inc()
	return models.Outbound{Text: answer, DisablePreview: true}
}

// handleStats is read-only: it is not recorded in the ledger, whoever asks.
// handleStats stays out of the ledger but still marks the user as seen.
func (o *Orchestrator) handleStats(ctx context.Context, in models.Inbound) models.Outbound {

	unlock := o.locks.Lock(in.UserID)
	defer unlock()

	record := o.store.Get(ctx, in.UserID)
	o.store.Touch(ctx, in.UserID, o.now())

	if !o.isAdmin(in.UserID) {
		log.Infof("user %d requested stats: %v", in.UserID, models.ErrAuthorizationDenied)
		return models.Outbound{ChatID: in.ChatID, Text: unknownCommandText.in(record.Locale)}
	}

	return models.Outbound{ChatID: in.ChatID, Text: FormatSnapshot(o.ledger.Snapshot(o.now()))}
}

func (o *Orchestrator) isAdmin(userID int64) bool {
	return o.cfg.AdminID != 0 && userID == o.cfg.AdminID
}

func FormatSnapshot(snapshot models.LedgerSnapshot) string {
	var sb strings.Builder

	sb.WriteString("📊 Stats\n")
	sb.WriteString(fmt.Sprintf("Updates: %d\n", snapshot.TotalUpdates))
	sb.WriteString(fmt.Sprintf("Berichten: %d\n", snapshot.TotalMessages))
	sb.WriteString(fmt.Sprintf("Unieke gebruikers: %d\n", snapshot.DistinctUsers))
	sb.WriteString(fmt.Sprintf("Actief 24u: %d, 7d: %d", snapshot.Active24h, snapshot.Active7d))

	commands := lo.Keys(snapshot.Commands)
	sort.Strings(commands)
	if len(commands) > 0 {
		sb.WriteString("\nCommando's: ")
		sb.WriteString(strings.Join(lo.Map(commands, func(command string, _ int) string {
			return fmt.Sprintf("/%s=%d", command, snapshot.Commands[command])
		}), ", "))
	}

	return sb.String()
}
