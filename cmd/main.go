package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/tg-relay-bot/internal/bot"
	"github.com/maxaizer/tg-relay-bot/internal/clients/assistants"
	"github.com/maxaizer/tg-relay-bot/internal/clients/gemini"
	"github.com/maxaizer/tg-relay-bot/internal/clients/openai"
	"github.com/maxaizer/tg-relay-bot/internal/config"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/maxaizer/tg-relay-bot/internal/logger"
	"github.com/maxaizer/tg-relay-bot/internal/metrics"
	"github.com/maxaizer/tg-relay-bot/internal/repositories"
	"github.com/maxaizer/tg-relay-bot/internal/server"
	"github.com/maxaizer/tg-relay-bot/internal/services"
	log "github.com/sirupsen/logrus"
)

func newResponder(ctx context.Context, cfg config.ResponderConfig) (services.Responder, func()) {

	switch cfg.Backend {
	case config.BackendAssistants:
		client := assistants.NewClient(cfg.APIKey, cfg.AssistantID, cfg.PollInterval, cfg.MaxPolls)
		client.SetSystemPrompt(cfg.SystemPrompt)
		client.SetMinuteRateLimit(cfg.MaxRequestsPerMinute)
		client.SetDayRateLimit(cfg.MaxRequestsPerDay)
		return client, func() {}

	case config.BackendGemini:
		model := gemini.Model(cfg.Model)
		if !strings.HasPrefix(cfg.Model, "gemini") {
			model = gemini.Model15Flash
		}
		client, err := gemini.NewClient(ctx, cfg.APIKey, model)
		if err != nil {
			log.Fatalf("can't create gemini client: %v", err)
		}
		client.SetSystemPrompt(cfg.SystemPrompt)
		client.SetMinuteRateLimit(cfg.MaxRequestsPerMinute)
		client.SetDayRateLimit(cfg.MaxRequestsPerDay)
		return client, func() { _ = client.Close() }

	default:
		client := openai.NewClient(cfg.APIKey, cfg.Model)
		client.SetSystemPrompt(cfg.SystemPrompt)
		if cfg.Background {
			client.SetBackground(cfg.PollInterval, cfg.MaxPolls)
		}
		client.SetMinuteRateLimit(cfg.MaxRequestsPerMinute)
		client.SetDayRateLimit(cfg.MaxRequestsPerDay)
		return client, func() {}
	}
}

type store struct {
	conversations services.ConversationStore
	dbContext     *repositories.DbContext
	data          *repositories.Data
}

func newStore(cfg config.StoreConfig, defaultMode models.Mode) store {

	if cfg.Driver != config.DriverSqlite {
		return store{conversations: repositories.NewMemoryConversations(defaultMode)}
	}

	dbContext, err := repositories.NewDbContext(cfg.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	conversations := repositories.NewCachedConversations(repositories.NewConversationRepository(dbContext.DB, defaultMode))
	return store{conversations: conversations, dbContext: dbContext, data: repositories.NewDataRepository(dbContext.DB)}
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.Register()

	bus := EventBus.New()

	ledger, err := services.NewLedger(bus)
	if err != nil {
		log.Fatalf("can't create ledger: %v", err)
	}

	orchestratorCfg := services.OrchestratorConfig{
		RequireExplicitMode: cfg.Bot.RequireExplicitMode,
		AdminID:             cfg.Bot.AdminID,
		ResponderTimeout:    cfg.Responder.Timeout,
	}

	st := newStore(cfg.Store, orchestratorCfg.DefaultMode())
	if st.dbContext != nil {
		defer st.dbContext.Close()
		if err = ledger.Restore(ctx, st.data); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("can't restore ledger: %v", err)
		}
	}

	responder, closeResponder := newResponder(ctx, cfg.Responder)
	defer closeResponder()

	orchestrator, err := services.NewOrchestrator(orchestratorCfg, st.conversations, responder, ledger, bus)
	if err != nil {
		log.Fatalf("can't create orchestrator: %v", err)
	}

	tgbot, err := bot.NewBot(cfg.Bot.Token, orchestrator, bot.WebhookConfig{
		URL:    cfg.Bot.WebhookURL,
		Secret: cfg.Server.WebhookSecret,
	})
	if err != nil {
		log.Fatalf("can't create bot: %v", err)
	}
	orchestrator.WithPresence(tgbot)

	var httpServer *server.Server
	if cfg.Bot.WebhookURL != "" {
		httpServer = server.NewServer(cfg.Server, ledger, tgbot)
	} else {
		httpServer = server.NewServer(cfg.Server, ledger, nil)
	}
	httpServer.Start()

	go func() {
		if err := tgbot.Run(); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Fatalf("can't run bot: %v", err)
		}
	}()

	if cfg.Bot.StatsReportSchedule != "" {
		reporter, err := services.NewStatsReporter(ledger, tgbot, cfg.Bot.AdminID, cfg.Bot.StatsReportSchedule)
		if err != nil {
			log.Fatalf("can't create stats reporter: %v", err)
		}
		defer reporter.Stop()
	}

	<-ctx.Done()

	log.Info("Shutting down services...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHttp).Errorf("http server shutdown: %v", err)
	}
	tgbot.Stop()

	if st.data != nil {
		persistCtx, cancelPersist := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelPersist()
		if err = ledger.Persist(persistCtx, st.data); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("can't persist ledger: %v", err)
		}
	}

	log.Info("Services stopped.")
}
