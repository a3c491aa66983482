package services

import (
	"github.com/maxaizer/tg-relay-bot/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type reportSender interface {
	SendText(chatID int64, text string) error
}

// StatsReporter sends the ledger snapshot to the admin chat on a cron schedule.
type StatsReporter struct {
	ledger  ledgerReader
	sender  reportSender
	adminID int64
	cron    *cron.Cron
	now     func() time.Time
}

func NewStatsReporter(ledger ledgerReader, sender reportSender, adminID int64, schedule string) (*StatsReporter, error) {

	if adminID == 0 {
		return nil, errors.New("admin id is not set")
	}

	r := &StatsReporter{
		ledger:  ledger,
		sender:  sender,
		adminID: adminID,
		cron:    cron.New(),
		now:     time.Now,
	}

	if _, err := r.cron.AddFunc(schedule, r.report); err != nil {
		return nil, errors.Wrapf(err, "invalid stats report schedule %q", schedule)
	}

	r.cron.Start()
	log.Infof("stats reporter started, schedule: %s", schedule)
	return r, nil
}

func (r *StatsReporter) Stop() {
	<-r.cron.Stop().Done()
}

func (r *StatsReporter) report() {
	text := FormatSnapshot(r.ledger.Snapshot(r.now()))
	if err := r.sender.SendText(r.adminID, text); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Errorf("failed to send stats report: %v", err)
	} else {
		log.Infof("stats report sent at %v", r.now())
	}
}
