package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/sms"
	"go.uber.org/zap"
)

// FollowUpReminderJobName is the name of the follow-up reminder job
const FollowUpReminderJobName = "follow_up_reminder"

// LeadSource lists leads whose follow-up falls inside a window.
type LeadSource interface {
	GetDueFollowUps(ctx context.Context, from, to time.Time) ([]domain.Lead, error)
}

// FollowUpReminderJob texts operators about leads whose follow-up is due
// within the next day. Runs each morning.
type FollowUpReminderJob struct {
	leads   LeadSource
	sender  sms.Sender
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewFollowUpReminderJob(leads LeadSource, sender sms.Sender, logger *zap.Logger, timeout time.Duration) *FollowUpReminderJob {
	return &FollowUpReminderJob{
		leads:   leads,
		sender:  sender,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
	}
}

// Run executes one reminder pass. Called by the scheduler.
func (j *FollowUpReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := j.now()
	from := start
	to := start.AddDate(0, 0, 1)

	leads, err := j.leads.GetDueFollowUps(ctx, from, to)
	if err != nil {
		j.logger.Error("follow-up reminder failed to list leads", zap.Error(err))
		return
	}
	if len(leads) == 0 {
		return
	}

	sent, failed := 0, 0
	for i := range leads {
		lead := &leads[i]
		message := followUpMessage(lead)
		if err := j.sender.Send(ctx, lead.PhoneNumber, message); err != nil {
			j.logger.Warn("failed to send follow-up reminder",
				zap.String("phone", lead.PhoneNumber),
				zap.Error(err))
			failed++
			continue
		}
		sent++
	}

	j.logger.Info("follow-up reminder job completed",
		zap.Int("due", len(leads)),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
}

func followUpMessage(lead *domain.Lead) string {
	name := lead.ClientName
	if name == "" {
		name = "mijoz"
	}
	return fmt.Sprintf("Hurmatli %s, bugun siz bilan bog'lanishimiz rejalashtirilgan. Khiva Consulting.", name)
}

// RegisterFollowUpReminderJob wires the job into the scheduler
func RegisterFollowUpReminderJob(scheduler *Scheduler, leads LeadSource, sender sms.Sender, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewFollowUpReminderJob(leads, sender, logger, timeout)
	return scheduler.AddJob(FollowUpReminderJobName, cronExpr, job.Run)
}
