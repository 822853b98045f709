package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/jobs"
)

type fakeLeadSource struct {
	leads   []domain.Lead
	err     error
	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakeLeadSource) GetDueFollowUps(_ context.Context, from, to time.Time) ([]domain.Lead, error) {
	f.gotFrom = from
	f.gotTo = to
	return f.leads, f.err
}

type recordingSender struct {
	phones   []string
	messages []string
	failFor  map[string]error
}

func (r *recordingSender) Send(_ context.Context, phone, message string) error {
	if err, ok := r.failFor[phone]; ok {
		return err
	}
	r.phones = append(r.phones, phone)
	r.messages = append(r.messages, message)
	return nil
}

func TestFollowUpReminderJob_Run(t *testing.T) {
	source := &fakeLeadSource{leads: []domain.Lead{
		{ClientName: "Aziz", PhoneNumber: "998901234567"},
		{ClientName: "", PhoneNumber: "998907654321"},
	}}
	sender := &recordingSender{}

	job := jobs.NewFollowUpReminderJob(source, sender, zap.NewNop(), time.Minute)
	job.Run()

	require.Len(t, sender.phones, 2)
	assert.Equal(t, []string{"998901234567", "998907654321"}, sender.phones)
	assert.Contains(t, sender.messages[0], "Aziz")
	assert.Contains(t, sender.messages[1], "mijoz")

	// window is one day wide starting now
	assert.WithinDuration(t, time.Now(), source.gotFrom, 5*time.Second)
	assert.Equal(t, source.gotFrom.AddDate(0, 0, 1), source.gotTo)
}

func TestFollowUpReminderJob_Run_SendFailureContinues(t *testing.T) {
	source := &fakeLeadSource{leads: []domain.Lead{
		{ClientName: "Aziz", PhoneNumber: "998901111111"},
		{ClientName: "Bekzod", PhoneNumber: "998902222222"},
		{ClientName: "Dilnoza", PhoneNumber: "998903333333"},
	}}
	sender := &recordingSender{failFor: map[string]error{
		"998902222222": errors.New("gateway down"),
	}}

	job := jobs.NewFollowUpReminderJob(source, sender, zap.NewNop(), time.Minute)
	job.Run()

	assert.Equal(t, []string{"998901111111", "998903333333"}, sender.phones)
}

func TestFollowUpReminderJob_Run_ListError(t *testing.T) {
	source := &fakeLeadSource{err: errors.New("database unavailable")}
	sender := &recordingSender{}

	job := jobs.NewFollowUpReminderJob(source, sender, zap.NewNop(), time.Minute)
	job.Run()

	assert.Empty(t, sender.phones)
}
