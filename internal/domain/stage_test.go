package domain_test

import (
	"testing"
	"time"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func statusPtr(s domain.CallStatus) *domain.CallStatus {
	return &s
}

func TestResolveStageKey(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name         string
		isConverted  bool
		followUpDate *time.Time
		callStatus   *domain.CallStatus
		expected     domain.StageKey
	}{
		{"converted wins over everything", true, &future, statusPtr(domain.CallStatusAnswered), domain.StageConverted},
		{"future follow-up wins over call status", false, &future, statusPtr(domain.CallStatusAnswered), domain.StageFollowUp},
		{"past follow-up falls through to call status", false, &past, statusPtr(domain.CallStatusAnswered), domain.StageAnswered},
		{"answered", false, nil, statusPtr(domain.CallStatusAnswered), domain.StageAnswered},
		{"client answered", false, nil, statusPtr(domain.CallStatusClientAnswered), domain.StageClientAnswered},
		{"client not answered", false, nil, statusPtr(domain.CallStatusClientNotAnswered), domain.StageClientNotAnswered},
		{"not answered status maps to default", false, nil, statusPtr(domain.CallStatusNotAnswered), domain.StageNotAnswered},
		{"no status at all maps to default", false, nil, nil, domain.StageNotAnswered},
		{"unknown status maps to default", false, nil, statusPtr(domain.CallStatus("busy")), domain.StageNotAnswered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ResolveStageKey(tt.isConverted, tt.followUpDate, tt.callStatus, now)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStageKey_IsSystem(t *testing.T) {
	for _, key := range []domain.StageKey{
		domain.StageAnswered, domain.StageNotAnswered,
		domain.StageClientAnswered, domain.StageClientNotAnswered,
		domain.StageFollowUp, domain.StageConverted,
	} {
		assert.True(t, key.IsSystem(), string(key))
	}
	assert.False(t, domain.StageKey("vip").IsSystem())
	assert.False(t, domain.StageKey("").IsSystem())
}

func TestSystemStageSeeds(t *testing.T) {
	seeds := domain.SystemStageSeeds()
	assert.Len(t, seeds, 6)

	// Display order is fixed and every key is a system key
	for i, seed := range seeds {
		assert.Equal(t, i+1, seed.SortOrder)
		assert.True(t, seed.Key.IsSystem())
		assert.NotEmpty(t, seed.Name)
		assert.NotEmpty(t, seed.Color)
	}
	assert.Equal(t, domain.StageAnswered, seeds[0].Key)
	assert.Equal(t, domain.StageConverted, seeds[5].Key)
}
