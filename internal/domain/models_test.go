package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestLead_DurationDisplay(t *testing.T) {
	tests := []struct {
		name     string
		duration *int
		expected string
	}{
		{"nil duration is empty", nil, ""},
		{"zero", intPtr(0), "00:00:00"},
		{"seconds only", intPtr(42), "00:00:42"},
		{"minutes and seconds", intPtr(125), "00:02:05"},
		{"hours", intPtr(3723), "01:02:03"},
		{"negative clamps to zero", intPtr(-5), "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := domain.Lead{CallDuration: tt.duration}
			assert.Equal(t, tt.expected, lead.DurationDisplay())
		})
	}
}

func TestClientInformation_ComposeFullName(t *testing.T) {
	tests := []struct {
		name     string
		client   domain.ClientInformation
		expected string
	}{
		{
			"last name first",
			domain.ClientInformation{FirstName: "Aziz", LastName: "Karimov"},
			"Karimov Aziz",
		},
		{
			"middle name last",
			domain.ClientInformation{FirstName: "Aziz", LastName: "Karimov", MiddleName: "Olimovich"},
			"Karimov Aziz Olimovich",
		},
		{
			"missing parts are skipped",
			domain.ClientInformation{FirstName: "Aziz"},
			"Aziz",
		},
		{
			"all empty",
			domain.ClientInformation{},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.client.ComposeFullName())
		})
	}
}

func TestConsultingContract_RemainingAmount(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		paid     int64
		expected int64
	}{
		{"unpaid", 10_000_000, 0, 10_000_000},
		{"partial", 10_000_000, 4_000_000, 6_000_000},
		{"fully paid", 10_000_000, 10_000_000, 0},
		{"overpaid never goes negative", 10_000_000, 12_000_000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := domain.ConsultingContract{TotalServiceFee: tt.total, AmountPaid: tt.paid}
			assert.Equal(t, tt.expected, c.RemainingAmount())
		})
	}
}

func TestOptionalDate_UnmarshalJSON(t *testing.T) {
	type payload struct {
		BirthDate domain.OptionalDate `json:"birthDate"`
	}

	t.Run("absent key stays unset", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.False(t, p.BirthDate.Set)
		assert.Nil(t, p.BirthDate.Value)
	})

	t.Run("explicit null is set with nil value", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"birthDate": null}`), &p))
		assert.True(t, p.BirthDate.Set)
		assert.Nil(t, p.BirthDate.Value)
	})

	t.Run("ISO date", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"birthDate": "1990-05-17"}`), &p))
		assert.True(t, p.BirthDate.Set)
		require.NotNil(t, p.BirthDate.Value)
		assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), *p.BirthDate.Value)
	})

	t.Run("dotted date", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"birthDate": "17.05.1990"}`), &p))
		require.NotNil(t, p.BirthDate.Value)
		assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), *p.BirthDate.Value)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		var p payload
		assert.Error(t, json.Unmarshal([]byte(`{"birthDate": "not-a-date"}`), &p))
	})
}

func TestContractStatus_IsValid(t *testing.T) {
	for _, s := range []domain.ContractStatus{
		domain.ContractStatusDraft, domain.ContractStatusPreparation,
		domain.ContractStatusSubmitted, domain.ContractStatusCompleted,
		domain.ContractStatusCancelled,
	} {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, domain.ContractStatus("active").IsValid())
	assert.False(t, domain.ContractStatus("").IsValid())
}

func TestFamilyRelationship_IsValid(t *testing.T) {
	for _, r := range []domain.FamilyRelationship{
		domain.RelationshipFather, domain.RelationshipMother,
		domain.RelationshipSon, domain.RelationshipDaughter,
		domain.RelationshipSpouse, domain.RelationshipBrother,
		domain.RelationshipSister, domain.RelationshipOther,
	} {
		assert.True(t, r.IsValid(), string(r))
	}
	assert.False(t, domain.FamilyRelationship("cousin").IsValid())
}
