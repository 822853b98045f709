package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestApplyClientPayload_EmptyFieldsKeepExistingData(t *testing.T) {
	existing := time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC)
	client := &domain.ClientInformation{
		FirstName:      "Aziz",
		LastName:       "Karimov",
		Phone:          "+998901234567",
		PassportNumber: "AB1234567",
		Heard:          "Instagram",
		BirthDate:      &existing,
	}

	err := applyClientPayload(client, &domain.ClientPayload{
		FirstName: "Aziz",
		LastName:  "",
		Heard:     "",
	})
	require.NoError(t, err)

	assert.Equal(t, "Karimov", client.LastName)
	assert.Equal(t, "+998901234567", client.Phone)
	assert.Equal(t, "AB1234567", client.PassportNumber)
	assert.Equal(t, "Instagram", client.Heard)
	require.NotNil(t, client.BirthDate, "absent birthDate key must not clear the stored date")
	assert.Equal(t, existing, *client.BirthDate)
}

func TestApplyClientPayload_SetNullBirthDateClears(t *testing.T) {
	existing := time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC)
	client := &domain.ClientInformation{
		FirstName: "Aziz",
		LastName:  "Karimov",
		BirthDate: &existing,
	}

	err := applyClientPayload(client, &domain.ClientPayload{
		FirstName: "Aziz",
		LastName:  "Karimov",
		BirthDate: domain.OptionalDate{Set: true, Value: nil},
	})
	require.NoError(t, err)
	assert.Nil(t, client.BirthDate, "explicit null birthDate must clear the stored date")
}

func TestApplyClientPayload_SetBirthDateOverwrites(t *testing.T) {
	client := &domain.ClientInformation{FirstName: "Aziz", LastName: "Karimov"}
	newDate := time.Date(1985, 1, 2, 0, 0, 0, 0, time.UTC)

	err := applyClientPayload(client, &domain.ClientPayload{
		FirstName: "Aziz",
		LastName:  "Karimov",
		BirthDate: domain.OptionalDate{Set: true, Value: &newDate},
	})
	require.NoError(t, err)
	require.NotNil(t, client.BirthDate)
	assert.Equal(t, newDate, *client.BirthDate)
}

func TestApplyClientPayload_ComposesFullName(t *testing.T) {
	client := &domain.ClientInformation{}

	err := applyClientPayload(client, &domain.ClientPayload{
		FirstName:  "Aziz",
		LastName:   "Karimov",
		MiddleName: "Olimovich",
	})
	require.NoError(t, err)
	assert.Equal(t, "Karimov Aziz Olimovich", client.FullName)
}

func TestApplyClientPayload_InvalidPassportDate(t *testing.T) {
	client := &domain.ClientInformation{}

	err := applyClientPayload(client, &domain.ClientPayload{
		FirstName:         "Aziz",
		LastName:          "Karimov",
		PassportIssueDate: strPtr("not-a-date"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildFamilyMembers(t *testing.T) {
	members, err := buildFamilyMembers([]domain.FamilyMemberPayload{
		{
			Relationship: domain.RelationshipSon,
			FirstName:    "Bekzod",
			LastName:     "Karimov",
			BirthDate:    strPtr("15.03.2010"),
		},
		{
			Relationship:       domain.RelationshipMother,
			FirstName:          "Dilnoza",
			LastName:           "Karimova",
			PassportIssueDate:  strPtr("2015-06-01"),
			PassportExpiryDate: strPtr("2025-06-01"),
		},
	})
	require.NoError(t, err)
	require.Len(t, members, 2)

	assert.Equal(t, "Karimov Bekzod", members[0].FullName)
	require.NotNil(t, members[0].BirthDate)
	assert.Equal(t, time.Date(2010, 3, 15, 0, 0, 0, 0, time.UTC), *members[0].BirthDate)
	assert.Nil(t, members[0].PassportIssueDate)

	require.NotNil(t, members[1].PassportIssueDate)
	assert.Equal(t, time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC), *members[1].PassportIssueDate)
	require.NotNil(t, members[1].PassportExpiryDate)
}

func TestBuildFamilyMembers_InvalidRelationship(t *testing.T) {
	_, err := buildFamilyMembers([]domain.FamilyMemberPayload{
		{Relationship: "neighbor", FirstName: "A", LastName: "B"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildFamilyMembers_InvalidDate(t *testing.T) {
	_, err := buildFamilyMembers([]domain.FamilyMemberPayload{
		{Relationship: domain.RelationshipSon, FirstName: "A", LastName: "B", BirthDate: strPtr("31.31.2020")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
