package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses

type LeadStageDTO struct {
	ID            uuid.UUID `json:"id"`
	Key           StageKey  `json:"key"`
	Name          string    `json:"name"`
	Color         string    `json:"color"`
	Description   string    `json:"description,omitempty"`
	SortOrder     int       `json:"sortOrder"`
	IsSystemStage bool      `json:"isSystemStage"`
	LeadCount     int64     `json:"leadCount,omitempty"`
	CreatedAt     string    `json:"createdAt"` // ISO 8601
	UpdatedAt     string    `json:"updatedAt"` // ISO 8601
}

type OperatorDTO struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	LeadCount int64     `json:"leadCount,omitempty"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

type LeadDTO struct {
	ID                uuid.UUID   `json:"id"`
	PhoneNumber       string      `json:"phoneNumber"`
	ClientName        string      `json:"clientName,omitempty"`
	OperatorID        *uuid.UUID  `json:"operatorId,omitempty"`
	OperatorName      string      `json:"operatorName,omitempty"`
	CallStatus        *CallStatus `json:"callStatus,omitempty"`
	CallDuration      *int        `json:"callDuration,omitempty"`
	DurationDisplay   string      `json:"durationDisplay,omitempty"`
	Notes             string      `json:"notes,omitempty"`
	AudioPath         string      `json:"audioPath,omitempty"`
	FollowUpDate      *string     `json:"followUpDate,omitempty"`
	IsConverted       bool        `json:"isConverted"`
	ConvertedClientID *uuid.UUID  `json:"convertedClientId,omitempty"`
	StageID           *uuid.UUID  `json:"stageId,omitempty"`
	StageKey          StageKey    `json:"stageKey,omitempty"`
	StageName         string      `json:"stageName,omitempty"`
	StageColor        string      `json:"stageColor,omitempty"`
	CreatedAt         string      `json:"createdAt"`
	UpdatedAt         string      `json:"updatedAt"`
}

type ClientDTO struct {
	ID                 uuid.UUID `json:"id"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	MiddleName         string    `json:"middleName,omitempty"`
	FullName           string    `json:"fullName"`
	Phone              string    `json:"phone,omitempty"`
	Phone2             string    `json:"phone2,omitempty"`
	PassportNumber     string    `json:"passportNumber,omitempty"`
	PassportIssueDate  *string   `json:"passportIssueDate,omitempty"`
	PassportExpiryDate *string   `json:"passportExpiryDate,omitempty"`
	PassportIssuePlace string    `json:"passportIssuePlace,omitempty"`
	BirthDate          *string   `json:"birthDate,omitempty"`
	Address            string    `json:"address,omitempty"`
	Email              string    `json:"email,omitempty"`
	Heard              string    `json:"heard,omitempty"`
	CreatedAt          string    `json:"createdAt"`
	UpdatedAt          string    `json:"updatedAt"`
}

type FamilyMemberDTO struct {
	ID                 uuid.UUID          `json:"id"`
	ContractID         uuid.UUID          `json:"contractId"`
	Relationship       FamilyRelationship `json:"relationship"`
	FirstName          string             `json:"firstName"`
	LastName           string             `json:"lastName"`
	MiddleName         string             `json:"middleName,omitempty"`
	FullName           string             `json:"fullName"`
	PassportNumber     string             `json:"passportNumber,omitempty"`
	PassportIssueDate  *string            `json:"passportIssueDate,omitempty"`
	PassportExpiryDate *string            `json:"passportExpiryDate,omitempty"`
	BirthDate          *string            `json:"birthDate,omitempty"`
	Phone              string             `json:"phone,omitempty"`
	Notes              string             `json:"notes,omitempty"`
}

type ContractDTO struct {
	ID                         uuid.UUID         `json:"id"`
	ContractNumber             int               `json:"contractNumber"`
	ContractDate               string            `json:"contractDate"`
	ContractLocation           string            `json:"contractLocation"`
	ClientID                   uuid.UUID         `json:"clientId"`
	Client                     *ClientDTO        `json:"client,omitempty"`
	ServiceName                string            `json:"serviceName"`
	ServiceCountry             string            `json:"serviceCountry"`
	VisaType                   string            `json:"visaType"`
	ServiceDescription         string            `json:"serviceDescription,omitempty"`
	TotalServiceFee            int64             `json:"totalServiceFee"`
	InitialPaymentAmount       int64             `json:"initialPaymentAmount"`
	InitialPaymentDueDays      int               `json:"initialPaymentDueDays"`
	PostInterviewPaymentAmount int64             `json:"postInterviewPaymentAmount"`
	PostInterviewDueDays       int               `json:"postInterviewDueDays"`
	RefundAmount               int64             `json:"refundAmount"`
	ServiceDurationMonths      int               `json:"serviceDurationMonths"`
	AmountPaid                 int64             `json:"amountPaid"`
	RemainingAmount            int64             `json:"remainingAmount"`
	Status                     ContractStatus    `json:"status"`
	Notes                      string            `json:"notes,omitempty"`
	CreatedBy                  string            `json:"createdBy,omitempty"`
	PassportImages             []string          `json:"passportImages"`
	VisaImages                 []string          `json:"visaImages"`
	CompletedContractImages    []string          `json:"completedContractImages"`
	FamilyMembers              []FamilyMemberDTO `json:"familyMembers,omitempty"`
	CreatedAt                  string            `json:"createdAt"`
	UpdatedAt                  string            `json:"updatedAt"`
}

type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName,omitempty"`
	Role      UserRole  `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Pagination response wrapper
type PaginatedResponse struct {
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// OptionalDate distinguishes an absent JSON key from an explicit null.
// A set-but-null value clears the stored date; an absent key leaves it
// unchanged. Accepts YYYY-MM-DD and DD.MM.YYYY.
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

// UnmarshalJSON marks the date as present and parses the value.
func (d *OptionalDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	if bytes.Equal(data, []byte("null")) {
		d.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		d.Value = nil
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Value = &t
	return nil
}

// MarshalJSON renders the date as YYYY-MM-DD or null.
func (d OptionalDate) MarshalJSON() ([]byte, error) {
	if d.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d.Value.Format("2006-01-02"))
}

// ParseDate parses YYYY-MM-DD or DD.MM.YYYY date strings.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "02.01.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %q", s)
}

// Money is a currency amount in so'm. Form clients send amounts as digit
// strings with space or comma grouping ("1 200 000", "1,200,000"), so the
// unmarshal accepts both strings and plain JSON numbers.
type Money int64

// UnmarshalJSON parses a JSON number or a grouped digit string.
func (m *Money) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.Map(func(r rune) rune {
			switch r {
			case ' ', ',', ' ':
				return -1
			}
			return r
		}, s)
		if s == "" {
			*m = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", s)
		}
		*m = Money(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Money(v)
	return nil
}

// MarshalJSON renders the amount as a plain number.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(m))
}

// Request DTOs

type CreateLeadRequest struct {
	PhoneNumber  string      `json:"phoneNumber" validate:"required,max=30"`
	ClientName   string      `json:"clientName,omitempty" validate:"max=200"`
	OperatorID   *uuid.UUID  `json:"operatorId,omitempty"`
	CallStatus   *CallStatus `json:"callStatus,omitempty"`
	CallDuration *int        `json:"callDuration,omitempty" validate:"omitempty,gte=0"`
	Notes        string      `json:"notes,omitempty"`
	FollowUpDate *time.Time  `json:"followUpDate,omitempty"`
}

type UpdateLeadRequest struct {
	PhoneNumber  string      `json:"phoneNumber" validate:"required,max=30"`
	ClientName   string      `json:"clientName,omitempty" validate:"max=200"`
	OperatorID   *uuid.UUID  `json:"operatorId,omitempty"`
	CallStatus   *CallStatus `json:"callStatus,omitempty"`
	CallDuration *int        `json:"callDuration,omitempty" validate:"omitempty,gte=0"`
	Notes        string      `json:"notes,omitempty"`
	FollowUpDate *time.Time  `json:"followUpDate,omitempty"`
}

// QuickCreateLeadRequest captures a lead from just a phone number
type QuickCreateLeadRequest struct {
	PhoneNumber string     `json:"phoneNumber" validate:"required,max=30"`
	ClientName  string     `json:"clientName,omitempty" validate:"max=200"`
	OperatorID  *uuid.UUID `json:"operatorId,omitempty"`
}

// TransitionLeadRequest moves a lead to a pipeline stage, updating the
// driving fields the target stage implies.
type TransitionLeadRequest struct {
	StageKey     StageKey   `json:"stageKey" validate:"required"`
	FollowUpDate *time.Time `json:"followUpDate,omitempty"`
}

type CreateLeadStageRequest struct {
	Key         StageKey `json:"key" validate:"required,max=50"`
	Name        string   `json:"name" validate:"required,max=100"`
	Color       string   `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Description string   `json:"description,omitempty"`
	SortOrder   int      `json:"sortOrder,omitempty"`
}

type UpdateLeadStageRequest struct {
	Key         StageKey `json:"key,omitempty" validate:"omitempty,max=50"`
	Name        string   `json:"name" validate:"required,max=100"`
	Color       string   `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Description string   `json:"description,omitempty"`
	SortOrder   int      `json:"sortOrder,omitempty"`
}

type CreateOperatorRequest struct {
	FullName string `json:"fullName" validate:"required,max=200"`
}

type UpdateOperatorRequest struct {
	FullName string `json:"fullName" validate:"required,max=200"`
}

// ClientPayload is the nested client part of a contract write, also used for
// standalone client create/update. On upsert, non-empty values overwrite and
// empty ones are ignored, except BirthDate which applies whenever the key is
// present, including an explicit null.
type ClientPayload struct {
	FirstName          string       `json:"firstName" validate:"required,max=100"`
	LastName           string       `json:"lastName" validate:"required,max=100"`
	MiddleName         string       `json:"middleName,omitempty" validate:"max=100"`
	Phone              string       `json:"phone,omitempty" validate:"max=30"`
	Phone2             string       `json:"phone2,omitempty" validate:"max=30"`
	PassportNumber     string       `json:"passportNumber,omitempty" validate:"omitempty,passport_number"`
	PassportIssueDate  *string      `json:"passportIssueDate,omitempty"`
	PassportExpiryDate *string      `json:"passportExpiryDate,omitempty"`
	PassportIssuePlace string       `json:"passportIssuePlace,omitempty" validate:"max=200"`
	BirthDate          OptionalDate `json:"birthDate,omitempty"`
	Address            string       `json:"address,omitempty" validate:"max=500"`
	Email              string       `json:"email,omitempty" validate:"omitempty,email"`
	Password           string       `json:"password,omitempty" validate:"max=255"`
	Heard              string       `json:"heard,omitempty" validate:"max=200"`
}

type FamilyMemberPayload struct {
	Relationship       FamilyRelationship `json:"relationship" validate:"required"`
	FirstName          string             `json:"firstName" validate:"required,max=100"`
	LastName           string             `json:"lastName" validate:"required,max=100"`
	MiddleName         string             `json:"middleName,omitempty" validate:"max=100"`
	PassportNumber     string             `json:"passportNumber,omitempty" validate:"max=20"`
	PassportIssueDate  *string            `json:"passportIssueDate,omitempty"`
	PassportExpiryDate *string            `json:"passportExpiryDate,omitempty"`
	BirthDate          *string            `json:"birthDate,omitempty"`
	Phone              string             `json:"phone,omitempty" validate:"max=30"`
	Notes              string             `json:"notes,omitempty"`
}

// ContractPayload is the aggregate contract write request. Image lists carry
// either already-stored media paths or base64 data URLs; raw multipart
// uploads arrive through the handler and take priority over base64 entries.
type ContractPayload struct {
	ContractNumber             *int                  `json:"contractNumber,omitempty" validate:"omitempty,gt=0"`
	ContractDate               string                `json:"contractDate,omitempty"`
	ContractLocation           string                `json:"contractLocation,omitempty" validate:"max=200"`
	Client                     ClientPayload         `json:"client" validate:"required"`
	ServiceName                string                `json:"serviceName,omitempty" validate:"max=300"`
	ServiceCountry             string                `json:"serviceCountry,omitempty" validate:"max=100"`
	VisaType                   string                `json:"visaType,omitempty" validate:"max=100"`
	ServiceDescription         string                `json:"serviceDescription,omitempty"`
	TotalServiceFee            Money                 `json:"totalServiceFee,omitempty" validate:"gte=0"`
	InitialPaymentAmount       Money                 `json:"initialPaymentAmount,omitempty" validate:"gte=0"`
	InitialPaymentDueDays      *int                  `json:"initialPaymentDueDays,omitempty" validate:"omitempty,gt=0"`
	PostInterviewPaymentAmount *Money                `json:"postInterviewPaymentAmount,omitempty" validate:"omitempty,gte=0"`
	PostInterviewDueDays       *int                  `json:"postInterviewDueDays,omitempty" validate:"omitempty,gt=0"`
	RefundAmount               Money                 `json:"refundAmount,omitempty" validate:"gte=0"`
	ServiceDurationMonths      *int                  `json:"serviceDurationMonths,omitempty" validate:"omitempty,gt=0"`
	AmountPaid                 Money                 `json:"amountPaid,omitempty" validate:"gte=0"`
	Status                     ContractStatus        `json:"status,omitempty"`
	Notes                      string                `json:"notes,omitempty"`
	FamilyMembers              []FamilyMemberPayload `json:"familyMembers,omitempty" validate:"dive"`
	PassportImages             []string              `json:"passportImages,omitempty"`
	VisaImages                 []string              `json:"visaImages,omitempty"`
	CompletedContractImages    []string              `json:"completedContractImages,omitempty"`
}

// Auth DTOs

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

type CreateUserRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=100"`
	Password string   `json:"password" validate:"required,min=8"`
	FullName string   `json:"fullName,omitempty" validate:"max=200"`
	Role     UserRole `json:"role,omitempty"`
}

type UpdateUserRequest struct {
	FullName string   `json:"fullName,omitempty" validate:"max=200"`
	Role     UserRole `json:"role,omitempty"`
	IsActive *bool    `json:"isActive,omitempty"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// Dashboard DTOs

type RevenueSummaryDTO struct {
	Daily   int64 `json:"daily"`
	Weekly  int64 `json:"weekly"`
	Monthly int64 `json:"monthly"`
	Total   int64 `json:"total"`
}

type LabelCountDTO struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type DateCountDTO struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type DateAmountDTO struct {
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
}

type OverviewDashboardDTO struct {
	Revenue            RevenueSummaryDTO `json:"revenue"`
	ClientCount        int64             `json:"clientCount"`
	MonthClientCount   int64             `json:"monthClientCount"`
	ActiveContracts    int64             `json:"activeContracts"`
	CompletedContracts int64             `json:"completedContracts"`
	TotalDebt          int64             `json:"totalDebt"`
	DebtorCount        int64             `json:"debtorCount"`
	NonDebtorCount     int64             `json:"nonDebtorCount"`
	HeardBreakdown     []LabelCountDTO   `json:"heardBreakdown"`
	WeekClients        []DateCountDTO    `json:"weekClients"`
}

type ContractsDashboardDTO struct {
	DailyCreated    []DateCountDTO  `json:"dailyCreated"`
	ByStatus        []LabelCountDTO `json:"byStatus"`
	RevenueOverTime []DateAmountDTO `json:"revenueOverTime"`
	DebtorCount     int64           `json:"debtorCount"`
	NonDebtorCount  int64           `json:"nonDebtorCount"`
}

type LeadsDashboardDTO struct {
	Total          int64           `json:"total"`
	Converted      int64           `json:"converted"`
	ConversionRate float64         `json:"conversionRate"`
	ByStage        []LabelCountDTO `json:"byStage"`
	ByOperator     []LabelCountDTO `json:"byOperator"`
	ByCallStatus   []LabelCountDTO `json:"byCallStatus"`
	DailyCreated   []DateCountDTO  `json:"dailyCreated"`
}

// KanbanColumnDTO is one stage column on the pipeline board
type KanbanColumnDTO struct {
	Stage LeadStageDTO `json:"stage"`
	Leads []LeadDTO    `json:"leads"`
}
