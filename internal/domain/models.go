package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate fills the ID when the database default cannot, e.g. the
// sqlite development mode where gen_random_uuid() is unavailable.
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CallStatus represents the outcome of the last call attempt on a lead
type CallStatus string

const (
	CallStatusAnswered          CallStatus = "answered"
	CallStatusNotAnswered       CallStatus = "not_answered"
	CallStatusClientAnswered    CallStatus = "client_answered"
	CallStatusClientNotAnswered CallStatus = "client_not_answered"
)

// IsValid checks if the call status is a valid value
func (s CallStatus) IsValid() bool {
	switch s {
	case CallStatusAnswered, CallStatusNotAnswered, CallStatusClientAnswered, CallStatusClientNotAnswered:
		return true
	}
	return false
}

// StageKey identifies a pipeline stage. The six system keys are fixed;
// custom stages carry user-defined keys.
type StageKey string

const (
	StageAnswered          StageKey = "answered"
	StageNotAnswered       StageKey = "not_answered"
	StageClientAnswered    StageKey = "client_answered"
	StageClientNotAnswered StageKey = "client_not_answered"
	StageFollowUp          StageKey = "follow_up"
	StageConverted         StageKey = "converted"
)

// IsSystem reports whether the key is one of the six built-in stage keys.
func (k StageKey) IsSystem() bool {
	switch k {
	case StageAnswered, StageNotAnswered, StageClientAnswered, StageClientNotAnswered, StageFollowUp, StageConverted:
		return true
	}
	return false
}

// LeadStage is a pipeline position leads are tracked through.
// System stages cannot be deleted or have their key changed.
type LeadStage struct {
	BaseModel
	Key           StageKey `gorm:"type:varchar(50);not null;uniqueIndex;column:key"`
	Name          string   `gorm:"type:varchar(100);not null"`
	Color         string   `gorm:"type:varchar(20);not null;default:'#007bff'"`
	Description   string   `gorm:"type:text"`
	SortOrder     int      `gorm:"not null;default:0;column:sort_order"`
	IsSystemStage bool     `gorm:"not null;default:false;column:is_system_stage"`
}

func (LeadStage) TableName() string {
	return "lead_stages"
}

// CallOperator is a phone operator leads are assigned to
type CallOperator struct {
	BaseModel
	FullName string `gorm:"type:varchar(200);not null;column:full_name"`
}

func (CallOperator) TableName() string {
	return "call_operators"
}

// Lead is an inbound prospective-customer contact tracked through the pipeline.
// Stage is denormalized pipeline state; the service layer keeps it in sync with
// the driving fields (call status, follow-up date, conversion flag) on every write.
type Lead struct {
	BaseModel
	PhoneNumber       string             `gorm:"type:varchar(30);not null;index;column:phone_number"`
	ClientName        string             `gorm:"type:varchar(200);column:client_name"`
	OperatorID        *uuid.UUID         `gorm:"type:uuid;index;column:operator_id"`
	Operator          *CallOperator      `gorm:"foreignKey:OperatorID"`
	CallStatus        *CallStatus        `gorm:"type:varchar(50);column:call_status"`
	CallDuration      *int               `gorm:"column:call_duration"`
	Notes             string             `gorm:"type:text"`
	AudioPath         string             `gorm:"type:varchar(500);column:audio_path"`
	FollowUpDate      *time.Time         `gorm:"column:follow_up_date"`
	IsConverted       bool               `gorm:"not null;default:false;column:is_converted"`
	ConvertedClientID *uuid.UUID         `gorm:"type:uuid;column:converted_client_id"`
	ConvertedClient   *ClientInformation `gorm:"foreignKey:ConvertedClientID"`
	StageID           *uuid.UUID         `gorm:"type:uuid;index;column:stage_id"`
	Stage             *LeadStage         `gorm:"foreignKey:StageID"`
}

func (Lead) TableName() string {
	return "leads"
}

// DurationDisplay formats the call duration as HH:MM:SS, or an empty
// string when no duration is recorded.
func (l *Lead) DurationDisplay() string {
	if l.CallDuration == nil {
		return ""
	}
	d := *l.CallDuration
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", d/3600, (d%3600)/60, d%60)
}

// ClientInformation holds identity and contact details for a converted client
type ClientInformation struct {
	BaseModel
	FirstName          string     `gorm:"type:varchar(100);not null;index;column:first_name"`
	LastName           string     `gorm:"type:varchar(100);not null;index;column:last_name"`
	MiddleName         string     `gorm:"type:varchar(100);column:middle_name"`
	FullName           string     `gorm:"type:varchar(300);not null;index;column:full_name"`
	Phone              string     `gorm:"type:varchar(30);index"`
	Phone2             string     `gorm:"type:varchar(30);column:phone2"`
	PassportNumber     string     `gorm:"type:varchar(20);index;column:passport_number"`
	PassportIssueDate  *time.Time `gorm:"column:passport_issue_date"`
	PassportExpiryDate *time.Time `gorm:"column:passport_expiry_date"`
	PassportIssuePlace string     `gorm:"type:varchar(200);column:passport_issue_place"`
	BirthDate          *time.Time `gorm:"column:birth_date"`
	Address            string     `gorm:"type:varchar(500)"`
	Email              string     `gorm:"type:varchar(255)"`
	Password           string     `gorm:"type:varchar(255)"`
	Heard              string     `gorm:"type:varchar(200);not null;default:''"`
}

func (ClientInformation) TableName() string {
	return "client_information"
}

// ComposeFullName derives the persisted full name from the name parts:
// last name first, then first name, then middle name when present.
func (c *ClientInformation) ComposeFullName() string {
	parts := []string{}
	if c.LastName != "" {
		parts = append(parts, c.LastName)
	}
	if c.FirstName != "" {
		parts = append(parts, c.FirstName)
	}
	if c.MiddleName != "" {
		parts = append(parts, c.MiddleName)
	}
	return strings.Join(parts, " ")
}

// ContractStatus represents the lifecycle state of a consulting contract
type ContractStatus string

const (
	ContractStatusDraft       ContractStatus = "draft"
	ContractStatusPreparation ContractStatus = "preparation"
	ContractStatusSubmitted   ContractStatus = "submitted"
	ContractStatusCompleted   ContractStatus = "completed"
	ContractStatusCancelled   ContractStatus = "cancelled"
)

// IsValid checks if the contract status is a valid value
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusPreparation, ContractStatusSubmitted, ContractStatusCompleted, ContractStatusCancelled:
		return true
	}
	return false
}

// ConsultingContract is the billable service agreement for a converted client
type ConsultingContract struct {
	BaseModel
	ContractNumber             int                    `gorm:"not null;uniqueIndex;column:contract_number"`
	ContractDate               time.Time              `gorm:"not null;column:contract_date"`
	ContractLocation           string                 `gorm:"type:varchar(200);not null;default:'Xiva';column:contract_location"`
	ClientID                   uuid.UUID              `gorm:"type:uuid;not null;index;column:client_id"`
	Client                     *ClientInformation     `gorm:"foreignKey:ClientID"`
	ServiceName                string                 `gorm:"type:varchar(300);not null;column:service_name"`
	ServiceCountry             string                 `gorm:"type:varchar(100);not null;default:'Angliya';column:service_country"`
	VisaType                   string                 `gorm:"type:varchar(100);not null;column:visa_type"`
	ServiceDescription         string                 `gorm:"type:text;column:service_description"`
	TotalServiceFee            int64                  `gorm:"not null;default:0;column:total_service_fee"`
	InitialPaymentAmount       int64                  `gorm:"not null;default:0;column:initial_payment_amount"`
	InitialPaymentDueDays      int                    `gorm:"not null;default:3;column:initial_payment_due_days"`
	PostInterviewPaymentAmount int64                  `gorm:"not null;default:0;column:post_interview_payment_amount"`
	PostInterviewDueDays       int                    `gorm:"not null;default:3;column:post_interview_due_days"`
	RefundAmount               int64                  `gorm:"not null;default:0;column:refund_amount"`
	ServiceDurationMonths      int                    `gorm:"not null;default:8;column:service_duration_months"`
	AmountPaid                 int64                  `gorm:"not null;default:0;column:amount_paid"`
	Status                     ContractStatus         `gorm:"type:varchar(50);not null;index;default:'preparation'"`
	Notes                      string                 `gorm:"type:text"`
	CreatedBy                  string                 `gorm:"type:varchar(200);column:created_by"`
	PassportImages             pq.StringArray         `gorm:"type:text[];column:passport_images"`
	VisaImages                 pq.StringArray         `gorm:"type:text[];column:visa_images"`
	CompletedContractImages    pq.StringArray         `gorm:"type:text[];column:completed_contract_images"`
	FamilyMembers              []ContractFamilyMember `gorm:"foreignKey:ContractID"`
}

func (ConsultingContract) TableName() string {
	return "consulting_contracts"
}

// RemainingAmount is the outstanding balance, never negative.
func (c *ConsultingContract) RemainingAmount() int64 {
	if rem := c.TotalServiceFee - c.AmountPaid; rem > 0 {
		return rem
	}
	return 0
}

// FamilyRelationship represents the relation of a family member to the client
type FamilyRelationship string

const (
	RelationshipFather   FamilyRelationship = "father"
	RelationshipMother   FamilyRelationship = "mother"
	RelationshipSon      FamilyRelationship = "son"
	RelationshipDaughter FamilyRelationship = "daughter"
	RelationshipSpouse   FamilyRelationship = "spouse"
	RelationshipBrother  FamilyRelationship = "brother"
	RelationshipSister   FamilyRelationship = "sister"
	RelationshipOther    FamilyRelationship = "other"
)

// IsValid checks if the relationship is a valid value
func (r FamilyRelationship) IsValid() bool {
	switch r {
	case RelationshipFather, RelationshipMother, RelationshipSon, RelationshipDaughter,
		RelationshipSpouse, RelationshipBrother, RelationshipSister, RelationshipOther:
		return true
	}
	return false
}

// ContractFamilyMember is owned exclusively by one contract. The full set is
// deleted and recreated on every contract update, never diffed.
type ContractFamilyMember struct {
	BaseModel
	ContractID         uuid.UUID          `gorm:"type:uuid;not null;index;column:contract_id"`
	Relationship       FamilyRelationship `gorm:"type:varchar(50);not null"`
	FirstName          string             `gorm:"type:varchar(100);not null;column:first_name"`
	LastName           string             `gorm:"type:varchar(100);not null;column:last_name"`
	MiddleName         string             `gorm:"type:varchar(100);column:middle_name"`
	FullName           string             `gorm:"type:varchar(300);not null;column:full_name"`
	PassportNumber     string             `gorm:"type:varchar(20);column:passport_number"`
	PassportIssueDate  *time.Time         `gorm:"column:passport_issue_date"`
	PassportExpiryDate *time.Time         `gorm:"column:passport_expiry_date"`
	BirthDate          *time.Time         `gorm:"column:birth_date"`
	Phone              string             `gorm:"type:varchar(30)"`
	Notes              string             `gorm:"type:text"`
}

func (ContractFamilyMember) TableName() string {
	return "contract_family_members"
}

// ComposeFullName derives the persisted full name from the name parts.
func (m *ContractFamilyMember) ComposeFullName() string {
	parts := []string{}
	if m.LastName != "" {
		parts = append(parts, m.LastName)
	}
	if m.FirstName != "" {
		parts = append(parts, m.FirstName)
	}
	if m.MiddleName != "" {
		parts = append(parts, m.MiddleName)
	}
	return strings.Join(parts, " ")
}

// BotLanguage represents the Telegram bot interface language
type BotLanguage string

const (
	BotLanguageUzLatin    BotLanguage = "uz_latin"
	BotLanguageUzCyrillic BotLanguage = "uz_cyrillic"
	BotLanguageRussian    BotLanguage = "russian"
)

// IsValid checks if the language is a valid value
func (l BotLanguage) IsValid() bool {
	switch l {
	case BotLanguageUzLatin, BotLanguageUzCyrillic, BotLanguageRussian:
		return true
	}
	return false
}

// BotUser is a Telegram user registered with the bot
type BotUser struct {
	BaseModel
	TelegramID int64       `gorm:"not null;uniqueIndex;column:telegram_id"`
	FirstName  string      `gorm:"type:varchar(200);column:first_name"`
	Language   BotLanguage `gorm:"type:varchar(20);not null;default:'uz_latin'"`
}

func (BotUser) TableName() string {
	return "bot_users"
}

// UserRole represents an API user's authorization role
type UserRole string

const (
	RoleStaff    UserRole = "staff"
	RoleCEOAdmin UserRole = "ceoadmin"
)

// IsValid checks if the role is a valid value
func (r UserRole) IsValid() bool {
	return r == RoleStaff || r == RoleCEOAdmin
}

// User is a back-office account used for API authentication
type User struct {
	BaseModel
	Username     string   `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash string   `gorm:"type:varchar(255);not null;column:password_hash"`
	FullName     string   `gorm:"type:varchar(200);column:full_name"`
	Role         UserRole `gorm:"type:varchar(50);not null;default:'staff'"`
	IsActive     bool     `gorm:"not null;default:true;column:is_active"`
}

func (User) TableName() string {
	return "users"
}
