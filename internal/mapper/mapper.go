package mapper

import (
	"time"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"
const dateLayout = "2006-01-02"

// ToLeadStageDTO converts LeadStage to LeadStageDTO
func ToLeadStageDTO(stage *domain.LeadStage) domain.LeadStageDTO {
	return domain.LeadStageDTO{
		ID:            stage.ID,
		Key:           stage.Key,
		Name:          stage.Name,
		Color:         stage.Color,
		Description:   stage.Description,
		SortOrder:     stage.SortOrder,
		IsSystemStage: stage.IsSystemStage,
		CreatedAt:     stage.CreatedAt.Format(timeLayout),
		UpdatedAt:     stage.UpdatedAt.Format(timeLayout),
	}
}

// ToOperatorDTO converts CallOperator to OperatorDTO
func ToOperatorDTO(operator *domain.CallOperator) domain.OperatorDTO {
	return domain.OperatorDTO{
		ID:        operator.ID,
		FullName:  operator.FullName,
		CreatedAt: operator.CreatedAt.Format(timeLayout),
		UpdatedAt: operator.UpdatedAt.Format(timeLayout),
	}
}

// ToLeadDTO converts Lead to LeadDTO
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	dto := domain.LeadDTO{
		ID:                lead.ID,
		PhoneNumber:       lead.PhoneNumber,
		ClientName:        lead.ClientName,
		OperatorID:        lead.OperatorID,
		CallStatus:        lead.CallStatus,
		CallDuration:      lead.CallDuration,
		DurationDisplay:   lead.DurationDisplay(),
		Notes:             lead.Notes,
		AudioPath:         lead.AudioPath,
		IsConverted:       lead.IsConverted,
		ConvertedClientID: lead.ConvertedClientID,
		StageID:           lead.StageID,
		CreatedAt:         lead.CreatedAt.Format(timeLayout),
		UpdatedAt:         lead.UpdatedAt.Format(timeLayout),
	}

	if lead.FollowUpDate != nil {
		s := lead.FollowUpDate.Format(timeLayout)
		dto.FollowUpDate = &s
	}
	if lead.Operator != nil {
		dto.OperatorName = lead.Operator.FullName
	}
	if lead.Stage != nil {
		dto.StageKey = lead.Stage.Key
		dto.StageName = lead.Stage.Name
		dto.StageColor = lead.Stage.Color
	}

	return dto
}

// ToLeadDTOs converts a slice of leads
func ToLeadDTOs(leads []domain.Lead) []domain.LeadDTO {
	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = ToLeadDTO(&leads[i])
	}
	return dtos
}

// ToClientDTO converts ClientInformation to ClientDTO
func ToClientDTO(client *domain.ClientInformation) domain.ClientDTO {
	dto := domain.ClientDTO{
		ID:                 client.ID,
		FirstName:          client.FirstName,
		LastName:           client.LastName,
		MiddleName:         client.MiddleName,
		FullName:           client.FullName,
		Phone:              client.Phone,
		Phone2:             client.Phone2,
		PassportNumber:     client.PassportNumber,
		PassportIssuePlace: client.PassportIssuePlace,
		Address:            client.Address,
		Email:              client.Email,
		Heard:              client.Heard,
		CreatedAt:          client.CreatedAt.Format(timeLayout),
		UpdatedAt:          client.UpdatedAt.Format(timeLayout),
	}

	dto.PassportIssueDate = formatDatePtr(client.PassportIssueDate)
	dto.PassportExpiryDate = formatDatePtr(client.PassportExpiryDate)
	dto.BirthDate = formatDatePtr(client.BirthDate)

	return dto
}

// ToFamilyMemberDTO converts ContractFamilyMember to FamilyMemberDTO
func ToFamilyMemberDTO(member *domain.ContractFamilyMember) domain.FamilyMemberDTO {
	dto := domain.FamilyMemberDTO{
		ID:             member.ID,
		ContractID:     member.ContractID,
		Relationship:   member.Relationship,
		FirstName:      member.FirstName,
		LastName:       member.LastName,
		MiddleName:     member.MiddleName,
		FullName:       member.ComposeFullName(),
		PassportNumber: member.PassportNumber,
		Phone:          member.Phone,
		Notes:          member.Notes,
	}

	dto.PassportIssueDate = formatDatePtr(member.PassportIssueDate)
	dto.PassportExpiryDate = formatDatePtr(member.PassportExpiryDate)
	dto.BirthDate = formatDatePtr(member.BirthDate)

	return dto
}

// ToContractDTO converts ConsultingContract to ContractDTO
func ToContractDTO(contract *domain.ConsultingContract) domain.ContractDTO {
	dto := domain.ContractDTO{
		ID:                         contract.ID,
		ContractNumber:             contract.ContractNumber,
		ContractDate:               contract.ContractDate.Format(dateLayout),
		ContractLocation:           contract.ContractLocation,
		ClientID:                   contract.ClientID,
		ServiceName:                contract.ServiceName,
		ServiceCountry:             contract.ServiceCountry,
		VisaType:                   contract.VisaType,
		ServiceDescription:         contract.ServiceDescription,
		TotalServiceFee:            contract.TotalServiceFee,
		InitialPaymentAmount:       contract.InitialPaymentAmount,
		InitialPaymentDueDays:      contract.InitialPaymentDueDays,
		PostInterviewPaymentAmount: contract.PostInterviewPaymentAmount,
		PostInterviewDueDays:       contract.PostInterviewDueDays,
		RefundAmount:               contract.RefundAmount,
		ServiceDurationMonths:      contract.ServiceDurationMonths,
		AmountPaid:                 contract.AmountPaid,
		RemainingAmount:            contract.RemainingAmount(),
		Status:                     contract.Status,
		Notes:                      contract.Notes,
		CreatedBy:                  contract.CreatedBy,
		PassportImages:             stringList(contract.PassportImages),
		VisaImages:                 stringList(contract.VisaImages),
		CompletedContractImages:    stringList(contract.CompletedContractImages),
		CreatedAt:                  contract.CreatedAt.Format(timeLayout),
		UpdatedAt:                  contract.UpdatedAt.Format(timeLayout),
	}

	if contract.Client != nil {
		client := ToClientDTO(contract.Client)
		dto.Client = &client
	}

	for i := range contract.FamilyMembers {
		dto.FamilyMembers = append(dto.FamilyMembers, ToFamilyMemberDTO(&contract.FamilyMembers[i]))
	}

	return dto
}

// ToContractDTOs converts a slice of contracts
func ToContractDTOs(contracts []domain.ConsultingContract) []domain.ContractDTO {
	dtos := make([]domain.ContractDTO, len(contracts))
	for i := range contracts {
		dtos[i] = ToContractDTO(&contracts[i])
	}
	return dtos
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(timeLayout),
		UpdatedAt: user.UpdatedAt.Format(timeLayout),
	}
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// stringList guarantees JSON renders an array, never null
func stringList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
