package dto

import (
	"time"

	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/services"
)

// TeamMemberDTO represents a member in a team roster
type TeamMemberDTO struct {
	User     UserDTO   `json:"user"`
	JoinedAt time.Time `json:"joinedAt"`
}

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID                      uint64          `json:"id"`
	Name                    string          `json:"name"`
	Description             string          `json:"description"`
	TeamSize                int             `json:"teamSize"`
	IsAcceptingInvites      bool            `json:"isAcceptingInvites"`
	SkillsNeeded            string          `json:"skillsNeeded"`
	CaptainID               uint64          `json:"captainId"`
	Captain                 *UserDTO        `json:"captain,omitempty"`
	PendingInvitesFromUsers []uint64        `json:"pendingInvitesFromUsers"`
	MemberCount             int             `json:"memberCount"`
	Members                 []TeamMemberDTO `json:"members,omitempty"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`
}

// NameAvailabilityDTO is the answer of the team name check
type NameAvailabilityDTO struct {
	IsUnique bool `json:"isUnique"`
	IsValid  bool `json:"isValid"`
}

// LeaveTeamDTO describes the team after a member left
type LeaveTeamDTO struct {
	TeamDeleted  bool    `json:"teamDeleted"`
	NewCaptainID *uint64 `json:"newCaptainId,omitempty"`
}

// Conversion functions

// ToTeamMemberDTO converts a membership to DTO
func ToTeamMemberDTO(member models.TeamMember) TeamMemberDTO {
	return TeamMemberDTO{
		User:     ToUserDTO(member.User),
		JoinedAt: member.JoinedAt,
	}
}

// ToTeamDTO converts a team to DTO. The roster is included when loaded.
func ToTeamDTO(team models.Team) TeamDTO {
	pending := []uint64(team.PendingInvitesFromUsers)
	if pending == nil {
		pending = []uint64{}
	}

	result := TeamDTO{
		ID:                      team.ID,
		Name:                    team.Name,
		Description:             team.Description,
		TeamSize:                team.TeamSize,
		IsAcceptingInvites:      team.IsAcceptingInvites,
		SkillsNeeded:            team.SkillsNeeded,
		CaptainID:               team.CaptainID,
		PendingInvitesFromUsers: pending,
		MemberCount:             len(team.Members),
		CreatedAt:               team.CreatedAt,
		UpdatedAt:               team.UpdatedAt,
	}

	if team.Captain.ID != 0 {
		captain := ToUserDTO(team.Captain)
		result.Captain = &captain
	}

	if len(team.Members) > 0 {
		result.Members = make([]TeamMemberDTO, len(team.Members))
		for i, m := range team.Members {
			result.Members[i] = ToTeamMemberDTO(m)
		}
	}

	return result
}

// ToTeamDTOs converts teams to DTOs
func ToTeamDTOs(teams []models.Team) []TeamDTO {
	dtos := make([]TeamDTO, len(teams))
	for i, t := range teams {
		dtos[i] = ToTeamDTO(t)
	}
	return dtos
}

// ToNameAvailabilityDTO converts a name check result to DTO
func ToNameAvailabilityDTO(a services.NameAvailability) NameAvailabilityDTO {
	return NameAvailabilityDTO{IsUnique: a.IsUnique, IsValid: a.IsValid}
}

// ToLeaveTeamDTO converts a leave result to DTO
func ToLeaveTeamDTO(r services.LeaveResult) LeaveTeamDTO {
	return LeaveTeamDTO{TeamDeleted: r.TeamDeleted, NewCaptainID: r.NewCaptainID}
}
