package dto

import (
	"time"

	"github.com/devzoku/devzoku-api/internal/lifecycle"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/services"
	"github.com/shopspring/decimal"
)

// PhaseDTO represents one hackathon phase
type PhaseDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Order       int       `json:"order"`
}

// HackathonDTO represents a hackathon in API responses. Teams is always a
// list and is only filled for the owning organizer.
type HackathonDTO struct {
	ID                uint64                  `json:"id"`
	Title             string                  `json:"title"`
	Description       string                  `json:"description"`
	RegistrationStart time.Time               `json:"registrationStart"`
	RegistrationEnd   time.Time               `json:"registrationEnd"`
	StartTime         time.Time               `json:"startTime"`
	EndTime           time.Time               `json:"endTime"`
	MinTeamSize       int                     `json:"minTeamSize"`
	MaxTeamSize       int                     `json:"maxTeamSize"`
	Mode              models.HackathonMode    `json:"mode"`
	Tags              []string                `json:"tags"`
	Poster            string                  `json:"poster"`
	CreatedBy         uint64                  `json:"createdBy"`
	OrganizerName     string                  `json:"organizerName,omitempty"`
	Status            lifecycle.Status        `json:"status"`
	PositionHolders   *models.PositionHolders `json:"positionHolders"`
	Phases            []PhaseDTO              `json:"phases"`
	Teams             []AppliedTeamDTO        `json:"teams"`
	CreatedAt         time.Time               `json:"createdAt"`
}

// ApplicationDTO represents a team's application to a hackathon
type ApplicationDTO struct {
	TeamID      uint64              `json:"teamId"`
	HackathonID uint64              `json:"hackathonId"`
	SubmittedAt time.Time           `json:"submittedAt"`
	Score       decimal.NullDecimal `json:"score"`
	Position    *models.Position    `json:"position"`
}

// AppliedTeamDTO is an application seen by the organizer
type AppliedTeamDTO struct {
	ApplicationDTO
	TeamName  string          `json:"teamName"`
	CaptainID uint64          `json:"captainId"`
	Members   []TeamMemberDTO `json:"members"`
}

// AdjudicationDTO is the result of marking winners
type AdjudicationDTO struct {
	Hackathon    HackathonDTO     `json:"hackathon"`
	Applications []ApplicationDTO `json:"applications"`
}

// Conversion functions

// ToPhaseDTO converts a phase to DTO
func ToPhaseDTO(phase models.HackathonPhase) PhaseDTO {
	return PhaseDTO{
		ID:          phase.ID,
		Name:        phase.Name,
		Description: phase.Description,
		StartTime:   phase.StartTime,
		EndTime:     phase.EndTime,
		Order:       phase.PhaseOrder,
	}
}

// ToHackathonDTO converts a hackathon and its derived status to DTO
func ToHackathonDTO(h models.Hackathon, status lifecycle.Status) HackathonDTO {
	tags := []string(h.Tags)
	if tags == nil {
		tags = []string{}
	}

	phases := make([]PhaseDTO, len(h.Phases))
	for i, p := range h.Phases {
		phases[i] = ToPhaseDTO(p)
	}

	return HackathonDTO{
		ID:                h.ID,
		Title:             h.Title,
		Description:       h.Description,
		RegistrationStart: h.RegistrationStart,
		RegistrationEnd:   h.RegistrationEnd,
		StartTime:         h.StartTime,
		EndTime:           h.EndTime,
		MinTeamSize:       h.MinTeamSize,
		MaxTeamSize:       h.MaxTeamSize,
		Mode:              h.Mode,
		Tags:              tags,
		Poster:            h.Poster,
		CreatedBy:         h.CreatedBy,
		OrganizerName:     h.Organizer.Name,
		Status:            status,
		PositionHolders:   h.Winners(),
		Phases:            phases,
		Teams:             []AppliedTeamDTO{},
		CreatedAt:         h.CreatedAt,
	}
}

// ToHackathonListDTOs converts listed hackathons to DTOs
func ToHackathonListDTOs(items []services.HackathonListItem) []HackathonDTO {
	dtos := make([]HackathonDTO, len(items))
	for i, item := range items {
		dtos[i] = ToHackathonDTO(item.Hackathon, item.Status)
	}
	return dtos
}

// ToHackathonDetailDTO converts a hackathon detail to DTO
func ToHackathonDetailDTO(detail services.HackathonDetail) HackathonDTO {
	result := ToHackathonDTO(detail.Hackathon, detail.Status)
	for _, t := range detail.Teams {
		result.Teams = append(result.Teams, ToAppliedTeamDTO(t))
	}
	return result
}

// ToApplicationDTO converts an application to DTO
func ToApplicationDTO(a models.TeamHackathon) ApplicationDTO {
	return ApplicationDTO{
		TeamID:      a.TeamID,
		HackathonID: a.HackathonID,
		SubmittedAt: a.SubmittedAt,
		Score:       a.Score,
		Position:    a.Position,
	}
}

// ToAppliedTeamDTO converts an applied team with its roster to DTO
func ToAppliedTeamDTO(t services.AppliedTeam) AppliedTeamDTO {
	members := make([]TeamMemberDTO, len(t.Members))
	for i, m := range t.Members {
		members[i] = ToTeamMemberDTO(m)
	}
	return AppliedTeamDTO{
		ApplicationDTO: ToApplicationDTO(t.Application),
		TeamName:       t.Application.Team.Name,
		CaptainID:      t.Application.Team.CaptainID,
		Members:        members,
	}
}

// ToAdjudicationDTO converts an adjudication result to DTO
func ToAdjudicationDTO(r services.AdjudicationResult) AdjudicationDTO {
	applications := make([]ApplicationDTO, len(r.Applications))
	for i, a := range r.Applications {
		applications[i] = ToApplicationDTO(a)
	}
	return AdjudicationDTO{
		Hackathon:    ToHackathonDTO(r.Hackathon, r.Status),
		Applications: applications,
	}
}
