package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/devzoku/devzoku-api/internal/lifecycle"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/outbox"
	"github.com/devzoku/devzoku-api/internal/repository"
	"github.com/devzoku/devzoku-api/internal/storage"
	"github.com/devzoku/devzoku-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// HackathonService handles hackathon creation and the read paths
type HackathonService struct {
	store       *repository.Store
	posters     storage.PosterStore
	dedupWindow time.Duration
	now         Clock
	log         *zap.Logger
}

// HackathonServiceConfig wires a HackathonService. Posters may be nil, in
// which case creation is unavailable.
type HackathonServiceConfig struct {
	Store       *repository.Store
	Posters     storage.PosterStore
	DedupWindow time.Duration
	Now         Clock
	Logger      *zap.Logger
}

// NewHackathonService creates a new HackathonService
func NewHackathonService(cfg HackathonServiceConfig) *HackathonService {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &HackathonService{
		store:       cfg.Store,
		posters:     cfg.Posters,
		dedupWindow: cfg.DedupWindow,
		now:         clockOrDefault(cfg.Now),
		log:         log.Named("hackathons"),
	}
}

// PhaseInput is one phase of a new hackathon. Order defaults to the
// position in the input list.
type PhaseInput struct {
	Name        string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Order       int
}

// PosterUpload is the poster file received with a new hackathon
type PosterUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreateHackathonInput represents input for creating a hackathon
type CreateHackathonInput struct {
	OrganizerID       uint64
	Title             string
	Description       string
	RegistrationStart time.Time
	RegistrationEnd   time.Time
	StartTime         time.Time
	EndTime           time.Time
	MinTeamSize       int
	MaxTeamSize       int
	Mode              models.HackathonMode
	Tags              []string
	Phases            []PhaseInput
	Poster            *PosterUpload
}

// ListHackathonsInput represents the filters for listing hackathons.
// Zero values mean "not filtered".
type ListHackathonsInput struct {
	Tags             []string
	Duration         string
	StartDate        *time.Time
	EndDate          *time.Time
	Status           string
	Mode             string
	OrganizerID      *uint64
	Mine             bool
	ShowParticipated bool
	Search           string
	Pagination       utils.PaginationParams
}

func (in ListHackathonsInput) hasFilters() bool {
	return len(in.Tags) > 0 || in.Duration != "" || in.StartDate != nil || in.EndDate != nil ||
		in.Status != "" || in.Mode != "" || in.OrganizerID != nil || in.Mine ||
		in.ShowParticipated || strings.TrimSpace(in.Search) != ""
}

// HackathonListItem is a hackathon with its derived status
type HackathonListItem struct {
	Hackathon models.Hackathon
	Status    lifecycle.Status
}

// HackathonDetail is a single hackathon with its derived status and, for
// the owning organizer, the applied teams.
type HackathonDetail struct {
	Hackathon models.Hackathon
	Status    lifecycle.Status
	Teams     []AppliedTeam
}

// AppliedTeam is one application with the team roster
type AppliedTeam struct {
	Application models.TeamHackathon
	Members     []models.TeamMember
}

func (s *HackathonService) validateCreate(input CreateHackathonInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrHackathonTitleRequired
	}
	if !input.Mode.IsValid() {
		return ErrInvalidMode
	}
	if input.MinTeamSize < 1 || input.MaxTeamSize < input.MinTeamSize {
		return ErrInvalidHackathonSize
	}

	now := s.now()
	for _, t := range []time.Time{input.RegistrationStart, input.RegistrationEnd, input.StartTime, input.EndTime} {
		if t.IsZero() || !t.After(now) {
			return ErrScheduleInPast
		}
	}
	if !input.RegistrationStart.Before(input.RegistrationEnd) {
		return ErrInvalidRegistration
	}
	if input.RegistrationEnd.After(input.StartTime) {
		return ErrRegistrationAfterStart
	}
	if !input.StartTime.Before(input.EndTime) {
		return ErrInvalidHackathonWindow
	}

	for _, p := range input.Phases {
		if strings.TrimSpace(p.Name) == "" || !p.StartTime.Before(p.EndTime) || !p.StartTime.After(now) {
			return ErrInvalidPhase
		}
		if p.StartTime.Before(input.RegistrationStart) || p.EndTime.After(input.EndTime) {
			return ErrInvalidPhase
		}
	}

	if input.Poster == nil || input.Poster.Body == nil {
		return ErrPosterRequired
	}
	if s.posters == nil {
		return ErrPosterStoreUnavailable
	}
	return nil
}

// CreateHackathon validates the schedule, uploads the poster and writes the
// hackathon, its phases and the organizer's event count in one transaction.
func (s *HackathonService) CreateHackathon(ctx context.Context, input CreateHackathonInput) (*models.Hackathon, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	exists, err := s.store.Hackathons.ExistsByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to check hackathon title: %w", err)
	}
	if exists {
		return nil, ErrHackathonTitleTaken
	}

	posterURL, err := s.posters.Upload(ctx, input.Poster.Filename, input.Poster.ContentType, input.Poster.Body, input.Poster.Size)
	if err != nil {
		s.log.Error("Poster upload failed", zap.String("filename", input.Poster.Filename), zap.Error(err))
		return nil, ErrPosterUploadFailed
	}

	tags := make([]string, 0, len(input.Tags))
	for _, t := range input.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	now := s.now()
	hackathon := &models.Hackathon{
		Title:             title,
		Description:       strings.TrimSpace(input.Description),
		RegistrationStart: input.RegistrationStart.UTC(),
		RegistrationEnd:   input.RegistrationEnd.UTC(),
		StartTime:         input.StartTime.UTC(),
		EndTime:           input.EndTime.UTC(),
		MinTeamSize:       input.MinTeamSize,
		MaxTeamSize:       input.MaxTeamSize,
		Mode:              input.Mode,
		Tags:              tags,
		Poster:            posterURL,
		CreatedBy:         input.OrganizerID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Hackathons.Create(ctx, hackathon); err != nil {
			return err
		}

		if len(input.Phases) > 0 {
			phases := make([]models.HackathonPhase, 0, len(input.Phases))
			for i, p := range input.Phases {
				order := p.Order
				if order <= 0 {
					order = i + 1
				}
				phases = append(phases, models.HackathonPhase{
					HackathonID: hackathon.ID,
					Name:        strings.TrimSpace(p.Name),
					Description: strings.TrimSpace(p.Description),
					StartTime:   p.StartTime.UTC(),
					EndTime:     p.EndTime.UTC(),
					PhaseOrder:  order,
				})
			}
			if err := tx.Hackathons.CreatePhases(ctx, phases); err != nil {
				return err
			}
			hackathon.Phases = phases
		}

		return tx.Profiles.IncrementHackathonsOrganized(ctx, input.OrganizerID)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrHackathonTitleTaken
		}
		return nil, fmt.Errorf("failed to create hackathon: %w", err)
	}

	return hackathon, nil
}

// ListHackathons returns one page of hackathons matching the filters. Date
// range, mode, organizer, title search and the participated set are pushed
// to the store. Tags, duration and status are applied afterwards.
func (s *HackathonService) ListHackathons(ctx context.Context, input ListHackathonsInput, caller *Caller) ([]HackathonListItem, int64, outbox.Intents, error) {
	if input.Duration != "" && !validDurationFilter(input.Duration) {
		return nil, 0, nil, ErrInvalidDurationFilter
	}
	if input.Status != "" && !lifecycle.Valid(input.Status) {
		return nil, 0, nil, ErrInvalidStatusFilter
	}

	filter := repository.HackathonFilter{
		Search:      input.Search,
		OrganizerID: input.OrganizerID,
		StartFrom:   input.StartDate,
		EndBy:       input.EndDate,
	}
	if input.Mode != "" {
		mode := models.HackathonMode(strings.ToLower(input.Mode))
		if !mode.IsValid() {
			return nil, 0, nil, ErrInvalidMode
		}
		filter.Mode = &mode
	}

	if input.Mine {
		if caller == nil {
			return nil, 0, nil, ErrLoginRequired
		}
		if !caller.IsOrganizer() {
			return nil, 0, nil, ErrOrganizerOnly
		}
		filter.OrganizerID = &caller.UserID
	}

	if input.ShowParticipated {
		if caller == nil {
			return nil, 0, nil, ErrLoginRequired
		}
		ids, err := s.participatedHackathonIDs(ctx, caller.UserID)
		if err != nil {
			return nil, 0, nil, err
		}
		if len(ids) == 0 {
			return []HackathonListItem{}, 0, s.searchIntent(input, caller), nil
		}
		filter.IDs = ids
	}

	hackathons, err := s.store.Hackathons.List(ctx, filter)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to list hackathons: %w", err)
	}

	now := s.now()
	items := make([]HackathonListItem, 0, len(hackathons))
	for _, h := range hackathons {
		if len(input.Tags) > 0 && !matchesAnyTag(h.Tags, input.Tags) {
			continue
		}
		if input.Duration != "" && !matchesDuration(input.Duration, h.Duration()) {
			continue
		}
		status := h.Status(now)
		if input.Status != "" && string(status) != input.Status {
			continue
		}
		items = append(items, HackathonListItem{Hackathon: h, Status: status})
	}

	total := int64(len(items))
	return utils.PageSlice(items, input.Pagination), total, s.searchIntent(input, caller), nil
}

func (s *HackathonService) participatedHackathonIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	teamIDs, err := s.store.Teams.ListTeamIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user teams: %w", err)
	}
	if len(teamIDs) == 0 {
		return nil, nil
	}
	ids, err := s.store.Applications.HackathonIDsByTeams(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list participated hackathons: %w", err)
	}
	return ids, nil
}

func (s *HackathonService) searchIntent(input ListHackathonsInput, caller *Caller) outbox.Intents {
	if caller == nil || !input.hasFilters() {
		return nil
	}

	query := map[string]any{}
	if len(input.Tags) > 0 {
		query["tags"] = input.Tags
	}
	if input.Duration != "" {
		query["duration"] = input.Duration
	}
	if input.StartDate != nil {
		query["startDate"] = input.StartDate.UTC()
	}
	if input.EndDate != nil {
		query["endDate"] = input.EndDate.UTC()
	}
	if input.Status != "" {
		query["status"] = input.Status
	}
	if input.Mode != "" {
		query["mode"] = input.Mode
	}
	if input.OrganizerID != nil {
		query["organizerId"] = *input.OrganizerID
	}
	if input.Mine {
		query["mine"] = true
	}
	if input.ShowParticipated {
		query["showParticipated"] = true
	}
	if search := strings.TrimSpace(input.Search); search != "" {
		query["search"] = search
	}

	raw, err := json.Marshal(query)
	if err != nil {
		s.log.Warn("Failed to encode search query", zap.Error(err))
		raw = nil
	}

	var intents outbox.Intents
	intents.Add(outbox.RecordInteraction{
		Interaction: models.UserInteraction{
			UserID:    caller.UserID,
			Type:      models.InteractionSearch,
			Tags:      input.Tags,
			Duration:  input.Duration,
			Mode:      input.Mode,
			Query:     datatypes.JSON(raw),
			CreatedAt: s.now(),
		},
	})
	return intents
}

// GetHackathon returns one hackathon. Developers leave a view interaction.
// withTeams returns the applied teams and is reserved for the organizer who
// created the hackathon.
func (s *HackathonService) GetHackathon(ctx context.Context, id uint64, caller *Caller, withTeams bool) (*HackathonDetail, outbox.Intents, error) {
	hackathon, err := s.store.Hackathons.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, ErrHackathonNotFound, "find hackathon")
	}

	detail := &HackathonDetail{
		Hackathon: *hackathon,
		Status:    hackathon.Status(s.now()),
		Teams:     []AppliedTeam{},
	}

	if withTeams {
		if !caller.IsOrganizer() || caller.UserID != hackathon.CreatedBy {
			return nil, nil, ErrNotHackathonOrganizer
		}
		teams, err := s.appliedTeams(ctx, s.store, hackathon.ID)
		if err != nil {
			return nil, nil, err
		}
		detail.Teams = teams
	}

	var intents outbox.Intents
	if caller.IsDeveloper() {
		hackathonID := hackathon.ID
		intents.Add(outbox.RecordInteraction{
			Interaction: models.UserInteraction{
				UserID:      caller.UserID,
				HackathonID: &hackathonID,
				Type:        models.InteractionView,
				Tags:        hackathon.Tags,
				Duration:    DurationBucket(hackathon.Duration()),
				Mode:        string(hackathon.Mode),
				CreatedAt:   s.now(),
			},
			DedupWindow: s.dedupWindow,
		})
	}

	return detail, intents, nil
}

func (s *HackathonService) appliedTeams(ctx context.Context, store *repository.Store, hackathonID uint64) ([]AppliedTeam, error) {
	applications, err := store.Applications.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	teamIDs := make([]uint64, 0, len(applications))
	for _, a := range applications {
		teamIDs = append(teamIDs, a.TeamID)
	}
	members, err := store.Teams.ListMembersOfTeams(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	byTeam := make(map[uint64][]models.TeamMember, len(teamIDs))
	for _, m := range members {
		byTeam[m.TeamID] = append(byTeam[m.TeamID], m)
	}

	teams := make([]AppliedTeam, 0, len(applications))
	for _, a := range applications {
		roster := byTeam[a.TeamID]
		if roster == nil {
			roster = []models.TeamMember{}
		}
		teams = append(teams, AppliedTeam{Application: a, Members: roster})
	}
	return teams, nil
}
