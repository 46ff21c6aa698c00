package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devzoku/devzoku-api/internal/dto"
	apierrors "github.com/devzoku/devzoku-api/internal/errors"
	"github.com/devzoku/devzoku-api/internal/middleware"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/services"
	"github.com/devzoku/devzoku-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// HackathonHandler serves hackathon, application and adjudication endpoints
type HackathonHandler struct {
	hackathons   *services.HackathonService
	applications *services.ApplicationService
	adjudication *services.AdjudicationService
	dispatcher   IntentDispatcher
}

// NewHackathonHandler creates a new HackathonHandler
func NewHackathonHandler(
	hackathons *services.HackathonService,
	applications *services.ApplicationService,
	adjudication *services.AdjudicationService,
	dispatcher IntentDispatcher,
) *HackathonHandler {
	return &HackathonHandler{
		hackathons:   hackathons,
		applications: applications,
		adjudication: adjudication,
		dispatcher:   dispatcher,
	}
}

// CreateHackathonForm is the multipart form of create-hackathon. Tags is a
// comma separated list or a JSON array, and Phases is a JSON array.
type CreateHackathonForm struct {
	Title             string `form:"title" binding:"required,notblank,max=255"`
	Description       string `form:"description"`
	RegistrationStart string `form:"registrationStart" binding:"required"`
	RegistrationEnd   string `form:"registrationEnd" binding:"required"`
	StartTime         string `form:"startTime" binding:"required"`
	EndTime           string `form:"endTime" binding:"required"`
	MinTeamSize       int    `form:"minTeamSize" binding:"required,gte=1"`
	MaxTeamSize       int    `form:"maxTeamSize" binding:"required,gte=1"`
	Mode              string `form:"mode" binding:"required,hackmode"`
	Tags              string `form:"tags"`
	Phases            string `form:"phases"`
}

type phaseForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Order       int    `json:"order"`
}

// ApplyRequest is the body of apply-to-hackathon
type ApplyRequest struct {
	HackathonID uint64 `json:"hackathonId" binding:"required,gte=1"`
	TeamID      uint64 `json:"teamId" binding:"required,gte=1"`
}

// WinnersRequest names the teams holding each position
type WinnersRequest struct {
	Winner         *uint64 `json:"winner" binding:"required"`
	FirstRunnerUp  *uint64 `json:"firstRunnerUp"`
	SecondRunnerUp *uint64 `json:"secondRunnerUp"`
}

// MarkWinnersRequest is the body of mark-winners
type MarkWinnersRequest struct {
	HackathonID uint64         `json:"hackathonId" binding:"required,gte=1"`
	Winners     WinnersRequest `json:"winners"`
}

func splitTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err == nil {
			return tags
		}
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func parseOptionalTime(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := utils.ParseTime(raw)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+key)
		return nil, false
	}
	return &t, true
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

// ViewAllHackathons lists hackathons matching the query filters
func (h *HackathonHandler) ViewAllHackathons(c *gin.Context) {
	input := services.ListHackathonsInput{
		Tags:             splitTags(strings.Join(c.QueryArray("tags"), ",")),
		Duration:         c.Query("duration"),
		Status:           c.Query("status"),
		Mode:             c.Query("mode"),
		Mine:             queryBool(c, "mine"),
		ShowParticipated: queryBool(c, "showParticipated"),
		Search:           c.Query("search"),
		Pagination:       utils.GetPaginationParams(c),
	}

	var ok bool
	if input.StartDate, ok = parseOptionalTime(c, "startDate"); !ok {
		return
	}
	if input.EndDate, ok = parseOptionalTime(c, "endDate"); !ok {
		return
	}
	if raw := c.Query("organizerId"); raw != "" {
		organizerID, ok := parseID(raw)
		if !ok {
			apierrors.BadRequest(c, "Invalid organizerId")
			return
		}
		input.OrganizerID = &organizerID
	}

	items, total, intents, err := h.hackathons.ListHackathons(c.Request.Context(), input, middleware.GetCaller(c))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	h.dispatcher.Go(c.Request.Context(), intents)

	respond(c, http.StatusOK, dto.NewListResponse(dto.ToHackathonListDTOs(items), input.Pagination, total), "Hackathons fetched successfully")
}

// ViewHackathon returns one hackathon
func (h *HackathonHandler) ViewHackathon(c *gin.Context) {
	hackathonID, ok := parseID(c.Param("id"))
	if !ok {
		apierrors.BadRequest(c, "Invalid hackathon ID")
		return
	}

	detail, intents, err := h.hackathons.GetHackathon(c.Request.Context(), hackathonID, middleware.GetCaller(c), queryBool(c, "withTeams"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	h.dispatcher.Go(c.Request.Context(), intents)

	respond(c, http.StatusOK, dto.ToHackathonDetailDTO(*detail), "Hackathon fetched successfully")
}

// CreateHackathon creates a hackathon from a multipart form with a poster
func (h *HackathonHandler) CreateHackathon(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var form CreateHackathonForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, err)
		return
	}

	input := services.CreateHackathonInput{
		OrganizerID: caller.UserID,
		Title:       form.Title,
		Description: form.Description,
		MinTeamSize: form.MinTeamSize,
		MaxTeamSize: form.MaxTeamSize,
		Mode:        models.HackathonMode(form.Mode),
		Tags:        splitTags(form.Tags),
	}

	schedule := []struct {
		name  string
		raw   string
		value *time.Time
	}{
		{"registrationStart", form.RegistrationStart, &input.RegistrationStart},
		{"registrationEnd", form.RegistrationEnd, &input.RegistrationEnd},
		{"startTime", form.StartTime, &input.StartTime},
		{"endTime", form.EndTime, &input.EndTime},
	}
	for _, field := range schedule {
		t, err := utils.ParseTime(field.raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid "+field.name)
			return
		}
		*field.value = t
	}

	if strings.TrimSpace(form.Phases) != "" {
		var phases []phaseForm
		if err := json.Unmarshal([]byte(form.Phases), &phases); err != nil {
			apierrors.BadRequest(c, "Invalid phases")
			return
		}
		for _, p := range phases {
			start, err := utils.ParseTime(p.StartTime)
			if err != nil {
				apierrors.BadRequest(c, "Invalid phase startTime")
				return
			}
			end, err := utils.ParseTime(p.EndTime)
			if err != nil {
				apierrors.BadRequest(c, "Invalid phase endTime")
				return
			}
			input.Phases = append(input.Phases, services.PhaseInput{
				Name:        p.Name,
				Description: p.Description,
				StartTime:   start,
				EndTime:     end,
				Order:       p.Order,
			})
		}
	}

	if fileHeader, err := c.FormFile("poster"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			apierrors.BadRequest(c, "Unreadable poster")
			return
		}
		defer file.Close()

		input.Poster = &services.PosterUpload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
			Body:        file,
		}
	}

	hackathon, err := h.hackathons.CreateHackathon(c.Request.Context(), input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusCreated, dto.ToHackathonDTO(*hackathon, hackathon.Status(time.Now().UTC())), "Hackathon created successfully")
}

// ApplyToHackathon applies the caller's team to a hackathon
func (h *HackathonHandler) ApplyToHackathon(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req ApplyRequest
	if !bindJSON(c, &req) {
		return
	}

	application, intents, err := h.applications.Apply(c.Request.Context(), req.HackathonID, req.TeamID, caller.UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	h.dispatcher.Go(c.Request.Context(), intents)

	respond(c, http.StatusCreated, dto.ToApplicationDTO(*application), "Applied to hackathon successfully")
}

// MarkWinners records the results of a hackathon
func (h *HackathonHandler) MarkWinners(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req MarkWinnersRequest
	if !bindJSON(c, &req) {
		return
	}

	result, intents, err := h.adjudication.MarkWinners(c.Request.Context(), req.HackathonID, models.PositionHolders{
		Winner:         req.Winners.Winner,
		FirstRunnerUp:  req.Winners.FirstRunnerUp,
		SecondRunnerUp: req.Winners.SecondRunnerUp,
	}, caller.UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	h.dispatcher.Go(c.Request.Context(), intents)

	respond(c, http.StatusOK, dto.ToAdjudicationDTO(*result), "Winners marked successfully")
}
