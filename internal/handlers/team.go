package handlers

import (
	"net/http"

	"github.com/devzoku/devzoku-api/internal/dto"
	apierrors "github.com/devzoku/devzoku-api/internal/errors"
	"github.com/devzoku/devzoku-api/internal/services"
	"github.com/devzoku/devzoku-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// TeamHandler serves team and invitation endpoints
type TeamHandler struct {
	teams       *services.TeamService
	invitations *services.InvitationService
	dispatcher  IntentDispatcher
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(teams *services.TeamService, invitations *services.InvitationService, dispatcher IntentDispatcher) *TeamHandler {
	return &TeamHandler{
		teams:       teams,
		invitations: invitations,
		dispatcher:  dispatcher,
	}
}

// CreateTeamRequest is the body of create-team
type CreateTeamRequest struct {
	Name               string `json:"name" binding:"required,notblank,min=3,max=50"`
	Description        string `json:"description" binding:"max=2000"`
	TeamSize           int    `json:"teamSize" binding:"required,gte=1,lte=20"`
	IsAcceptingInvites *bool  `json:"isAcceptingInvites"`
	SkillsNeeded       string `json:"skillsNeeded" binding:"max=1000"`
}

// TeamIDRequest is the body of send-invitation and leave-team
type TeamIDRequest struct {
	TeamID uint64 `json:"teamId" binding:"required,gte=1"`
}

// CreateTeam creates a team led by the caller
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	accepting := true
	if req.IsAcceptingInvites != nil {
		accepting = *req.IsAcceptingInvites
	}

	team, err := h.teams.CreateTeam(c.Request.Context(), services.CreateTeamInput{
		Name:               req.Name,
		Description:        req.Description,
		TeamSize:           req.TeamSize,
		IsAcceptingInvites: accepting,
		SkillsNeeded:       req.SkillsNeeded,
		CreatorID:          caller.UserID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusCreated, dto.ToTeamDTO(*team), "Team created successfully")
}

// CheckTeamName reports whether a team name can be used
func (h *TeamHandler) CheckTeamName(c *gin.Context) {
	availability, err := h.teams.CheckNameAvailable(c.Request.Context(), c.Query("teamName"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	message := "Team name is available"
	switch {
	case !availability.IsValid:
		message = "Team name must be between 3 and 50 characters"
	case !availability.IsUnique:
		message = "Team name is already taken"
	}
	respond(c, http.StatusOK, dto.ToNameAvailabilityDTO(availability), message)
}

// JoinedTeams lists the caller's teams with their rosters
func (h *TeamHandler) JoinedTeams(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	teams, err := h.teams.ListJoinedTeams(c.Request.Context(), caller.UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, dto.ToTeamDTOs(teams), "Joined teams fetched successfully")
}

// ViewTeams lists all teams, or returns one team when an ID is given
func (h *TeamHandler) ViewTeams(c *gin.Context) {
	if raw := c.Param("id"); raw != "" {
		teamID, ok := parseID(raw)
		if !ok {
			apierrors.BadRequest(c, "Invalid team ID")
			return
		}
		team, err := h.teams.GetTeam(c.Request.Context(), teamID)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		respond(c, http.StatusOK, []dto.TeamDTO{dto.ToTeamDTO(*team)}, "Team fetched successfully")
		return
	}

	params := utils.GetPaginationParams(c)
	teams, total, err := h.teams.ListTeams(c.Request.Context(), params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, dto.NewListResponse(dto.ToTeamDTOs(teams), params, total), "Teams fetched successfully")
}

// SendInvitation asks to join a team
func (h *TeamHandler) SendInvitation(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req TeamIDRequest
	if !bindJSON(c, &req) {
		return
	}

	team, intents, err := h.invitations.RequestToJoin(c.Request.Context(), req.TeamID, caller.UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	h.dispatcher.Go(c.Request.Context(), intents)

	respond(c, http.StatusOK, dto.ToTeamDTO(*team), "Invitation sent successfully")
}

// FetchInvitesOrAccept lists pending requests, or accepts one when
// pendingUserId is given
func (h *TeamHandler) FetchInvitesOrAccept(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	teamID, ok := parseID(c.Param("teamId"))
	if !ok {
		apierrors.BadRequest(c, "Invalid team ID")
		return
	}

	rawPending := c.Query("pendingUserId")
	if rawPending == "" {
		users, err := h.invitations.ListPendingInvites(c.Request.Context(), teamID, caller.UserID)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		respond(c, http.StatusOK, dto.ToUserDTOs(users), "Pending invitations fetched successfully")
		return
	}

	pendingUserID, ok := parseID(rawPending)
	if !ok {
		apierrors.BadRequest(c, "Invalid pendingUserId")
		return
	}

	team, intents, err := h.invitations.AcceptInvite(c.Request.Context(), teamID, pendingUserID, caller.UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	h.dispatcher.Go(c.Request.Context(), intents)

	respond(c, http.StatusOK, dto.ToTeamDTO(*team), "Invitation accepted successfully")
}

// RejectInvite drops a pending request
func (h *TeamHandler) RejectInvite(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	teamID, ok := parseID(c.Param("teamId"))
	if !ok {
		apierrors.BadRequest(c, "Invalid team ID")
		return
	}
	pendingUserID, ok := parseID(c.Query("pendingUserId"))
	if !ok {
		apierrors.BadRequest(c, "Invalid pendingUserId")
		return
	}

	team, err := h.invitations.RejectInvite(c.Request.Context(), teamID, pendingUserID, caller.UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, dto.ToTeamDTO(*team), "Invitation rejected successfully")
}

// LeaveTeam removes the caller from a team
func (h *TeamHandler) LeaveTeam(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req TeamIDRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.teams.LeaveTeam(c.Request.Context(), req.TeamID, caller.UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	message := "Left team successfully"
	if result.TeamDeleted {
		message = "Left team successfully, the team was deleted"
	}
	respond(c, http.StatusOK, dto.ToLeaveTeamDTO(*result), message)
}
