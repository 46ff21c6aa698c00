package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/devzoku/devzoku-api/internal/dto"
	apierrors "github.com/devzoku/devzoku-api/internal/errors"
	"github.com/devzoku/devzoku-api/internal/middleware"
	"github.com/devzoku/devzoku-api/internal/outbox"
	"github.com/devzoku/devzoku-api/internal/services"
	"github.com/devzoku/devzoku-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// IntentDispatcher runs the side effects of a committed operation without
// holding up the response.
type IntentDispatcher interface {
	Go(ctx context.Context, intents outbox.Intents)
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, dto.NewResponse(status, data, message))
}

// bindJSON binds and validates the request body, answering 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		apierrors.BadRequestWithDetails(c, "Invalid request body", validation.Details(err))
		return
	}
	apierrors.BadRequest(c, "Invalid request body")
}

// parseID reads a positive integer ID from a path or query value
func parseID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// requireCaller returns the authenticated caller or answers 401
func requireCaller(c *gin.Context) (services.Caller, bool) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return services.Caller{}, false
	}
	return caller, true
}

func notFoundRoute(c *gin.Context) {
	apierrors.NotFound(c, http.StatusText(http.StatusNotFound))
}
