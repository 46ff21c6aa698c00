package handlers

import (
	"context"
	"net/http"
	"time"

	apierrors "github.com/devzoku/devzoku-api/internal/errors"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health answers liveness checks and pings the database
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			_ = c.Error(err)
			apierrors.RespondWithError(c, apierrors.NewAPIError(http.StatusServiceUnavailable, apierrors.ErrCodeServiceUnavailable, "Database unreachable"))
			return
		}
		respond(c, http.StatusOK, gin.H{"database": "ok"}, "DevZoku API is running")
	}
}
