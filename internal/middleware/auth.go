package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/devzoku/devzoku-api/internal/constants"
	apierrors "github.com/devzoku/devzoku-api/internal/errors"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var errNoCredentials = errors.New("no credentials")

// AccessClaims are the claims of an access token issued by the auth service
type AccessClaims struct {
	ID   uint64          `json:"id"`
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies identity from a session or an access token. It
// never issues credentials.
type Authenticator struct {
	secret     []byte
	cookieName string
}

// NewAuthenticator creates an Authenticator for HS256 tokens signed with secret
func NewAuthenticator(secret, cookieName string) *Authenticator {
	if cookieName == "" {
		cookieName = "accessToken"
	}
	return &Authenticator{secret: []byte(secret), cookieName: cookieName}
}

// ParseToken validates an access token and returns its identity
func (a *Authenticator) ParseToken(tokenString string) (services.Caller, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return services.Caller{}, err
	}
	if !token.Valid || claims.ID == 0 {
		return services.Caller{}, errors.New("invalid token claims")
	}
	return services.Caller{UserID: claims.ID, Role: claims.Role}, nil
}

func (a *Authenticator) tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func (a *Authenticator) identify(c *gin.Context) (services.Caller, error) {
	// Session first, when the session middleware is installed
	if _, ok := c.Get(sessions.DefaultKey); ok {
		session := sessions.Default(c)
		if userID, ok := toUint64(session.Get(constants.ContextKeyUserID)); ok {
			role, _ := session.Get(constants.ContextKeyUserRole).(string)
			return services.Caller{UserID: userID, Role: models.UserRole(role)}, nil
		}
	}

	token := a.tokenFromRequest(c.Request)
	if token == "" {
		return services.Caller{}, errNoCredentials
	}
	return a.ParseToken(token)
}

func setIdentity(c *gin.Context, caller services.Caller) {
	c.Set(constants.ContextKeyUserID, caller.UserID)
	c.Set(constants.ContextKeyUserRole, caller.Role)
}

// RequireAuth rejects requests without a valid session or access token
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := a.identify(c)
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		setIdentity(c, caller)
		c.Next()
	}
}

// ResolveUser identifies the user behind a socket handshake
func (a *Authenticator) ResolveUser(header http.Header) (uint64, bool) {
	token := a.tokenFromRequest(&http.Request{Header: header})
	if token == "" {
		return 0, false
	}
	caller, err := a.ParseToken(token)
	if err != nil {
		return 0, false
	}
	return caller.UserID, true
}

// RequireRole rejects authenticated users with a different role
func RequireRole(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetIdentity(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if caller.Role != role {
			apierrors.Forbidden(c, fmt.Sprintf("Only %ss can access this resource", role))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity retrieves the current caller from context
func GetIdentity(c *gin.Context) (services.Caller, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return services.Caller{}, false
	}
	role, _ := c.Get(constants.ContextKeyUserRole)
	r, _ := role.(models.UserRole)
	return services.Caller{UserID: userID, Role: r}, true
}

// GetCaller returns the caller or nil for anonymous requests
func GetCaller(c *gin.Context) *services.Caller {
	caller, ok := GetIdentity(c)
	if !ok {
		return nil
	}
	return &caller
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(userID)
}

func toUint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case float64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
