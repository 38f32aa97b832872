package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"removaltracker/internal/authz"
	"removaltracker/internal/service"
	"removaltracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	userIDKey = "userID"
	actorKey  = "actor"

	accessTokenCookie = "access_token"
)

var errMissingToken = errors.New("authorization is missing")

// SetTokenCookie stores the access token as an HttpOnly cookie.
// Cross-origin deployments need SameSite=None with Secure.
func SetTokenCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(accessTokenCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearTokenCookie removes the access token cookie
func ClearTokenCookie(c *gin.Context, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", secure, true)
}

// TokenFromRequest reads the access token from the cookie, falling back to
// the Authorization header.
func TokenFromRequest(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("invalid authorization format, expected 'Bearer <token>'")
	}
	return parts[1], nil
}

// ParseToken validates an HS256 token and returns the user id in its sub claim.
func ParseToken(tokenString string, secret []byte) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, errors.New("subject not found in token")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject: %w", err)
	}
	return id, nil
}

// RequireAuth validates the JWT and stores the user id in the context.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := TokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}

		userID, err := ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// ActorResolver turns a user id into the actor that lifecycle operations run as.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID uuid.UUID) (*authz.Actor, error)
}

// LoadActor resolves the authenticated user's actor. Must run after RequireAuth.
func LoadActor(resolver ActorResolver) gin.HandlerFunc {
	log := logrus.WithField("component", "auth_middleware")
	return func(c *gin.Context) {
		userID, ok := UserIDFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
			return
		}

		actor, err := resolver.ResolveActor(c.Request.Context(), userID)
		if errors.Is(err, service.ErrUnauthenticated) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("failed to resolve actor")
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify permissions"))
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

// RequirePermission checks that the actor holds every listed permission.
// admin_access always passes. Must run after LoadActor.
func RequirePermission(requiredPerms ...authz.PermissionName) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Not authenticated"))
			return
		}
		if actor.IsAdmin() {
			c.Next()
			return
		}
		for _, required := range requiredPerms {
			if !actor.HasPermission(required) {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+string(required)+"'"))
				return
			}
		}
		c.Next()
	}
}

// UserIDFrom returns the id stored by RequireAuth.
func UserIDFrom(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// ActorFrom returns the actor stored by LoadActor, or nil.
func ActorFrom(c *gin.Context) *authz.Actor {
	v, exists := c.Get(actorKey)
	if !exists {
		return nil
	}
	actor, _ := v.(*authz.Actor)
	return actor
}

// SetActor stores the actor for downstream handlers.
func SetActor(c *gin.Context, actor *authz.Actor) {
	c.Set(actorKey, actor)
}
