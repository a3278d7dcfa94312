package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/fieldcost/fieldcost/internal/config"
	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/fieldcost/fieldcost/internal/modules/serializer"
)

// UserAuth returns a middleware that authenticates requests using user bearer
// tokens. It validates the token prefix, looks the user up by token hash, and
// sets the user in the context. It also sets the user_id attribute on the
// current span for telemetry filtering.
func UserAuth(cfg *config.Config, users repo.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		if !strings.HasPrefix(raw, cfg.Auth.TokenPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		sum := sha256.Sum256([]byte(raw))
		lookup := hex.EncodeToString(sum[:])

		user, err := users.GetByTokenHash(c.Request.Context(), lookup)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.DBErr("", err))
			return
		}

		// Set user_id attribute on the current span for telemetry filtering
		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			span.SetAttributes(attribute.String("user_id", user.ID.String()))
		}

		c.Set("user", user)
		c.Next()
	}
}

// CurrentUser pulls the authenticated user out of the gin context.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	user, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return user
}
