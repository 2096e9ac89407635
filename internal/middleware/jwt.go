package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lyceo/charge-api/internal/models"
	appErrors "github.com/lyceo/charge-api/pkg/errors"
	"github.com/lyceo/charge-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentTeacher"

type tokenValidator interface {
	ValidateToken(token string) (*models.TokenClaims, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// CurrentClaims returns the claims attached by JWT, if any.
func CurrentClaims(c *gin.Context) (*models.TokenClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.TokenClaims)
	return claims, ok
}
