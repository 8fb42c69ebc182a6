package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/identity"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

const userKey = "user"

// RequireAuth проверяет заголовок "Authorization: Bearer <token>"
func RequireAuth(provider identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			AbortJSONError(c, http.StatusUnauthorized, ErrorCodeUnauthorized, "missing or invalid authentication")
			return
		}

		user, err := provider.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			AbortJSONError(c, http.StatusUnauthorized, ErrorCodeUnauthorized, "missing or invalid authentication")
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (model.User, bool) {
	val, ok := c.Get(userKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := val.(model.User)
	return user, ok
}
