package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"timelogger-api/internal/application"
	"timelogger-api/internal/domain/entity"
	"timelogger-api/pkg/helpers"
	"timelogger-api/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxUserKey   = "user"
)

// Auth guards protected endpoints: it reads the access_token cookie, decodes
// it, resolves the user and compares the token-version snapshot. The full
// user is stored in the context so handlers avoid a second lookup.
func Auth(svc *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(helpers.CookieAccessToken)
		u, err := svc.AuthenticateAccess(c.Request.Context(), token)
		if err != nil {
			status, msg := http.StatusUnauthorized, err.Error()
			if !application.IsAuthError(err) {
				// store failure, not a bad credential
				status, msg = http.StatusInternalServerError, "internal error"
			}
			resp := response.Error[any](c, status, msg, nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// UserFromCtx returns the authenticated user placed by Auth, or nil.
func UserFromCtx(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}
