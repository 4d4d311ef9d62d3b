package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"timelogger-api/pkg/helpers"
	"timelogger-api/pkg/response"
)

// CSRFHeader is the header trusted client script must echo the csrf cookie
// into; part of the wire contract.
const CSRFHeader = "X-CSRF-Token"

// CSRF enforces the double-submit pattern on state-changing methods: the
// header token and the cookie token must both be present and equal. A
// cross-site attacker can trigger the request but can neither read nor set
// the cookie, so it cannot produce a matching header. Read methods pass
// through.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		header := c.GetHeader(CSRFHeader)
		cookie, _ := c.Cookie(helpers.CookieCSRFToken)
		if header == "" || cookie == "" || subtle.ConstantTimeCompare([]byte(header), []byte(cookie)) != 1 {
			resp := response.Error[any](c, http.StatusForbidden, "CSRF validation failed", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		c.Next()
	}
}
