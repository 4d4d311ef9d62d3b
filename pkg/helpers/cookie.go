package helpers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Cookie names are a wire contract with the SPA; do not rename.
const (
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
	CookieCSRFToken    = "csrf_token"
)

// CookieManager writes and clears the session cookie triplet with consistent
// attributes. access/refresh are HttpOnly; the csrf cookie is intentionally
// readable so client script can echo it in the X-CSRF-Token header.
type CookieManager struct {
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewCookieManager(domain string, secure bool, sameSite string, accessTTL, refreshTTL time.Duration) *CookieManager {
	return &CookieManager{
		Domain:     domain,
		Secure:     secure,
		SameSite:   resolveSameSite(sameSite, secure),
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

// resolveSameSite picks the SameSite policy. Explicit config wins; otherwise
// cross-site None is only usable over HTTPS, so default to Lax when insecure.
func resolveSameSite(v string, secure bool) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	}
	if secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// SetSession writes the three session cookies. The csrf cookie lives as long
// as the refresh cookie so the client keeps a usable token across refreshes.
func (m *CookieManager) SetSession(c *gin.Context, access, refresh, csrf string) {
	c.SetSameSite(m.SameSite)
	aMax := int(m.AccessTTL.Seconds())
	rMax := int(m.RefreshTTL.Seconds())

	c.SetCookie(CookieAccessToken, access, aMax, "/", m.Domain, m.Secure, true)
	c.SetCookie(CookieRefreshToken, refresh, rMax, "/", m.Domain, m.Secure, true)
	c.SetCookie(CookieCSRFToken, csrf, rMax, "/", m.Domain, m.Secure, false)
}

// Clear expires all three session cookies.
func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(m.SameSite)
	c.SetCookie(CookieAccessToken, "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(CookieRefreshToken, "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(CookieCSRFToken, "", -1, "/", m.Domain, m.Secure, false)
}
