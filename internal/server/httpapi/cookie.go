package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/server/services"
)

// setSessionCookie writes the session cookie. Only remembered sessions get
// an explicit expiry; the rest end with the browser session.
func (h *Handler) setSessionCookie(w http.ResponseWriter, tok *services.SessionToken) {
	c := &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    tok.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if tok.Persistent {
		c.Expires = tok.ExpiresAt
	}
	http.SetCookie(w, c)
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(common.SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
