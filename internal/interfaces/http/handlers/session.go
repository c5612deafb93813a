// internal/interfaces/http/handlers/session.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie that identifies a shopper's cart
const SessionCookieName = "session_id"

// SessionCookie reads and issues the session cookie
type SessionCookie struct {
	maxAge int
	secure bool
}

// NewSessionCookie creates a session cookie policy
func NewSessionCookie(ttl time.Duration, secure bool) *SessionCookie {
	return &SessionCookie{
		maxAge: int(ttl.Seconds()),
		secure: secure,
	}
}

// Get returns the session id of the request, or "" when there is none
func (s *SessionCookie) Get(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return ""
	}
	return sessionID
}

// GetOrCreate returns the session id, issuing a new cookie on first contact
func (s *SessionCookie) GetOrCreate(c *gin.Context) string {
	if sessionID := s.Get(c); sessionID != "" {
		return sessionID
	}

	sessionID := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, sessionID, s.maxAge, "/", "", s.secure, true)

	// Later reads in this request see the new session
	c.Request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	return sessionID
}
