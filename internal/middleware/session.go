package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-siswa-web/pkg/config"
	"github.com/noah-isme/sma-siswa-web/pkg/response"
)

// Session keys.
const (
	SessionKeyLoggedIn = "isLoggedIn"
	SessionKeyUsername = "username"
)

// Flash categories.
const (
	FlashError = "error"
	FlashMsg   = "msg"
)

// NewSessionStore builds the backing store for login sessions. The memory
// store keeps values server-side and only puts the signed id in the cookie.
func NewSessionStore(cfg config.SessionConfig, secure bool) sessions.Store {
	var store sessions.Store
	switch cfg.Store {
	case config.SessionStoreCookie:
		store = cookie.NewStore([]byte(cfg.Secret))
	default:
		store = memstore.NewStore([]byte(cfg.Secret))
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// Sessions attaches the named session to every request.
func Sessions(name string, store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(name, store)
}

// RequireLogin redirects to the login page unless the session is logged in.
// Authenticated requests re-save the session so the expiry rolls forward.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if loggedIn, _ := session.Get(SessionKeyLoggedIn).(bool); !loggedIn {
			response.Redirect(c, "/")
			c.Abort()
			return
		}
		_ = session.Save()
		c.Next()
	}
}

// Login marks the session as authenticated for username.
func Login(c *gin.Context, username string) error {
	session := sessions.Default(c)
	session.Set(SessionKeyLoggedIn, true)
	session.Set(SessionKeyUsername, username)
	return session.Save()
}

// Logout clears every session value and expires the cookie.
func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// CurrentUsername returns the logged in username, or "".
func CurrentUsername(c *gin.Context) string {
	username, _ := sessions.Default(c).Get(SessionKeyUsername).(string)
	return username
}

// AddFlash queues a one-shot message under category.
func AddFlash(c *gin.Context, category, message string) error {
	session := sessions.Default(c)
	session.AddFlash(message, category)
	return session.Save()
}

// Flashes consumes and returns the queued messages for category.
func Flashes(c *gin.Context, category string) []string {
	session := sessions.Default(c)
	raw := session.Flashes(category)
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save()

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if msg, ok := v.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}
