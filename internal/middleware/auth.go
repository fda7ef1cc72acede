package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/meister-web/internal/httperr"
	"github.com/BruksfildServices01/meister-web/internal/session"
)

const (
	ContextSession = "session"
	SessionCookie  = "meister_session"
)

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// SessionMiddleware resolves the visitor session from a signed cookie and
// issues a new one when the cookie is missing, invalid or expired. The
// store's idle TTL slides, so the token is re-signed once past half its
// lifetime to keep an active visitor on the same session.
func SessionMiddleware(store *session.Store, cfg SessionConfig) gin.HandlerFunc {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		at := now()
		var (
			sid    string
			issued time.Time
		)
		if raw, err := c.Cookie(SessionCookie); err == nil && raw != "" {
			sid, issued = parseSessionToken(raw, cfg.Secret, at)
		}

		sess, created := store.GetOrCreate(sid)
		if created || at.Sub(issued) > cfg.TTL/2 {
			token, err := signSessionToken(sess.ID, cfg.Secret, at, cfg.TTL)
			if err != nil {
				httperr.Internal(c, "session_error", "could not start session")
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, token, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
		}

		c.Set(ContextSession, sess)
		c.Next()
	}
}

func signSessionToken(sid, secret string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sid": sid,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// parseSessionToken returns the session id and issue time, or "" when the
// token is not acceptable at now.
func parseSessionToken(tokenString, secret string, now time.Time) (string, time.Time) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !token.Valid {
		return "", time.Time{}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}
	}
	sid, _ := claims["sid"].(string)
	var issued time.Time
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		issued = iat.Time
	}
	return strings.TrimSpace(sid), issued
}

// CurrentSession is set by SessionMiddleware.
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(ContextSession); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

// RequireAdmin lets only sessions holding a verified admin credential
// through. Pages are sent back to the login form, JSON callers get 401.
func RequireAdmin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess != nil && sess.Authorized() {
			c.Next()
			return
		}
		if c.Request.Method == http.MethodGet && !wantsJSON(c) {
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}
		httperr.Unauthorized(c, "admin_required", "admin password required")
		c.Abort()
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
