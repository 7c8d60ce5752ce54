package mw

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"littlelemon-backend/internal/auth"
	"littlelemon-backend/internal/model"
)

const userKey = "littlelemon.user"

// UserStore resolves token subjects to local users.
type UserStore interface {
	EnsureUser(ctx context.Context, subject, username string) (*model.User, error)
}

// Authenticate attaches the caller to the context when the request carries
// a valid token in the Authorization header or in cookieName. Requests
// without a usable token continue anonymously.
func Authenticate(v *auth.Verifier, users UserStore, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.Request)
		if raw == "" && cookieName != "" {
			if cookie, err := c.Cookie(cookieName); err == nil {
				raw = cookie
			}
		}
		if raw == "" {
			c.Next()
			return
		}

		claims, err := v.Parse(raw)
		if err != nil {
			log.Printf("[%s] rejecting token: %v", RequestID(c), err)
			c.Next()
			return
		}

		user, err := users.EnsureUser(c.Request.Context(), claims.Subject, claims.Username)
		if err != nil {
			log.Printf("[%s] could not resolve user %q: %v", RequestID(c), claims.Subject, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// RequireUser rejects anonymous requests. Browsers are redirected to
// loginURL with the original path in next; API clients get 401.
func RequireUser(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		if WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		target := loginURL + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// CurrentUser returns the authenticated caller, or nil.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}

// WantsJSON reports whether the client expects a JSON rather than an HTML
// response.
func WantsJSON(c *gin.Context) bool {
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	if c.Query("format") == "json" {
		return true
	}
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
