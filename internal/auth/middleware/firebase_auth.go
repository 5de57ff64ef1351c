package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	authctx "github.com/folio-dash/folio-backend/internal/auth"
	"github.com/folio-dash/folio-backend/internal/auth/domain"
	"github.com/folio-dash/folio-backend/internal/logging"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info
func FirebaseAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		decodedToken, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			logging.Operation(c.Request.Context(), "auth.verify").Debug("token rejected", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		p := domain.Principal{UID: decodedToken.UID, Provider: domain.ProviderFirebase}
		if email, ok := decodedToken.Claims["email"].(string); ok {
			p.Email = email
		}
		attach(c, p)
		c.Next()
	}
}

// DevHeaderAuth trusts the X-User-Id header. Use this ONLY for development/testing.
func DevHeaderAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing X-User-Id header"})
			c.Abort()
			return
		}

		attach(c, domain.Principal{
			UID:      uid,
			Email:    strings.TrimSpace(c.GetHeader("X-User-Email")),
			Provider: domain.ProviderDev,
		})
		c.Next()
	}
}

// attach stores the principal and tags the request logger with it.
func attach(c *gin.Context, p domain.Principal) {
	authctx.SetPrincipal(c, p)
	ctx := c.Request.Context()
	l := logging.FromContext(ctx).With("user_id", p.UID)
	c.Request = c.Request.WithContext(logging.WithLogger(ctx, l))
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
