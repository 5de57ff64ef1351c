package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/folio-dash/folio-backend/internal/auth/domain"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxProvider    = "auth_provider"
)

// UserFirebaseUID extracts the principal id set by the auth middleware.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// CurrentPrincipal returns the caller, or a zero Principal when unauthenticated.
func CurrentPrincipal(c *gin.Context) domain.Principal {
	uid := UserFirebaseUID(c)
	if uid == "" {
		return domain.Principal{}
	}
	return domain.Principal{
		UID:      uid,
		Email:    c.GetString(CtxEmail),
		Provider: domain.Provider(c.GetString(CtxProvider)),
	}
}

// SetPrincipal stores p on the gin context.
func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(CtxFirebaseUID, p.UID)
	if p.Email != "" {
		c.Set(CtxEmail, p.Email)
	}
	c.Set(CtxProvider, string(p.Provider))
}
