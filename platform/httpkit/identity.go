package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the authenticated caller as seen by handlers. AuthRequired
// stores the user ID and roles on the request context; this interface reads
// them back without the handler touching context keys directly. Admin-only
// surfaces (distributor tuning, task triggers) combine it with RequireRole.
type Identity interface {
	// UserID returns the caller's user ID.
	UserID() uuid.UUID
	// Roles returns the caller's roles from the access token.
	Roles() []string
	// HasRole reports whether the caller carries the given role.
	HasRole(role string) bool
	// IsAuthenticated reports whether a valid token was presented.
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	roles         []string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID {
	return i.userID
}

func (i *identity) Roles() []string {
	return i.roles
}

func (i *identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity reads the caller identity set by AuthRequired. On routes that
// skipped auth it returns an unauthenticated identity rather than failing.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	roles, rolesOK := c.Get(ContextRolesKey)

	if !userOK {
		return &identity{authenticated: false}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	var roleList []string
	if rolesOK {
		roleList, _ = roles.([]string)
	}

	return &identity{
		userID:        uid,
		roles:         roleList,
		authenticated: true,
	}
}

// MustGetIdentity is GetIdentity for handlers that cannot proceed without a
// caller: it aborts with 401 and returns nil when no identity is present.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
