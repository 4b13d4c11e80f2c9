// Package auth resolves the calling identity for each request. The
// resolver is injected so the development stub and a real OIDC provider
// are interchangeable without touching handler logic.
package auth

import (
	"github.com/gin-gonic/gin"
)

// Identity is what an identity provider knows about a caller. ID is a
// stable external identifier; roles and subscription data live on the
// stored user record, not here.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// Resolver produces the identity behind a request, or an error when
// there is none.
type Resolver interface {
	Resolve(c *gin.Context) (Identity, error)
}

// StaticResolver always resolves to one fixed identity. It backs the
// no-auth development mode.
type StaticResolver struct {
	Identity Identity
}

func NewStaticResolver(id, name, email string) *StaticResolver {
	if id == "" {
		id = "dev-user"
	}
	if name == "" {
		name = "Dev User"
	}
	if email == "" {
		email = "dev@example.com"
	}
	return &StaticResolver{
		Identity: Identity{ID: id, Name: name, Email: email},
	}
}

func (r *StaticResolver) Resolve(_ *gin.Context) (Identity, error) {
	return r.Identity, nil
}
