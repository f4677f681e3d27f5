package domain

// Token type claims carried in the "typ" field of issued JWTs.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AdminRoleCode gates the role catalog and assignment endpoints.
const AdminRoleCode = "admin"

// Principal is the identity resolved from a verified access token and
// attached to the request context by the auth middleware.
type Principal struct {
	UserID   string
	Username string
}
