package domain

// Role distinguishes the two kinds of authenticated callers.
type Role string

const (
	RoleCoach  Role = "coach"
	RoleClient Role = "client"
)

// Caller is the identity taken from a verified bearer token. Authentication
// itself happens outside this service.
type Caller struct {
	UserID         string
	OrganizationID string
	Role           Role
}

func (c Caller) IsCoach() bool {
	return c.Role == RoleCoach
}

func (c Caller) IsClient() bool {
	return c.Role == RoleClient
}
