package identity

import (
	"strings"

	"github.com/google/uuid"

	"docintake/internal/authz"
)

// Departments accepted by direct entry.
var Departments = []string{
	"Finance", "HR", "Legal", "IT", "Operations",
	"Marketing", "Sales", "Research", "Engineering", "Other",
}

// Profile identifies the actor behind a session. It is built once per login and never mutated.
type Profile struct {
	Organization string     `json:"organization"`
	Department   string     `json:"department"`
	Role         authz.Role `json:"role"`
	UserID       string     `json:"user_id"`
	SessionID    string     `json:"session_id"`
}

// Authenticated is true only when every field is set and the role is recognized.
func (p *Profile) Authenticated() bool {
	if p == nil {
		return false
	}
	return p.Organization != "" &&
		p.Department != "" &&
		p.UserID != "" &&
		p.SessionID != "" &&
		p.Role.Valid()
}

// NewSessionID returns an 8 character token. Uniqueness is best effort.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func knownDepartment(dept string) (string, bool) {
	for _, d := range Departments {
		if strings.EqualFold(d, dept) {
			return d, true
		}
	}
	return "", false
}
