// Package authz holds the static role table and the permission checks built on it.
package authz

import "strings"

type Role string

type Permission string

const (
	RoleRAGUser  Role = "rag_user"
	RoleRAGAdmin Role = "rag_admin"
	RoleDocOwner Role = "doc_owner"
)

const (
	PermRead        Permission = "read"
	PermQuery       Permission = "query"
	PermUpload      Permission = "upload"
	PermModify      Permission = "modify"
	PermDelete      Permission = "delete"
	PermAdmin       Permission = "admin"
	PermManageUsers Permission = "manage_users"
)

// RoleInfo describes a role as shown to users.
type RoleInfo struct {
	ID          Role         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
}

var roleOrder = []Role{RoleRAGUser, RoleRAGAdmin, RoleDocOwner}

var roleTable = map[Role]RoleInfo{
	RoleRAGUser: {
		ID:          RoleRAGUser,
		Name:        "RAG User",
		Description: "Can query and interact with documents",
		Permissions: []Permission{PermRead, PermQuery},
	},
	RoleRAGAdmin: {
		ID:          RoleRAGAdmin,
		Name:        "RAG Admin",
		Description: "Can manage RAG system and user access",
		Permissions: []Permission{PermRead, PermQuery, PermAdmin, PermManageUsers},
	},
	RoleDocOwner: {
		ID:          RoleDocOwner,
		Name:        "Document Owner",
		Description: "Can upload, modify and manage documents",
		Permissions: []Permission{PermRead, PermQuery, PermUpload, PermModify, PermDelete},
	},
}

// ParseRole normalizes free-form input. The second result is false for unknown roles.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := roleTable[role]
	return role, ok
}

// Valid reports whether the role exists in the table.
func (r Role) Valid() bool {
	_, ok := roleTable[r]
	return ok
}

// HasPermission is false for unknown roles.
func HasPermission(role Role, perm Permission) bool {
	info, ok := roleTable[role]
	if !ok {
		return false
	}
	for _, p := range info.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

func CanUpload(role Role) bool {
	return HasPermission(role, PermUpload)
}

// Snapshot returns a copy of the role's permissions, nil for unknown roles.
// Callers may keep or modify the slice freely.
func Snapshot(role Role) []Permission {
	info, ok := roleTable[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(info.Permissions))
	copy(out, info.Permissions)
	return out
}

// Lookup returns a copy of the role's descriptor.
func Lookup(role Role) (RoleInfo, bool) {
	info, ok := roleTable[role]
	if !ok {
		return RoleInfo{}, false
	}
	info.Permissions = Snapshot(role)
	return info, true
}

// Roles lists every role in a stable order.
func Roles() []RoleInfo {
	out := make([]RoleInfo, 0, len(roleOrder))
	for _, r := range roleOrder {
		info, _ := Lookup(r)
		out = append(out, info)
	}
	return out
}
