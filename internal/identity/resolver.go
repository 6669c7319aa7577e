// Package identity turns login input into a validated Profile.
//
// Two strategies exist. DirectResolver trusts the caller's fields as typed.
// DirectoryResolver trusts a server-side directory record for organization and role
// and only takes the department from the caller.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docintake/internal/authz"
)

var (
	ErrProfileIncomplete = errors.New("profile incomplete")
	ErrUserNotFound      = errors.New("user not found in directory")
)

// Input is raw login data. Directory-backed resolution ignores Organization and Role.
type Input struct {
	Organization string
	Department   string
	Role         string
	UserID       string
}

type Resolver interface {
	Resolve(ctx context.Context, input Input) (*Profile, error)
}

// DirectoryEntry is the server-side record for a user id.
type DirectoryEntry struct {
	UserID       string
	Name         string
	Organization string
	Role         string
}

// Directory matches user ids case-insensitively. A miss is (nil, nil).
type Directory interface {
	Lookup(ctx context.Context, userID string) (*DirectoryEntry, error)
}

type DirectResolver struct{}

func NewDirectResolver() *DirectResolver {
	return &DirectResolver{}
}

func (r *DirectResolver) Resolve(_ context.Context, input Input) (*Profile, error) {
	org := strings.TrimSpace(input.Organization)
	userID := strings.TrimSpace(input.UserID)
	rawDept := strings.TrimSpace(input.Department)
	rawRole := strings.TrimSpace(input.Role)

	if org == "" || rawDept == "" || rawRole == "" || userID == "" {
		return nil, ErrProfileIncomplete
	}
	dept, ok := knownDepartment(rawDept)
	if !ok {
		return nil, fmt.Errorf("%w: unknown department %q", ErrProfileIncomplete, rawDept)
	}
	role, ok := authz.ParseRole(rawRole)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrProfileIncomplete, rawRole)
	}

	return &Profile{
		Organization: org,
		Department:   dept,
		Role:         role,
		UserID:       userID,
		SessionID:    NewSessionID(),
	}, nil
}

type DirectoryResolver struct {
	directory Directory
}

func NewDirectoryResolver(directory Directory) *DirectoryResolver {
	return &DirectoryResolver{directory: directory}
}

func (r *DirectoryResolver) Resolve(ctx context.Context, input Input) (*Profile, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, ErrProfileIncomplete
	}

	entry, err := r.directory.Lookup(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("directory lookup failed: %w", err)
	}
	if entry == nil {
		return nil, ErrUserNotFound
	}

	dept := strings.TrimSpace(input.Department)
	if dept == "" {
		return nil, ErrProfileIncomplete
	}
	org := strings.TrimSpace(entry.Organization)
	if org == "" {
		return nil, fmt.Errorf("%w: directory entry has no organization", ErrProfileIncomplete)
	}
	role, ok := authz.ParseRole(entry.Role)
	if !ok {
		return nil, fmt.Errorf("%w: directory role %q is not recognized", ErrProfileIncomplete, entry.Role)
	}

	// The directory's spelling of the id wins over the caller's casing.
	canonicalID := strings.TrimSpace(entry.UserID)
	if canonicalID == "" {
		canonicalID = userID
	}

	return &Profile{
		Organization: org,
		Department:   dept,
		Role:         role,
		UserID:       canonicalID,
		SessionID:    NewSessionID(),
	}, nil
}
