package app

import (
	"context"
	"fmt"
	"strings"

	"docintake/internal/authz"
	"docintake/internal/model"
)

type DirectoryWriter interface {
	Upsert(ctx context.Context, entry *model.DirectoryEntry) error
	List(ctx context.Context) ([]model.DirectoryEntry, error)
}

// DirectoryService maintains the entries consulted by directory-lookup login.
type DirectoryService struct {
	repo DirectoryWriter
}

type DirectoryEntryInput struct {
	UserID       string
	Name         string
	Organization string
	Role         string
}

func NewDirectoryService(repo DirectoryWriter) *DirectoryService {
	return &DirectoryService{repo: repo}
}

func (s *DirectoryService) Upsert(ctx context.Context, in DirectoryEntryInput) (*model.DirectoryEntry, error) {
	userID := strings.TrimSpace(in.UserID)
	org := strings.TrimSpace(in.Organization)
	if userID == "" || org == "" {
		return nil, fmt.Errorf("%w: user_id and organization are required", ErrInvalidInput)
	}
	role, ok := authz.ParseRole(in.Role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}

	entry := &model.DirectoryEntry{
		UserID:       userID,
		Name:         strings.TrimSpace(in.Name),
		Organization: org,
		Role:         string(role),
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *DirectoryService) List(ctx context.Context) ([]model.DirectoryEntry, error) {
	return s.repo.List(ctx)
}
