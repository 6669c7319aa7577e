package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docintake/internal/authz"
)

type fakeDirectory struct {
	entries map[string]DirectoryEntry
	err     error
	calls   int
}

func (d *fakeDirectory) Lookup(_ context.Context, userID string) (*DirectoryEntry, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	entry, ok := d.entries[strings.ToLower(userID)]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{entries: map[string]DirectoryEntry{
		"alice@acme.test": {UserID: "Alice@acme.test", Name: "Alice", Organization: "Acme Inc.", Role: "doc_owner"},
		"bob@acme.test":   {UserID: "bob@acme.test", Name: "Bob", Organization: "Acme Inc.", Role: "RAG_user"},
		"eve@acme.test":   {UserID: "eve@acme.test", Name: "Eve", Organization: "Acme Inc.", Role: "root"},
	}}
}

func TestDirectResolver(t *testing.T) {
	r := NewDirectResolver()

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{
			name:  "complete profile",
			input: Input{Organization: "Acme", Department: "Finance", Role: "doc_owner", UserID: "a@acme.test"},
		},
		{
			name:  "department and role are case insensitive",
			input: Input{Organization: "Acme", Department: "finance", Role: "RAG_admin", UserID: "a@acme.test"},
		},
		{
			name:    "missing organization",
			input:   Input{Department: "Finance", Role: "doc_owner", UserID: "a@acme.test"},
			wantErr: ErrProfileIncomplete,
		},
		{
			name:    "blank user id",
			input:   Input{Organization: "Acme", Department: "Finance", Role: "doc_owner", UserID: "   "},
			wantErr: ErrProfileIncomplete,
		},
		{
			name:    "unknown role",
			input:   Input{Organization: "Acme", Department: "Finance", Role: "superuser", UserID: "a@acme.test"},
			wantErr: ErrProfileIncomplete,
		},
		{
			name:    "unknown department",
			input:   Input{Organization: "Acme", Department: "Catering", Role: "doc_owner", UserID: "a@acme.test"},
			wantErr: ErrProfileIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := r.Resolve(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if profile != nil {
					t.Fatal("expected nil profile on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !profile.Authenticated() {
				t.Fatalf("expected authenticated profile, got %+v", profile)
			}
			if len(profile.SessionID) != 8 {
				t.Fatalf("expected 8 char session id, got %q", profile.SessionID)
			}
		})
	}
}

func TestDirectResolverNormalizes(t *testing.T) {
	profile, err := NewDirectResolver().Resolve(context.Background(), Input{
		Organization: " Acme ", Department: "hr", Role: "Doc_Owner", UserID: " a@acme.test ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Organization != "Acme" || profile.Department != "HR" || profile.Role != authz.RoleDocOwner || profile.UserID != "a@acme.test" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestDirectoryResolver(t *testing.T) {
	t.Run("unknown user is not found even without department", func(t *testing.T) {
		r := NewDirectoryResolver(newFakeDirectory())
		_, err := r.Resolve(context.Background(), Input{UserID: "mallory@acme.test"})
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
		if errors.Is(err, ErrProfileIncomplete) {
			t.Fatal("not-found must be distinct from incomplete")
		}
	})

	t.Run("known user with empty department is incomplete", func(t *testing.T) {
		r := NewDirectoryResolver(newFakeDirectory())
		_, err := r.Resolve(context.Background(), Input{UserID: "alice@acme.test", Department: " "})
		if !errors.Is(err, ErrProfileIncomplete) {
			t.Fatalf("expected ErrProfileIncomplete, got %v", err)
		}
	})

	t.Run("empty user id skips lookup", func(t *testing.T) {
		dir := newFakeDirectory()
		r := NewDirectoryResolver(dir)
		_, err := r.Resolve(context.Background(), Input{Department: "Finance"})
		if !errors.Is(err, ErrProfileIncomplete) {
			t.Fatalf("expected ErrProfileIncomplete, got %v", err)
		}
		if dir.calls != 0 {
			t.Fatalf("expected no lookup, got %d", dir.calls)
		}
	})

	t.Run("organization and role come from the directory", func(t *testing.T) {
		r := NewDirectoryResolver(newFakeDirectory())
		profile, err := r.Resolve(context.Background(), Input{
			UserID:       "ALICE@ACME.TEST",
			Department:   "Skunkworks",
			Organization: "Forged Org",
			Role:         "rag_admin",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if profile.Organization != "Acme Inc." {
			t.Errorf("organization = %q", profile.Organization)
		}
		if profile.Role != authz.RoleDocOwner {
			t.Errorf("role = %q", profile.Role)
		}
		if profile.Department != "Skunkworks" {
			t.Errorf("department = %q", profile.Department)
		}
		if profile.UserID != "Alice@acme.test" {
			t.Errorf("user id = %q", profile.UserID)
		}
		if !profile.Authenticated() {
			t.Error("expected authenticated profile")
		}
	})

	t.Run("directory role is normalized", func(t *testing.T) {
		r := NewDirectoryResolver(newFakeDirectory())
		profile, err := r.Resolve(context.Background(), Input{UserID: "bob@acme.test", Department: "Sales"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if profile.Role != authz.RoleRAGUser {
			t.Fatalf("role = %q", profile.Role)
		}
	})

	t.Run("unrecognized directory role is incomplete", func(t *testing.T) {
		r := NewDirectoryResolver(newFakeDirectory())
		_, err := r.Resolve(context.Background(), Input{UserID: "eve@acme.test", Department: "Sales"})
		if !errors.Is(err, ErrProfileIncomplete) {
			t.Fatalf("expected ErrProfileIncomplete, got %v", err)
		}
	})

	t.Run("directory failure is surfaced", func(t *testing.T) {
		dir := newFakeDirectory()
		dir.err = errors.New("connection refused")
		r := NewDirectoryResolver(dir)
		_, err := r.Resolve(context.Background(), Input{UserID: "alice@acme.test", Department: "Sales"})
		if err == nil || errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrProfileIncomplete) {
			t.Fatalf("expected a wrapped infrastructure error, got %v", err)
		}
	})
}

func TestResolversShareInterface(t *testing.T) {
	var _ Resolver = NewDirectResolver()
	var _ Resolver = NewDirectoryResolver(newFakeDirectory())
}

func TestAuthenticated(t *testing.T) {
	var nilProfile *Profile
	if nilProfile.Authenticated() {
		t.Fatal("nil profile must not be authenticated")
	}
	p := &Profile{Organization: "a", Department: "b", Role: "ghost", UserID: "c", SessionID: "12345678"}
	if p.Authenticated() {
		t.Fatal("unknown role must not be authenticated")
	}
	p.Role = authz.RoleRAGUser
	if !p.Authenticated() {
		t.Fatal("expected authenticated")
	}
}
