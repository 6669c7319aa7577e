package authz

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role Role
		perm Permission
		want bool
	}{
		{role: RoleRAGUser, perm: PermUpload, want: false},
		{role: RoleRAGUser, perm: PermRead, want: true},
		{role: RoleRAGUser, perm: PermQuery, want: true},
		{role: RoleDocOwner, perm: PermUpload, want: true},
		{role: RoleDocOwner, perm: PermDelete, want: true},
		{role: RoleDocOwner, perm: PermAdmin, want: false},
		{role: RoleRAGAdmin, perm: PermManageUsers, want: true},
		{role: RoleRAGAdmin, perm: PermUpload, want: false},
		{role: Role("unknown_role"), perm: PermRead, want: false},
		{role: Role(""), perm: PermRead, want: false},
		{role: Role("DOC_OWNER"), perm: PermUpload, want: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.perm), func(t *testing.T) {
			if got := HasPermission(tt.role, tt.perm); got != tt.want {
				t.Fatalf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.perm, got, tt.want)
			}
		})
	}
}

func TestCanUpload(t *testing.T) {
	if CanUpload(RoleRAGUser) {
		t.Error("rag_user must not upload")
	}
	if CanUpload(RoleRAGAdmin) {
		t.Error("rag_admin must not upload")
	}
	if !CanUpload(RoleDocOwner) {
		t.Error("doc_owner must upload")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	snap := Snapshot(RoleDocOwner)
	if len(snap) != 5 {
		t.Fatalf("expected 5 permissions, got %v", snap)
	}
	snap[0] = PermAdmin

	if HasPermission(RoleDocOwner, PermAdmin) {
		t.Fatal("mutating a snapshot changed the role table")
	}
	if again := Snapshot(RoleDocOwner); again[0] != PermRead {
		t.Fatalf("expected table entry to start with read, got %v", again)
	}
	if Snapshot(Role("nope")) != nil {
		t.Fatal("expected nil snapshot for unknown role")
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole("  RAG_user "); !ok || r != RoleRAGUser {
		t.Fatalf("ParseRole = %q, %v", r, ok)
	}
	if _, ok := ParseRole("superuser"); ok {
		t.Fatal("expected superuser to be rejected")
	}
}

func TestRolesOrder(t *testing.T) {
	roles := Roles()
	if len(roles) != 3 {
		t.Fatalf("expected 3 roles, got %d", len(roles))
	}
	if roles[0].ID != RoleRAGUser || roles[1].ID != RoleRAGAdmin || roles[2].ID != RoleDocOwner {
		t.Fatalf("unexpected order: %+v", roles)
	}
	if roles[2].Name != "Document Owner" {
		t.Fatalf("unexpected name %q", roles[2].Name)
	}
}
