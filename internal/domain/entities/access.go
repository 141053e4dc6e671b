package entities

import "strings"

type Role string

const (
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleGuest
}

// Viewer is the identity a board decision is made for. The role is resolved
// once per session and passed in explicitly.
type Viewer struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// Access is the outcome of the authorization gate for one task.
type Access string

const (
	AccessEditor        Access = "editor"
	AccessReadOnlyOwner Access = "read_only_owner"
	AccessViewer        Access = "viewer"
)

// CanMutate reports whether edit, status change and delete are allowed.
func (a Access) CanMutate() bool { return a == AccessEditor }

// Authorize decides what viewer may do with a task owned by ownerID.
// Guests never get write rights, even on tasks they own.
func Authorize(viewer Viewer, ownerID int64) Access {
	if viewer.ID != ownerID {
		return AccessViewer
	}
	if viewer.Role == RoleMember {
		return AccessEditor
	}
	return AccessReadOnlyOwner
}

// CanCreate gates the creation flow on role alone; a new task has no owner yet.
func CanCreate(viewer Viewer) bool {
	return viewer.Role == RoleMember
}

// DeriveRole grants member to addresses in the organization's domain.
func DeriveRole(email, orgDomain string) Role {
	orgDomain = strings.TrimPrefix(strings.TrimSpace(orgDomain), "@")
	if orgDomain != "" && strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(orgDomain)) {
		return RoleMember
	}
	return RoleGuest
}

// ResolveRole prefers a valid role from operator-owned app metadata and falls
// back to deriving one from the email domain. User-writable metadata must
// never be passed here.
func ResolveRole(appMetadata map[string]any, email, orgDomain string) Role {
	if raw, ok := appMetadata["role"].(string); ok {
		if r := Role(raw); r.IsValid() {
			return r
		}
	}
	return DeriveRole(email, orgDomain)
}
