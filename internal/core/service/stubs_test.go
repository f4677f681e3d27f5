package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

// In-memory repository stubs shared by the service tests. They mirror
// the storage-layer contract: unique-key violations surface as the
// domain conflict sentinels and upserts are keyed on (user, role).

type stubUserRepo struct {
	seq   int
	users map[string]*domain.User // by ID
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
		if existing.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, upd ports.ProfileUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *upd.Email {
				return nil, domain.ErrEmailTaken
			}
		}
		u.Email = *upd.Email
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id string, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

type stubRoleRepo struct {
	seq   int
	roles map[string]*domain.Role
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[string]*domain.Role)}
}

func cloneRole(role *domain.Role) *domain.Role {
	clone := *role
	return &clone
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	for _, existing := range r.roles {
		if existing.Name == role.Name {
			return nil, domain.ErrRoleNameTaken
		}
		if existing.Code == role.Code {
			return nil, domain.ErrRoleCodeTaken
		}
	}
	r.seq++
	stored := cloneRole(role)
	stored.ID = fmt.Sprintf("role-%d", r.seq)
	r.roles[stored.ID] = stored
	return cloneRole(stored), nil
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	if role, ok := r.roles[id]; ok {
		return cloneRole(role), nil
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindByCode(_ context.Context, code string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.Code == code {
			return cloneRole(role), nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) List(_ context.Context, activeOnly bool) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		if activeOnly && !role.IsActive {
			continue
		}
		out = append(out, *role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubRoleRepo) Update(_ context.Context, id string, upd ports.RoleUpdate) (*domain.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	if upd.Name != nil {
		role.Name = *upd.Name
	}
	if upd.Description != nil {
		role.Description = *upd.Description
	}
	if upd.IsActive != nil {
		role.IsActive = *upd.IsActive
	}
	role.UpdatedAt = time.Now().UTC()
	return cloneRole(role), nil
}

func (r *stubRoleRepo) Deactivate(_ context.Context, id string) error {
	role, ok := r.roles[id]
	if !ok {
		return domain.ErrRoleNotFound
	}
	role.IsActive = false
	return nil
}

type stubAssignmentRepo struct {
	seq         int
	roles       *stubRoleRepo
	assignments map[string]*domain.RoleAssignment // keyed by userID+"/"+roleID
}

func newStubAssignmentRepo(roles *stubRoleRepo) *stubAssignmentRepo {
	return &stubAssignmentRepo{roles: roles, assignments: make(map[string]*domain.RoleAssignment)}
}

func (r *stubAssignmentRepo) key(userID, roleID string) string {
	return userID + "/" + roleID
}

func (r *stubAssignmentRepo) Upsert(_ context.Context, userID, roleID string) (*domain.RoleAssignment, bool, error) {
	if existing, ok := r.assignments[r.key(userID, roleID)]; ok {
		existing.IsActive = true
		clone := *existing
		return &clone, false, nil
	}
	r.seq++
	created := &domain.RoleAssignment{
		ID:        fmt.Sprintf("assignment-%d", r.seq),
		UserID:    userID,
		RoleID:    roleID,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	r.assignments[r.key(userID, roleID)] = created
	clone := *created
	return &clone, true, nil
}

func (r *stubAssignmentRepo) Deactivate(_ context.Context, userID, roleID string) error {
	existing, ok := r.assignments[r.key(userID, roleID)]
	if !ok {
		return domain.ErrAssignmentNotFound
	}
	existing.IsActive = false
	return nil
}

func (r *stubAssignmentRepo) ListActiveByUser(_ context.Context, userID string) ([]domain.GrantedRole, error) {
	out := make([]domain.GrantedRole, 0)
	for _, a := range r.assignments {
		if a.UserID != userID || !a.IsActive {
			continue
		}
		role, ok := r.roles.roles[a.RoleID]
		if !ok {
			continue
		}
		out = append(out, domain.GrantedRole{Role: *role, Assignment: *a})
	}
	return out, nil
}

func (r *stubAssignmentRepo) EffectiveRoles(_ context.Context, userID string) ([]domain.Role, error) {
	out := make([]domain.Role, 0)
	for _, a := range r.assignments {
		if a.UserID != userID || !a.IsActive {
			continue
		}
		role, ok := r.roles.roles[a.RoleID]
		if !ok || !role.IsActive {
			continue
		}
		out = append(out, *role)
	}
	return out, nil
}

// stubSigner issues opaque tokens resolved through an in-memory table,
// which keeps the services decoupled from any real JWT implementation.
type stubSigner struct {
	seq    int
	tokens map[string]*ports.TokenClaims
}

func newStubSigner() *stubSigner {
	return &stubSigner{tokens: make(map[string]*ports.TokenClaims)}
}

func (s *stubSigner) Sign(userID, username, tokenType string, ttl time.Duration) (string, error) {
	s.seq++
	token := fmt.Sprintf("%s-token-%d", tokenType, s.seq)
	s.tokens[token] = &ports.TokenClaims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		TokenID:   fmt.Sprintf("jti-%d", s.seq),
		ExpiresAt: time.Now().Add(ttl),
	}
	return token, nil
}

func (s *stubSigner) Verify(token string) (*ports.TokenClaims, error) {
	claims, ok := s.tokens[token]
	if !ok || time.Now().After(claims.ExpiresAt) {
		return nil, domain.ErrInvalidToken
	}
	clone := *claims
	return &clone, nil
}

type stubRevoker struct {
	revoked map[string]bool
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]bool)}
}

func (s *stubRevoker) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	s.revoked[tokenID] = true
	return nil
}

func (s *stubRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], nil
}
