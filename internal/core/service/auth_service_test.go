package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

func newAuthService(users *stubUserRepo, assignments *stubAssignmentRepo, signer *stubSigner, revoker ports.TokenRevoker) *AuthService {
	return NewAuthService(users, assignments, signer, revoker, NewPasswordPolicy(8), 15*time.Minute, 7*24*time.Hour)
}

func registerInput() ports.RegisterInput {
	return ports.RegisterInput{
		Username:        "bob",
		Email:           "bob@x.com",
		Password:        "Secret123!",
		PasswordConfirm: "Secret123!",
	}
}

func fieldReasons(t *testing.T, err error) map[string]string {
	t.Helper()
	ve, ok := domain.AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := make(map[string]string, len(ve.Fields))
	for _, f := range ve.Fields {
		fields[f.Field] = f.Reason
	}
	return fields
}

func TestAuthService_Register_HashesPassword(t *testing.T) {
	users := newStubUserRepo()
	roles := newStubRoleRepo()
	svc := newAuthService(users, newStubAssignmentRepo(roles), newStubSigner(), nil)

	user, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected assigned id")
	}
	stored, _ := users.FindByID(context.Background(), user.ID)
	if stored.PasswordHash == "Secret123!" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Secret123!")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if !stored.IsActive {
		t.Fatalf("new user should be active")
	}
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	roles := newStubRoleRepo()
	svc := newAuthService(newStubUserRepo(), newStubAssignmentRepo(roles), newStubSigner(), nil)

	in := registerInput()
	in.PasswordConfirm = "Different123!"
	_, err := svc.Register(context.Background(), in)
	if _, ok := fieldReasons(t, err)["password_confirm"]; !ok {
		t.Fatalf("expected password_confirm field error, got %v", err)
	}
}

func TestAuthService_Register_WeakPasswords(t *testing.T) {
	roles := newStubRoleRepo()
	svc := newAuthService(newStubUserRepo(), newStubAssignmentRepo(roles), newStubSigner(), nil)

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "Ab1!"},
		{"entirely numeric", "1234567890"},
		{"similar to username", "bob12345"},
	}
	for _, tc := range cases {
		in := registerInput()
		in.Password = tc.password
		in.PasswordConfirm = tc.password
		_, err := svc.Register(context.Background(), in)
		if _, ok := fieldReasons(t, err)["password"]; !ok {
			t.Fatalf("%s: expected password field error, got %v", tc.name, err)
		}
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	roles := newStubRoleRepo()
	svc := newAuthService(newStubUserRepo(), newStubAssignmentRepo(roles), newStubSigner(), nil)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	in := registerInput()
	in.Email = "other@x.com"
	_, err := svc.Register(context.Background(), in)
	if _, ok := fieldReasons(t, err)["username"]; !ok {
		t.Fatalf("expected username field error, got %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	roles := newStubRoleRepo()
	svc := newAuthService(newStubUserRepo(), newStubAssignmentRepo(roles), newStubSigner(), nil)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	in := registerInput()
	in.Username = "robert"
	_, err := svc.Register(context.Background(), in)
	if _, ok := fieldReasons(t, err)["email"]; !ok {
		t.Fatalf("expected email field error, got %v", err)
	}
}

func TestAuthService_Register_StorageRaceTranslated(t *testing.T) {
	// Simulate the race where the proactive check passes but the unique
	// index rejects the insert: the conflict must surface as the same
	// field-level validation error.
	err := translateConflict(domain.ErrUsernameTaken)
	if _, ok := fieldReasons(t, err)["username"]; !ok {
		t.Fatalf("expected username field error, got %v", err)
	}
	err = translateConflict(domain.ErrEmailTaken)
	if _, ok := fieldReasons(t, err)["email"]; !ok {
		t.Fatalf("expected email field error, got %v", err)
	}
}

func TestAuthService_Login_IssuesTokenPair(t *testing.T) {
	users := newStubUserRepo()
	roles := newStubRoleRepo()
	signer := newStubSigner()
	svc := newAuthService(users, newStubAssignmentRepo(roles), signer, nil)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	pair, user, err := svc.Login(context.Background(), "bob", "Secret123!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if user.Username != "bob" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.LastLoginAt == nil {
		t.Fatalf("expected last login timestamp")
	}

	access, err := signer.Verify(pair.AccessToken)
	if err != nil || access.TokenType != domain.TokenTypeAccess {
		t.Fatalf("unexpected access claims: %+v (%v)", access, err)
	}
	refresh, err := signer.Verify(pair.RefreshToken)
	if err != nil || refresh.TokenType != domain.TokenTypeRefresh {
		t.Fatalf("unexpected refresh claims: %+v (%v)", refresh, err)
	}
}

func TestAuthService_Login_UnknownUserAndWrongPasswordIndistinguishable(t *testing.T) {
	roles := newStubRoleRepo()
	svc := newAuthService(newStubUserRepo(), newStubAssignmentRepo(roles), newStubSigner(), nil)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, wrongPassword := svc.Login(context.Background(), "bob", "wrong")
	_, _, unknownUser := svc.Login(context.Background(), "nosuchuser", "x")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPassword)
	}
	if !errors.Is(unknownUser, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", unknownUser)
	}
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	users := newStubUserRepo()
	roles := newStubRoleRepo()
	svc := newAuthService(users, newStubAssignmentRepo(roles), newStubSigner(), nil)

	user, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	users.users[user.ID].IsActive = false

	_, _, err = svc.Login(context.Background(), "bob", "Secret123!")
	if !errors.Is(err, domain.ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuthService_Refresh_IssuesNewAccessToken(t *testing.T) {
	roles := newStubRoleRepo()
	signer := newStubSigner()
	svc := newAuthService(newStubUserRepo(), newStubAssignmentRepo(roles), signer, nil)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	pair, user, err := svc.Login(context.Background(), "bob", "Secret123!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	access, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	claims, err := signer.Verify(access)
	if err != nil {
		t.Fatalf("new access token invalid: %v", err)
	}
	if claims.TokenType != domain.TokenTypeAccess || claims.UserID != user.ID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	roles := newStubRoleRepo()
	svc := newAuthService(newStubUserRepo(), newStubAssignmentRepo(roles), newStubSigner(), nil)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	pair, _, err := svc.Login(context.Background(), "bob", "Secret123!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for access token, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestAuthService_Logout_RevokesRefreshToken(t *testing.T) {
	roles := newStubRoleRepo()
	revoker := newStubRevoker()
	svc := newAuthService(newStubUserRepo(), newStubAssignmentRepo(roles), newStubSigner(), revoker)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	pair, _, err := svc.Login(context.Background(), "bob", "Secret123!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected revoked refresh token to be rejected, got %v", err)
	}

	// Logging out twice is not an error.
	if err := svc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}
}

func TestAuthService_Logout_WithoutRevokerIsNoop(t *testing.T) {
	roles := newStubRoleRepo()
	svc := newAuthService(newStubUserRepo(), newStubAssignmentRepo(roles), newStubSigner(), nil)

	if err := svc.Logout(context.Background(), "whatever"); err != nil {
		t.Fatalf("logout without revoker should succeed, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	users := newStubUserRepo()
	roles := newStubRoleRepo()
	svc := newAuthService(users, newStubAssignmentRepo(roles), newStubSigner(), nil)

	user, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "wrong", "NewSecret456!", "NewSecret456!"); err == nil {
		t.Fatalf("expected old_password error")
	} else if _, ok := fieldReasons(t, err)["old_password"]; !ok {
		t.Fatalf("expected old_password field error, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "Secret123!", "NewSecret456!", "Mismatch"); err == nil {
		t.Fatalf("expected new_password_confirm error")
	} else if _, ok := fieldReasons(t, err)["new_password_confirm"]; !ok {
		t.Fatalf("expected new_password_confirm field error, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "Secret123!", "NewSecret456!", "NewSecret456!"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "bob", "NewSecret456!"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "bob", "Secret123!"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password should no longer verify, got %v", err)
	}
}

func TestAuthService_Profile_RolesFollowJointFlag(t *testing.T) {
	users := newStubUserRepo()
	roles := newStubRoleRepo()
	assignments := newStubAssignmentRepo(roles)
	svc := newAuthService(users, assignments, newStubSigner(), nil)

	user, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	profile, err := svc.GetProfile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if len(profile.Roles) != 0 {
		t.Fatalf("expected empty role list, got %+v", profile.Roles)
	}

	staff, _ := roles.Create(context.Background(), &domain.Role{Name: "Staff", Code: "staff", IsActive: true})
	if _, _, err := assignments.Upsert(context.Background(), user.ID, staff.ID); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	profile, err = svc.GetProfile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if len(profile.Roles) != 1 || profile.Roles[0].Code != "staff" {
		t.Fatalf("expected staff role, got %+v", profile.Roles)
	}

	// Deactivating the role empties the effective list even though the
	// assignment row stays active.
	if err := roles.Deactivate(context.Background(), staff.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	profile, err = svc.GetProfile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if len(profile.Roles) != 0 {
		t.Fatalf("expected empty role list after role deactivation, got %+v", profile.Roles)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	users := newStubUserRepo()
	roles := newStubRoleRepo()
	svc := newAuthService(users, newStubAssignmentRepo(roles), newStubSigner(), nil)

	user, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	other := registerInput()
	other.Username = "carol"
	other.Email = "carol@x.com"
	other.Password = "Another456!"
	other.PasswordConfirm = "Another456!"
	if _, err := svc.Register(context.Background(), other); err != nil {
		t.Fatalf("second register failed: %v", err)
	}

	first := "Robert"
	profile, err := svc.UpdateProfile(context.Background(), user.ID, ports.ProfileUpdate{FirstName: &first})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if profile.User.FirstName != "Robert" {
		t.Fatalf("first name not updated: %+v", profile.User)
	}
	if profile.User.Email != "bob@x.com" {
		t.Fatalf("unspecified email changed: %+v", profile.User)
	}

	taken := "carol@x.com"
	_, err = svc.UpdateProfile(context.Background(), user.ID, ports.ProfileUpdate{Email: &taken})
	if _, ok := fieldReasons(t, err)["email"]; !ok {
		t.Fatalf("expected email field error, got %v", err)
	}
}
