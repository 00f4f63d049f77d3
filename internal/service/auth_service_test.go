package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/repository"
)

type fakeUserRepo struct {
	nextID uint
	users  map[uint]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]models.User{}}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	for _, user := range f.users {
		if user.Email == normalized {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	var out []models.User
	for _, user := range f.users {
		if filter.Role != "" && string(user.Role) != filter.Role {
			continue
		}
		out = append(out, user)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	f.users[user.ID] = *user
	return nil
}

// plainHasher keeps auth tests fast; bcrypt is exercised in integration.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(hash, password string) bool { return hash == "hashed:"+password }

func newAuthFixture(t *testing.T) (*authService, *fakeUserRepo, *recordingAudit) {
	t.Helper()
	users := newFakeUserRepo()
	audit := &recordingAudit{}
	svc := NewAuthService(users, plainHasher{}, audit, validator.New(), "test-secret", time.Hour, testLogger()).(*authService)
	return svc, users, audit
}

func seedUser(users *fakeUserRepo, email, password string, role models.UserRole) models.User {
	user := models.User{
		Email:        email,
		PasswordHash: "hashed:" + password,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Role:         role,
		IsActive:     true,
	}
	_ = users.Create(context.Background(), &user)
	return user
}

func TestRegisterDefaultsToStudentRole(t *testing.T) {
	svc, users, _ := newAuthFixture(t)

	response, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:           "New.Student@Example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
		FirstName:       "New",
		LastName:        "Student",
	})
	require.NoError(t, err)
	require.Equal(t, string(models.RoleStudent), response.Role)
	require.Equal(t, "new.student@example.com", response.Email)
	require.Len(t, users.users, 1)
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	svc, users, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:           "student@example.com",
		Password:        "password123",
		PasswordConfirm: "password456",
		FirstName:       "A",
		LastName:        "B",
	})
	require.ErrorIs(t, err, ErrValidation)
	require.Empty(t, users.users)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:           "boss@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
		FirstName:       "Big",
		LastName:        "Boss",
		Role:            "admin",
	})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(users, "taken@example.com", "password123", models.RoleStudent)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:           "taken@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
		FirstName:       "A",
		LastName:        "B",
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestLoginIssuesSignedToken(t *testing.T) {
	svc, users, audit := newAuthFixture(t)
	user := seedUser(users, "lecturer@example.com", "password123", models.RoleLecturer)

	issuedAt := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc.now = fixedClock(issuedAt)

	response, err := svc.Login(context.Background(), dto.LoginRequest{Email: "lecturer@example.com", Password: "password123"}, RequestMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	require.Equal(t, "Bearer", response.TokenType)
	require.Equal(t, int64(3600), response.ExpiresIn)

	parsed, err := jwt.Parse(response.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(fixedClock(issuedAt)))
	require.NoError(t, err)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, float64(user.ID), claims["sub"])
	require.Equal(t, "lecturer", claims["role"])

	// Last login stamped, success audited.
	stored := users.users[user.ID]
	require.NotNil(t, stored.LastLogin)
	require.Len(t, audit.entries, 1)
	require.Equal(t, models.AuditActionLogin, audit.entries[0].Action)
	require.True(t, audit.entries[0].Success)
	require.Equal(t, "10.0.0.1", audit.entries[0].IPAddress)
}

func TestLoginFailureIsAudited(t *testing.T) {
	svc, users, audit := newAuthFixture(t)
	user := seedUser(users, "student@example.com", "password123", models.RoleStudent)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "student@example.com", Password: "wrong-password"}, RequestMeta{})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, audit.entries, 1)
	require.False(t, audit.entries[0].Success)
	require.Equal(t, user.ID, *audit.entries[0].UserID)

	// Unknown email audits without a user reference.
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "ghost@example.com", Password: "whatever1"}, RequestMeta{})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, audit.entries, 2)
	require.Nil(t, audit.entries[1].UserID)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user := seedUser(users, "gone@example.com", "password123", models.RoleStudent)
	user.IsActive = false
	users.users[user.ID] = user

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "gone@example.com", Password: "password123"}, RequestMeta{})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePasswordVerifiesOldCredential(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user := seedUser(users, "student@example.com", "password123", models.RoleStudent)
	actor := Actor{ID: user.ID, Role: models.RoleStudent}

	err := svc.ChangePassword(context.Background(), actor, dto.ChangePasswordRequest{
		OldPassword:        "not-the-password",
		NewPassword:        "newpassword1",
		NewPasswordConfirm: "newpassword1",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), actor, dto.ChangePasswordRequest{
		OldPassword:        "password123",
		NewPassword:        "newpassword1",
		NewPasswordConfirm: "newpassword1",
	})
	require.NoError(t, err)
	require.Equal(t, "hashed:newpassword1", users.users[user.ID].PasswordHash)
}

func TestLogoutRecordsAuditEntry(t *testing.T) {
	svc, _, audit := newAuthFixture(t)

	svc.Logout(context.Background(), Actor{ID: 9, Role: models.RoleStudent}, RequestMeta{Path: "/api/v1/auth/logout", Method: "POST"})

	require.Len(t, audit.entries, 1)
	require.Equal(t, models.AuditActionLogout, audit.entries[0].Action)
	require.Equal(t, uint(9), *audit.entries[0].UserID)
}
