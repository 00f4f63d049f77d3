package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/models"
)

func newUserServiceFixture(t *testing.T) (UserService, *fakeUserRepo) {
	t.Helper()

	users := newFakeUserRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewUserService(users, validate, testLogger()), users
}

func TestUserGetMissing(t *testing.T) {
	service, _ := newUserServiceFixture(t)

	_, err := service.Get(context.Background(), 77)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserUpdateSelfTouchesOnlyProfileFields(t *testing.T) {
	service, users := newUserServiceFixture(t)
	seeded := seedUser(users, "student@test.com", "pw", models.RoleStudent)

	firstName := "  Grace  "
	bio := "<b>Hi</b> there"
	payload := dto.SelfUpdateRequest{FirstName: &firstName, Bio: &bio}

	updated, err := service.UpdateSelf(context.Background(), Actor{ID: seeded.ID, Role: models.RoleStudent}, payload)
	require.NoError(t, err)

	require.Equal(t, "Grace", updated.FirstName)
	require.NotContains(t, updated.Bio, "<b>")
	require.Contains(t, updated.Bio, "Hi")
	require.Equal(t, string(models.RoleStudent), updated.Role)
	require.Equal(t, seeded.Email, updated.Email)
}

func TestUserAdminUpdateRequiresAdmin(t *testing.T) {
	service, users := newUserServiceFixture(t)
	seeded := seedUser(users, "student@test.com", "pw", models.RoleStudent)

	role := "lecturer"
	payload := dto.AdminUpdateUserRequest{Role: &role}

	_, err := service.AdminUpdate(context.Background(), Actor{ID: 9, Role: models.RoleLecturer}, seeded.ID, payload)
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := service.AdminUpdate(context.Background(), Actor{ID: 1, Role: models.RoleAdmin}, seeded.ID, payload)
	require.NoError(t, err)
	require.Equal(t, "lecturer", updated.Role)
}

func TestUserAdminUpdateRejectsUnknownRole(t *testing.T) {
	service, users := newUserServiceFixture(t)
	seeded := seedUser(users, "student@test.com", "pw", models.RoleStudent)

	role := "superuser"
	payload := dto.AdminUpdateUserRequest{Role: &role}

	_, err := service.AdminUpdate(context.Background(), Actor{ID: 1, Role: models.RoleAdmin}, seeded.ID, payload)

	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestUserAdminUpdateDeactivatesAccount(t *testing.T) {
	service, users := newUserServiceFixture(t)
	seeded := seedUser(users, "student@test.com", "pw", models.RoleStudent)

	inactive := false
	payload := dto.AdminUpdateUserRequest{IsActive: &inactive}

	updated, err := service.AdminUpdate(context.Background(), Actor{ID: 1, Role: models.RoleAdmin}, seeded.ID, payload)
	require.NoError(t, err)
	require.False(t, updated.IsActive)
	require.False(t, users.users[seeded.ID].IsActive)
}

func TestUserListFiltersByRole(t *testing.T) {
	service, users := newUserServiceFixture(t)
	seedUser(users, "a@test.com", "pw", models.RoleStudent)
	seedUser(users, "b@test.com", "pw", models.RoleLecturer)
	seedUser(users, "c@test.com", "pw", models.RoleStudent)

	result, err := service.List(context.Background(), dto.UserListRequest{Role: "student"})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	for _, item := range result.Items {
		require.Equal(t, "student", item.Role)
	}
}
