package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/moses-maker/educore-api/internal/models"
)

func TestAuditLogRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditLogRepository(db)

	actor := models.User{Email: "admin@test.com", PasswordHash: "x", FirstName: "Ada", LastName: "Admin", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&actor).Error)

	targetID := uint(7)
	failed := false
	entries := []models.AuditLog{
		{UserID: &actor.ID, Action: models.AuditActionCreate, Description: "POST /api/v1/courses", TargetType: "course", TargetID: &targetID, Success: true},
		{UserID: &actor.ID, Action: models.AuditActionDelete, Description: "DELETE /api/v1/courses/7", TargetType: "course", TargetID: &targetID, Success: true},
		{Action: models.AuditActionLogin, Description: "failed login", Success: failed, ErrorMessage: "invalid credentials"},
	}
	for i := range entries {
		require.NoError(t, repo.Create(context.Background(), &entries[i]))
	}

	byActor, total, err := repo.List(context.Background(), AuditLogFilter{UserID: &actor.ID, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, byActor, 2)

	byAction, total, err := repo.List(context.Background(), AuditLogFilter{Action: string(models.AuditActionLogin), PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "failed login", byAction[0].Description)

	success := true
	byOutcome, total, err := repo.List(context.Background(), AuditLogFilter{Success: &success, TargetType: "course", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, byOutcome, 2)

	future := time.Now().Add(time.Hour)
	none, total, err := repo.List(context.Background(), AuditLogFilter{From: &future, PageSize: 10})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, none)
}

func TestAuditLogRepositorySurvivesNilActor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditLogRepository(db)

	entry := models.AuditLog{Action: models.AuditActionAccessDenied, Description: "anonymous access attempt", Success: false}
	require.NoError(t, repo.Create(context.Background(), &entry))

	stored, err := repo.GetByID(context.Background(), entry.ID)
	require.NoError(t, err)
	require.Nil(t, stored.UserID)
	require.Equal(t, models.AuditActionAccessDenied, stored.Action)
	require.False(t, stored.Timestamp.IsZero())
}
