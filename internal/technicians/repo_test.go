package technicians

import (
	"context"
	"testing"

	"github.com/brightideas/dispatch-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTechniciansTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS technicians (
  badge_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  photo_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM technicians").Error)
	return db
}

func TestTechnicianRepoUpsertOverwritesSameBadge(t *testing.T) {
	repo := NewRepository(setupTechniciansTestDB(t))
	ctx := context.Background()

	photo := "https://storage.googleapis.com/b/technician_photos/T001_a.jpg"
	require.NoError(t, repo.Upsert(ctx, &models.Technician{BadgeID: "T001", Name: "Jane Doe", PhotoURL: &photo}))
	require.NoError(t, repo.Upsert(ctx, &models.Technician{BadgeID: "T001", Name: "Jane Smith", PhotoURL: &photo}))

	techs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, techs, 1)
	assert.Equal(t, "Jane Smith", techs[0].Name)

	found, err := repo.FindByBadge(ctx, "T001")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", found.Name)
	require.NotNil(t, found.PhotoURL)
}

func TestTechnicianRepoFindMissingBadge(t *testing.T) {
	repo := NewRepository(setupTechniciansTestDB(t))

	_, err := repo.FindByBadge(context.Background(), "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTechnicianRepoDelete(t *testing.T) {
	repo := NewRepository(setupTechniciansTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Technician{BadgeID: "T002", Name: "Rob Lee"}))
	require.NoError(t, repo.Delete(ctx, "T002"))

	_, err := repo.FindByBadge(ctx, "T002")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
