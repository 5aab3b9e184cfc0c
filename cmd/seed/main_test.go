package main

import (
	"context"
	"testing"

	"sharesreg-backend/internal/domain"
	"sharesreg-backend/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSeed_Idempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	ctx := context.Background()

	require.NoError(t, seed(ctx, db, "Admin@Example.com", "Secret#2026"))
	require.NoError(t, seed(ctx, db, "admin@example.com", "Secret#2026"))

	var users []domain.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@example.com", users[0].Email)
	assert.Equal(t, "superadmin", users[0].Role)

	var companies int64
	require.NoError(t, db.Model(&domain.Company{}).Count(&companies).Error)
	assert.Equal(t, int64(3), companies)

	var smith domain.Company
	require.NoError(t, db.Where("name = ?", "Smith Holdings (Pty) Ltd").First(&smith).Error)
	store := &database.LedgerStore{DB: db}
	holdings, err := store.Holdings(ctx, smith.CompanyID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "001", holdings[0].Share.CertificateNumber)
	assert.Equal(t, 50.0, holdings[0].Share.Percentage)
}

func TestSeed_RejectsWeakPassword(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	assert.Error(t, seed(context.Background(), db, "admin@example.com", "weak"))
}
