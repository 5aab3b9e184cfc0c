package companies

import (
	"context"
	"testing"

	"sharesreg-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Company{}))
	return &Service{DB: db}
}

func TestCreateCompany_Validation(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	_, err := s.CreateCompany(ctx, CreateCompanyInput{Name: "  ", CompanyType: domain.PrivateCompany})
	assert.ErrorIs(t, err, ErrNameTypeRequired)
	_, err = s.CreateCompany(ctx, CreateCompanyInput{Name: "Acme", CompanyType: "Partnership"})
	assert.ErrorIs(t, err, ErrInvalidCompanyType)
	_, err = s.CreateCompany(ctx, CreateCompanyInput{Name: "Acme", CompanyType: domain.PrivateCompany, IssuedShares: -1})
	assert.ErrorIs(t, err, ErrInvalidShares)
}

func TestCreateAndFindCompany(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	created, err := s.CreateCompany(ctx, CreateCompanyInput{Name: " Acme ", CompanyType: domain.PrivateCompany, IssuedShares: 500})
	require.NoError(t, err)
	assert.Equal(t, "Acme", created.Name)

	trust, err := s.CreateCompany(ctx, CreateCompanyInput{Name: "Family Trust", CompanyType: domain.Trust, IssuedShares: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(0), trust.IssuedShares)

	found, err := s.FindCompany(ctx, created.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), found.IssuedShares)
	assert.Equal(t, domain.ShareBased, found.OwnershipModel())

	_, err = s.FindCompany(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)

	all, err := s.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Acme", all[0].Name)
}
