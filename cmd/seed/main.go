// Command seed creates the admin user and the demo registers.
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	authsvc "sharesreg-backend/internal/application/auth"
	companysvc "sharesreg-backend/internal/application/companies"
	"sharesreg-backend/internal/application/ledger"
	"sharesreg-backend/internal/config"
	"sharesreg-backend/internal/domain"
	"sharesreg-backend/internal/infrastructure/database"
	"sharesreg-backend/internal/pkg/constants"
	"sharesreg-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type demoCompany struct {
	input    companysvc.CreateCompanyInput
	holdings []domain.NewHolding
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

var demoCompanies = []demoCompany{
	{
		input: companysvc.CreateCompanyInput{
			Name:          "Smith Holdings (Pty) Ltd",
			IDOrRegNumber: "2015/123456/07",
			CompanyType:   domain.PrivateCompany,
			IssuedShares:  10000,
		},
		holdings: []domain.NewHolding{{
			Holder:            domain.Holder{FirstName: "John", LastName: "Smith", IDNumber: "8001015009087", Email: "john@example.com"},
			CertificateNumber: "001",
			Shares:            int64Ptr(5000),
			ShareType:         domain.Ordinary,
		}},
	},
	{
		input: companysvc.CreateCompanyInput{
			Name:          "Doe Trading CC",
			IDOrRegNumber: "CK2001/012345/23",
			CompanyType:   domain.ClosedCorporation,
		},
		holdings: []domain.NewHolding{{
			Holder:         domain.Holder{FirstName: "Jane", LastName: "Doe", IDNumber: "8505050123083", Email: "jane@example.com"},
			MemberInterest: float64Ptr(75),
		}},
	},
	{
		input: companysvc.CreateCompanyInput{
			Name:        "Mokoena Family Trust",
			CompanyType: domain.Trust,
		},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Postgres connection failed")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Postgres migration failed")
	}
	if err := seed(context.Background(), db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Msg("Seed complete")
}

func seed(ctx context.Context, db *gorm.DB, adminEmail, adminPassword string) error {
	if err := seedAdmin(ctx, db, adminEmail, adminPassword); err != nil {
		return err
	}
	companies := &companysvc.Service{DB: db}
	ledgerSvc := &ledger.Service{Store: &database.LedgerStore{DB: db}, Companies: companies}

	for _, demo := range demoCompanies {
		var existing int64
		if err := db.WithContext(ctx).Model(&domain.Company{}).Where("name = ?", demo.input.Name).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			log.Info().Str("company", demo.input.Name).Msg("Company exists, skipping")
			continue
		}
		company, err := companies.CreateCompany(ctx, demo.input)
		if err != nil {
			return fmt.Errorf("create %s: %w", demo.input.Name, err)
		}
		for _, in := range demo.holdings {
			if _, err := ledgerSvc.AddHolding(ctx, company.CompanyID, in); err != nil {
				return fmt.Errorf("add holding to %s: %w", company.Name, err)
			}
		}
		log.Info().Str("company", company.Name).Int("holdings", len(demo.holdings)).Msg("Company seeded")
	}
	return nil
}

func seedAdmin(ctx context.Context, db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validation.IsValidEmail(email) {
		return fmt.Errorf("invalid SEED_ADMIN_EMAIL %q", email)
	}
	var existing domain.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Info().Str("email", email).Msg("Admin user exists, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if !validation.IsValidPassword(password) {
		return errors.New("SEED_ADMIN_PASSWORD must be at least 8 characters with a letter, a number and a special character")
	}
	hash, err := authsvc.HashPassword(password)
	if err != nil {
		return err
	}
	user := &domain.User{
		Fullname:     "Practice Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         constants.Superadmin,
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("Admin user created")
	return nil
}
