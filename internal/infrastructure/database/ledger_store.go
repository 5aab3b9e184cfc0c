package database

import (
	"context"
	"errors"
	"fmt"

	"sharesreg-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var holdingUpdateColumns = []string{
	"first_name", "last_name", "id_number", "email", "phone",
	"certificate_number", "shares", "share_type", "percentage", "date_issued",
	"member_interest", "date_joined", "is_active", "updatedAt",
}

// LedgerStore persists registers in Postgres (or any GORM dialect).
type LedgerStore struct {
	DB *gorm.DB
}

// Holdings loads every holding of a company with its certificate and transfer history.
func (s *LedgerStore) Holdings(ctx context.Context, companyID uuid.UUID) ([]*domain.Holding, error) {
	return loadHoldings(s.DB.WithContext(ctx), companyID)
}

// Update runs one read-modify-write of a company's register in a single transaction.
// The company row is locked FOR UPDATE before the holdings are read, so concurrent writers
// on any instance queue behind each other. Nothing is written when fn fails.
func (s *LedgerStore) Update(ctx context.Context, companyID uuid.UUID, fn func(*domain.Company, []*domain.Holding) ([]*domain.Holding, error)) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company domain.Company
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("company_id = ?", companyID).
			First(&company).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrCompanyNotFound
		}
		if err != nil {
			return err
		}

		holdings, err := loadHoldings(tx, companyID)
		if err != nil {
			return err
		}
		stored := snapshot(holdings)

		changed, err := fn(&company, holdings)
		if err != nil {
			return err
		}
		return saveHoldings(tx, companyID, stored, changed)
	})
}

func loadHoldings(db *gorm.DB, companyID uuid.UUID) ([]*domain.Holding, error) {
	var rows []HoldingRow
	if err := db.Where("company_id = ?", companyID).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*domain.Holding{}, nil
	}

	holdings := make([]*domain.Holding, 0, len(rows))
	byID := make(map[uuid.UUID]*domain.Holding, len(rows))
	for _, row := range rows {
		h := row.toDomain()
		holdings = append(holdings, h)
		byID[h.ID] = h
	}

	var certs []CertificateRow
	if err := db.Where("company_id = ?", companyID).Order("serial ASC").Find(&certs).Error; err != nil {
		return nil, err
	}
	for _, c := range certs {
		if h, ok := byID[c.HoldingID]; ok {
			h.CertificateHistory = append(h.CertificateHistory, c.toDomain())
		}
	}

	var transfers []TransferRow
	if err := db.Where("company_id = ?", companyID).Order("holding_id ASC, seq ASC").Find(&transfers).Error; err != nil {
		return nil, err
	}
	for _, t := range transfers {
		h, ok := byID[t.HoldingID]
		if !ok {
			continue
		}
		rec, err := t.toDomain()
		if err != nil {
			return nil, fmt.Errorf("transfer record %s/%d: %w", t.HoldingID, t.Seq, err)
		}
		h.TransferHistory = append(h.TransferHistory, rec)
	}
	return holdings, nil
}

// storedState is what the transaction read: certificate owners and statuses by serial,
// and the number of transfer records per holding.
type storedState struct {
	certs     map[int]CertificateRow
	transfers map[uuid.UUID]int
}

func snapshot(holdings []*domain.Holding) storedState {
	st := storedState{certs: map[int]CertificateRow{}, transfers: map[uuid.UUID]int{}}
	for _, h := range holdings {
		for _, row := range toCertificateRows(h) {
			st.certs[row.Serial] = row
		}
		st.transfers[h.ID] = len(h.TransferHistory)
	}
	return st
}

// saveHoldings writes changed holdings. Certificates and transfer records are append-only:
// new ones are plain inserts, so a serial issued twice fails the transaction. Stored
// certificates may only change status.
func saveHoldings(tx *gorm.DB, companyID uuid.UUID, stored storedState, changed []*domain.Holding) error {
	for _, h := range changed {
		if h.CompanyID != companyID {
			return fmt.Errorf("holding %s does not belong to company %s", h.ID, companyID)
		}
		row := toHoldingRow(h)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "holding_id"}},
			DoUpdates: clause.AssignmentColumns(holdingUpdateColumns),
		}).Create(&row).Error; err != nil {
			return err
		}

		var inserts []CertificateRow
		for _, cert := range toCertificateRows(h) {
			prev, ok := stored.certs[cert.Serial]
			if !ok {
				inserts = append(inserts, cert)
				continue
			}
			if prev.HoldingID != h.ID {
				return fmt.Errorf("certificate %s is already issued to another holding", cert.CertificateNumber)
			}
			if prev.Status == cert.Status && deref(prev.ArchivedDate) == deref(cert.ArchivedDate) {
				continue
			}
			res := tx.Model(&CertificateRow{}).
				Where("company_id = ? AND serial = ? AND holding_id = ?", companyID, cert.Serial, h.ID).
				Updates(map[string]interface{}{"status": cert.Status, "archived_date": cert.ArchivedDate})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != 1 {
				return fmt.Errorf("certificate %s changed concurrently", cert.CertificateNumber)
			}
		}
		if len(inserts) > 0 {
			if err := tx.Create(&inserts).Error; err != nil {
				return err
			}
		}

		transfers, err := toTransferRows(h)
		if err != nil {
			return err
		}
		have := stored.transfers[h.ID]
		if len(transfers) < have {
			return fmt.Errorf("holding %s has %d stored transfer records, got %d", h.ID, have, len(transfers))
		}
		if fresh := transfers[have:]; len(fresh) > 0 {
			if err := tx.Create(&fresh).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
