package database

import (
	"encoding/json"
	"strconv"
	"time"

	"sharesreg-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// HoldingRow flattens a holding into one row. Share columns are null for
// interest-based holdings and vice versa.
type HoldingRow struct {
	HoldingID         uuid.UUID `gorm:"column:holding_id;type:uuid;primaryKey"`
	CompanyID         uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	Position          int       `gorm:"column:position;not null"`
	Model             string    `gorm:"column:model;type:varchar(20);not null"`
	FirstName         string    `gorm:"column:first_name;not null"`
	LastName          string    `gorm:"column:last_name;not null"`
	IDNumber          string    `gorm:"column:id_number"`
	Email             string    `gorm:"column:email"`
	Phone             string    `gorm:"column:phone"`
	CertificateNumber *string   `gorm:"column:certificate_number"`
	Shares            *int64    `gorm:"column:shares"`
	ShareType         *string   `gorm:"column:share_type;type:varchar(20)"`
	Percentage        *float64  `gorm:"column:percentage;type:decimal(9,2)"`
	DateIssued        *string   `gorm:"column:date_issued;type:varchar(10)"`
	MemberInterest    *float64  `gorm:"column:member_interest;type:decimal(9,2)"`
	DateJoined        *string   `gorm:"column:date_joined;type:varchar(10)"`
	IsActive          bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time `gorm:"column:createdAt"`
	UpdatedAt         time.Time `gorm:"column:updatedAt"`
}

func (HoldingRow) TableName() string {
	return "Holdings"
}

// CertificateRow is unique per company by serial, the numeric value of the certificate number.
type CertificateRow struct {
	CompanyID         uuid.UUID `gorm:"column:company_id;type:uuid;primaryKey"`
	Serial            int       `gorm:"column:serial;primaryKey;autoIncrement:false"`
	HoldingID         uuid.UUID `gorm:"column:holding_id;type:uuid;not null;index"`
	CertificateNumber string    `gorm:"column:certificate_number;not null"`
	Shares            int64     `gorm:"column:shares;not null"`
	ShareType         string    `gorm:"column:share_type;type:varchar(20);not null"`
	Percentage        float64   `gorm:"column:percentage;type:decimal(9,2);not null"`
	DateIssued        string    `gorm:"column:date_issued;type:varchar(10);not null"`
	Status            string    `gorm:"column:status;type:varchar(20);not null;default:'active'"`
	ArchivedDate      *string   `gorm:"column:archived_date;type:varchar(10)"`
	CreatedAt         time.Time `gorm:"column:createdAt"`
	UpdatedAt         time.Time `gorm:"column:updatedAt"`
}

func (CertificateRow) TableName() string {
	return "ShareCertificates"
}

// TransferRow is one history entry; Seq is its index in the holding's history.
type TransferRow struct {
	HoldingID            uuid.UUID      `gorm:"column:holding_id;type:uuid;primaryKey"`
	Seq                  int            `gorm:"column:seq;primaryKey;autoIncrement:false"`
	CompanyID            uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	Date                 string         `gorm:"column:date;type:varchar(10);not null"`
	Type                 string         `gorm:"column:type;type:varchar(20);not null"`
	Sender               datatypes.JSON `gorm:"column:sender;type:jsonb;not null"`
	Recipient            datatypes.JSON `gorm:"column:recipient;type:jsonb;not null"`
	Shares               int64          `gorm:"column:shares;not null;default:0"`
	ShareType            string         `gorm:"column:share_type;type:varchar(20)"`
	Percentage           float64        `gorm:"column:percentage;type:decimal(9,2);not null;default:0"`
	MemberInterest       float64        `gorm:"column:member_interest;type:decimal(9,2);not null;default:0"`
	OldCertificate       string         `gorm:"column:old_certificate"`
	NewCertificate       string         `gorm:"column:new_certificate"`
	RecipientCertificate string         `gorm:"column:recipient_certificate"`
	CreatedAt            time.Time      `gorm:"column:createdAt"`
}

func (TransferRow) TableName() string {
	return "TransferRecords"
}

func toHoldingRow(h *domain.Holding) HoldingRow {
	row := HoldingRow{
		HoldingID: h.ID,
		CompanyID: h.CompanyID,
		Position:  h.Position,
		Model:     string(h.Model),
		FirstName: h.FirstName,
		LastName:  h.LastName,
		IDNumber:  h.IDNumber,
		Email:     h.Email,
		Phone:     h.Phone,
		IsActive:  h.IsActive,
	}
	if s := h.Share; s != nil {
		shareType := string(s.ShareType)
		row.CertificateNumber = &s.CertificateNumber
		row.Shares = &s.Shares
		row.ShareType = &shareType
		row.Percentage = &s.Percentage
		row.DateIssued = &s.DateIssued
	}
	if i := h.Interest; i != nil {
		row.MemberInterest = &i.MemberInterest
		row.DateJoined = &i.DateJoined
	}
	return row
}

func (row HoldingRow) toDomain() *domain.Holding {
	h := &domain.Holding{
		ID:        row.HoldingID,
		CompanyID: row.CompanyID,
		Position:  row.Position,
		Model:     domain.OwnershipModel(row.Model),
		Holder: domain.Holder{
			FirstName: row.FirstName,
			LastName:  row.LastName,
			IDNumber:  row.IDNumber,
			Email:     row.Email,
			Phone:     row.Phone,
		},
		CertificateHistory: []domain.Certificate{},
		TransferHistory:    []domain.TransferRecord{},
		IsActive:           row.IsActive,
	}
	switch h.Model {
	case domain.ShareBased:
		h.Share = &domain.ShareHolding{
			CertificateNumber: deref(row.CertificateNumber),
			Shares:            derefInt(row.Shares),
			ShareType:         domain.ShareType(deref(row.ShareType)),
			Percentage:        derefFloat(row.Percentage),
			DateIssued:        deref(row.DateIssued),
		}
	case domain.InterestBased:
		h.Interest = &domain.InterestHolding{
			MemberInterest: derefFloat(row.MemberInterest),
			DateJoined:     deref(row.DateJoined),
		}
	}
	return h
}

func toCertificateRows(h *domain.Holding) []CertificateRow {
	rows := make([]CertificateRow, 0, len(h.CertificateHistory))
	for _, c := range h.CertificateHistory {
		serial, _ := strconv.Atoi(c.CertificateNumber)
		row := CertificateRow{
			CompanyID:         h.CompanyID,
			Serial:            serial,
			HoldingID:         h.ID,
			CertificateNumber: c.CertificateNumber,
			Shares:            c.Shares,
			ShareType:         string(c.ShareType),
			Percentage:        c.Percentage,
			DateIssued:        c.DateIssued,
			Status:            string(c.Status),
		}
		if c.ArchivedDate != "" {
			archived := c.ArchivedDate
			row.ArchivedDate = &archived
		}
		rows = append(rows, row)
	}
	return rows
}

func (row CertificateRow) toDomain() domain.Certificate {
	return domain.Certificate{
		CertificateNumber: row.CertificateNumber,
		Shares:            row.Shares,
		ShareType:         domain.ShareType(row.ShareType),
		Percentage:        row.Percentage,
		DateIssued:        row.DateIssued,
		Status:            domain.CertificateStatus(row.Status),
		ArchivedDate:      deref(row.ArchivedDate),
	}
}

func toTransferRows(h *domain.Holding) ([]TransferRow, error) {
	rows := make([]TransferRow, 0, len(h.TransferHistory))
	for i, rec := range h.TransferHistory {
		sender, err := json.Marshal(rec.From)
		if err != nil {
			return nil, err
		}
		recipient, err := json.Marshal(rec.To)
		if err != nil {
			return nil, err
		}
		rows = append(rows, TransferRow{
			HoldingID:            h.ID,
			Seq:                  i,
			CompanyID:            h.CompanyID,
			Date:                 rec.Date,
			Type:                 string(rec.Type),
			Sender:               datatypes.JSON(sender),
			Recipient:            datatypes.JSON(recipient),
			Shares:               rec.Shares,
			ShareType:            string(rec.ShareType),
			Percentage:           rec.Percentage,
			MemberInterest:       rec.MemberInterest,
			OldCertificate:       rec.OldCertificate,
			NewCertificate:       rec.NewCertificate,
			RecipientCertificate: rec.RecipientCertificate,
		})
	}
	return rows, nil
}

func (row TransferRow) toDomain() (domain.TransferRecord, error) {
	rec := domain.TransferRecord{
		Date:                 row.Date,
		Type:                 domain.TransferType(row.Type),
		Shares:               row.Shares,
		ShareType:            domain.ShareType(row.ShareType),
		Percentage:           row.Percentage,
		MemberInterest:       row.MemberInterest,
		OldCertificate:       row.OldCertificate,
		NewCertificate:       row.NewCertificate,
		RecipientCertificate: row.RecipientCertificate,
	}
	if err := json.Unmarshal(row.Sender, &rec.From); err != nil {
		return rec, err
	}
	if err := json.Unmarshal(row.Recipient, &rec.To); err != nil {
		return rec, err
	}
	return rec, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
