package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the client record the ledger reads. The ledger never writes to it.
type Company struct {
	CompanyID     uuid.UUID      `gorm:"column:company_id;type:uuid;primaryKey" json:"company_id"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	IDOrRegNumber string         `gorm:"column:id_or_reg_number" json:"id_or_reg_number"`
	CompanyType   CompanyType    `gorm:"column:company_type;type:varchar(40);not null" json:"company_type"`
	IssuedShares  int64          `gorm:"column:issued_shares;not null;default:0" json:"issued_shares"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Company) TableName() string {
	return "Companies"
}

// BeforeCreate ensures company_id is set for DBs without default uuid.
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.CompanyID == uuid.Nil {
		c.CompanyID = uuid.New()
	}
	return nil
}

// OwnershipModel classifies the company.
func (c *Company) OwnershipModel() OwnershipModel {
	return Classify(c.CompanyType)
}
