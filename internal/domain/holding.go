package domain

import (
	"github.com/google/uuid"
)

// DateLayout is the calendar date format used on holdings, certificates and transfers.
const DateLayout = "2006-01-02"

// Holder is the identity of the natural person currently holding a position.
type Holder struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IDNumber  string `json:"id_number"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// FullName joins first and last name.
func (h Holder) FullName() string {
	switch {
	case h.FirstName == "":
		return h.LastName
	case h.LastName == "":
		return h.FirstName
	}
	return h.FirstName + " " + h.LastName
}

// ShareHolding is the share-based variant of a holding.
type ShareHolding struct {
	CertificateNumber string    `json:"certificate_number"`
	Shares            int64     `json:"shares"`
	ShareType         ShareType `json:"share_type"`
	Percentage        float64   `json:"percentage"`
	DateIssued        string    `json:"date_issued"`
}

// InterestHolding is the close corporation variant of a holding.
type InterestHolding struct {
	MemberInterest float64 `json:"member_interest"`
	DateJoined     string  `json:"date_joined"`
}

// Holding is one ownership position. Model selects which of Share or Interest is set;
// the other is always nil.
type Holding struct {
	ID        uuid.UUID      `json:"id"`
	CompanyID uuid.UUID      `json:"company_id"`
	Position  int            `json:"-"`
	Model     OwnershipModel `json:"model"`
	Holder

	Share    *ShareHolding    `json:"share,omitempty"`
	Interest *InterestHolding `json:"interest,omitempty"`

	CertificateHistory []Certificate    `json:"certificate_history"`
	TransferHistory    []TransferRecord `json:"transfer_history"`
	IsActive           bool             `json:"is_active"`
}

// CertificateStatus is active for the one certificate currently evidencing a holding.
type CertificateStatus string

const (
	CertificateActive   CertificateStatus = "active"
	CertificateArchived CertificateStatus = "archived"
)

// Certificate evidences a share allocation at the time it was issued.
type Certificate struct {
	CertificateNumber string            `json:"certificate_number"`
	Shares            int64             `json:"shares"`
	ShareType         ShareType         `json:"share_type"`
	Percentage        float64           `json:"percentage"`
	DateIssued        string            `json:"date_issued"`
	Status            CertificateStatus `json:"status"`
	ArchivedDate      string            `json:"archived_date,omitempty"`
}

type TransferType string

const (
	TransferFull     TransferType = "full"
	TransferPartial  TransferType = "partial"
	TransferReceived TransferType = "received"
)

// TransferRecord is an append-only history entry. Share fields are zero for interest-based transfers.
type TransferRecord struct {
	Date                 string       `json:"date"`
	Type                 TransferType `json:"type"`
	From                 Holder       `json:"from"`
	To                   Holder       `json:"to"`
	Shares               int64        `json:"shares,omitempty"`
	ShareType            ShareType    `json:"share_type,omitempty"`
	Percentage           float64      `json:"percentage,omitempty"`
	MemberInterest       float64      `json:"member_interest,omitempty"`
	OldCertificate       string       `json:"old_certificate,omitempty"`
	NewCertificate       string       `json:"new_certificate,omitempty"`
	RecipientCertificate string       `json:"recipient_certificate,omitempty"`
}

// Amount is the transferable quantity: shares for share-based, member interest otherwise.
func (h *Holding) Amount() float64 {
	if h.Share != nil {
		return float64(h.Share.Shares)
	}
	if h.Interest != nil {
		return h.Interest.MemberInterest
	}
	return 0
}

// ActiveCertificate returns the holding's active certificate, or nil.
func (h *Holding) ActiveCertificate() *Certificate {
	for i := range h.CertificateHistory {
		if h.CertificateHistory[i].Status == CertificateActive {
			return &h.CertificateHistory[i]
		}
	}
	return nil
}

// FindCertificate looks up any certificate (active or archived) by number.
func (h *Holding) FindCertificate(number string) *Certificate {
	for i := range h.CertificateHistory {
		if h.CertificateHistory[i].CertificateNumber == number {
			return &h.CertificateHistory[i]
		}
	}
	return nil
}

// archiveActive retires the active certificate, stamping it with date.
func (h *Holding) archiveActive(date string) string {
	c := h.ActiveCertificate()
	if c == nil {
		return ""
	}
	c.Status = CertificateArchived
	c.ArchivedDate = date
	return c.CertificateNumber
}

// issue archives the current certificate and makes a new one reflecting h.Share.
func (h *Holding) issue(number, date string) (archived string) {
	archived = h.archiveActive(date)
	h.Share.CertificateNumber = number
	h.Share.DateIssued = date
	h.CertificateHistory = append(h.CertificateHistory, Certificate{
		CertificateNumber: number,
		Shares:            h.Share.Shares,
		ShareType:         h.Share.ShareType,
		Percentage:        h.Share.Percentage,
		DateIssued:        date,
		Status:            CertificateActive,
	})
	return archived
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (h *Holding) Clone() *Holding {
	out := *h
	if h.Share != nil {
		s := *h.Share
		out.Share = &s
	}
	if h.Interest != nil {
		i := *h.Interest
		out.Interest = &i
	}
	out.CertificateHistory = make([]Certificate, len(h.CertificateHistory))
	copy(out.CertificateHistory, h.CertificateHistory)
	out.TransferHistory = make([]TransferRecord, len(h.TransferHistory))
	copy(out.TransferHistory, h.TransferHistory)
	return &out
}
