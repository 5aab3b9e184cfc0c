package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Register is the set of holdings for one company. It is loaded fresh for every operation;
// holdings it modifies are reported by Changed so the caller can persist them together.
type Register struct {
	Company *Company
	Model   OwnershipModel

	holdings []*Holding
	changed  map[uuid.UUID]bool
}

// NewRegister wraps a company's holdings. Companies without a register yield UnavailableModuleError.
func NewRegister(company *Company, holdings []*Holding) (*Register, error) {
	model := company.OwnershipModel()
	if model == Unavailable {
		return nil, &UnavailableModuleError{CompanyType: company.CompanyType}
	}
	sorted := make([]*Holding, len(holdings))
	copy(sorted, holdings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	return &Register{
		Company:  company,
		Model:    model,
		holdings: sorted,
		changed:  make(map[uuid.UUID]bool),
	}, nil
}

// Holdings returns every holding, active and retired, in registration order.
func (r *Register) Holdings() []*Holding {
	return r.holdings
}

// Holding finds a holding by id.
func (r *Register) Holding(id uuid.UUID) (*Holding, error) {
	for _, h := range r.holdings {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, ErrHoldingNotFound
}

// Changed returns holdings created or modified since the register was loaded, in registration order.
func (r *Register) Changed() []*Holding {
	var out []*Holding
	for _, h := range r.holdings {
		if r.changed[h.ID] {
			out = append(out, h)
		}
	}
	return out
}

func (r *Register) markChanged(h *Holding) {
	r.changed[h.ID] = true
}

// AllocatedShares sums shares across all holdings, retired ones included.
func (r *Register) AllocatedShares() int64 {
	var sum int64
	for _, h := range r.holdings {
		if h.Share != nil {
			sum += h.Share.Shares
		}
	}
	return sum
}

// TotalShares is the percentage denominator: the company's issued share capital when recorded,
// otherwise the shares allocated across the register.
func (r *Register) TotalShares() int64 {
	if r.Company.IssuedShares > 0 {
		return r.Company.IssuedShares
	}
	return r.AllocatedShares()
}

// NextCertificateNumber is one past the highest certificate ever issued by the company.
func (r *Register) NextCertificateNumber() string {
	return FormatCertificateNumber(r.maxCertificateNumber() + 1)
}

func (r *Register) maxCertificateNumber() int {
	max := 0
	for _, h := range r.holdings {
		for _, c := range h.CertificateHistory {
			if n := parseCertificateNumber(c.CertificateNumber); n > max {
				max = n
			}
		}
		if h.Share != nil {
			if n := parseCertificateNumber(h.Share.CertificateNumber); n > max {
				max = n
			}
		}
	}
	return max
}

// FormatCertificateNumber zero-pads to width 3. Numbers past 999 keep all their digits.
func FormatCertificateNumber(n int) string {
	return fmt.Sprintf("%03d", n)
}

func parseCertificateNumber(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Percentage returns part/total*100 rounded to 2 decimal places.
func Percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(total), 2).
		InexactFloat64()
}

// refreshPercentages recomputes the derived percentage of every share holding.
// Certificates keep the percentage stated when they were issued.
func (r *Register) refreshPercentages() {
	total := r.TotalShares()
	for _, h := range r.holdings {
		if h.Share == nil {
			continue
		}
		if p := Percentage(h.Share.Shares, total); p != h.Share.Percentage {
			h.Share.Percentage = p
			r.markChanged(h)
		}
	}
}

// NewHolding carries the fields for an initial issuance. Pointer amounts distinguish missing from zero.
type NewHolding struct {
	Holder
	CertificateNumber string
	Shares            *int64
	ShareType         ShareType
	MemberInterest    *float64
}

// Create validates and appends an initial issuance dated today.
func (r *Register) Create(in NewHolding, today string) (*Holding, error) {
	h := &Holding{
		ID:        uuid.New(),
		CompanyID: r.Company.CompanyID,
		Position:  r.nextPosition(),
		Model:     r.Model,
		Holder:    trimHolder(in.Holder),
		IsActive:  true,
	}

	switch r.Model {
	case ShareBased:
		number, err := r.validateShareIssue(in)
		if err != nil {
			return nil, err
		}
		shares := *in.Shares
		h.Share = &ShareHolding{
			Shares:     shares,
			ShareType:  in.ShareType,
			Percentage: Percentage(shares, r.totalWith(shares)),
		}
		h.CertificateHistory = []Certificate{}
		h.issue(number, today)
	case InterestBased:
		interest, err := validateInterestIssue(in)
		if err != nil {
			return nil, err
		}
		h.Interest = &InterestHolding{
			MemberInterest: interest,
			DateJoined:     today,
		}
		h.CertificateHistory = []Certificate{}
	}
	h.TransferHistory = []TransferRecord{}

	r.holdings = append(r.holdings, h)
	r.markChanged(h)
	if r.Model == ShareBased {
		r.refreshPercentages()
	}
	return h, nil
}

func (r *Register) validateShareIssue(in NewHolding) (string, error) {
	number := strings.TrimSpace(in.CertificateNumber)
	if number == "" {
		return "", NewValidationError("certificate_number", "certificate_number is required")
	}
	if err := validateNames(in.Holder, "first_name", "last_name"); err != nil {
		return "", err
	}
	if in.Shares == nil {
		return "", NewValidationError("shares", "shares is required")
	}
	if *in.Shares <= 0 {
		return "", NewValidationError("shares", "shares must be greater than 0")
	}
	if in.ShareType == "" {
		return "", NewValidationError("share_type", "share_type is required")
	}
	if !IsValidShareType(in.ShareType) {
		return "", NewValidationError("share_type", "Invalid share_type")
	}

	n, err := strconv.Atoi(number)
	if err != nil || n <= 0 {
		return "", NewValidationError("certificate_number", "certificate_number must be a positive number")
	}
	if max := r.maxCertificateNumber(); n <= max {
		return "", NewValidationError("certificate_number",
			fmt.Sprintf("certificate_number must be greater than the last issued certificate %s", FormatCertificateNumber(max)))
	}
	if issued := r.Company.IssuedShares; issued > 0 && r.AllocatedShares()+*in.Shares > issued {
		return "", NewValidationError("shares", "shares exceed the company's issued share capital")
	}
	return FormatCertificateNumber(n), nil
}

// validateInterestIssue returns the member interest rounded to 2 places. The rounded value
// is what gets stored, so it is also the value checked.
func validateInterestIssue(in NewHolding) (float64, error) {
	if err := validateNames(in.Holder, "first_name", "last_name"); err != nil {
		return 0, err
	}
	if in.MemberInterest == nil {
		return 0, NewValidationError("member_interest", "member_interest is required")
	}
	if !isFinite(*in.MemberInterest) {
		return 0, NewValidationError("member_interest", "member_interest must be a number")
	}
	interest := round2(*in.MemberInterest)
	if interest <= 0 {
		return 0, NewValidationError("member_interest", "member_interest must be greater than 0")
	}
	return interest, nil
}

func validateNames(h Holder, firstField, lastField string) error {
	if strings.TrimSpace(h.FirstName) == "" {
		return NewValidationError(firstField, firstField+" is required")
	}
	if strings.TrimSpace(h.LastName) == "" {
		return NewValidationError(lastField, lastField+" is required")
	}
	return nil
}

// totalWith is the denominator after allocating extra shares.
func (r *Register) totalWith(extra int64) int64 {
	if r.Company.IssuedShares > 0 {
		return r.Company.IssuedShares
	}
	return r.AllocatedShares() + extra
}

func (r *Register) nextPosition() int {
	max := 0
	for _, h := range r.holdings {
		if h.Position > max {
			max = h.Position
		}
	}
	return max + 1
}

func trimHolder(h Holder) Holder {
	return Holder{
		FirstName: strings.TrimSpace(h.FirstName),
		LastName:  strings.TrimSpace(h.LastName),
		IDNumber:  strings.TrimSpace(h.IDNumber),
		Email:     strings.TrimSpace(h.Email),
		Phone:     strings.TrimSpace(h.Phone),
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// round2 rounds half away from zero to 2 places, the scale of the stored interest columns.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
