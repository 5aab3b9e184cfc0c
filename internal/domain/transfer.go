package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferRequest moves all (full) or part (partial) of a holding to a recipient.
type TransferRequest struct {
	Type         TransferType
	Amount       *float64
	ShareType    ShareType
	Recipient    Holder
	TransferDate string
}

// TransferResult holds the updated sender and, for partial transfers, the recipient's new holding.
type TransferResult struct {
	Sender    *Holding `json:"sender"`
	Recipient *Holding `json:"recipient,omitempty"`
}

// Transfer executes req against the holding with id. On error the register is untouched.
func (r *Register) Transfer(id uuid.UUID, req TransferRequest, today string) (*TransferResult, error) {
	h, err := r.Holding(id)
	if err != nil {
		return nil, err
	}
	if req.Type != TransferFull && req.Type != TransferPartial {
		return nil, NewValidationError("type", "type must be full or partial")
	}
	if strings.TrimSpace(req.Recipient.FirstName) == "" || strings.TrimSpace(req.Recipient.LastName) == "" {
		return nil, NewValidationError("recipient", "missing recipient name")
	}
	date, err := transferDate(req.TransferDate, today)
	if err != nil {
		return nil, err
	}
	if !h.IsActive {
		return nil, NewValidationError("holding_id", "holding has been retired")
	}
	if req.ShareType != "" && !IsValidShareType(req.ShareType) {
		return nil, NewValidationError("share_type", "Invalid share_type")
	}
	recipient := trimHolder(req.Recipient)

	if req.Type == TransferFull {
		r.fullTransfer(h, recipient, date)
		return &TransferResult{Sender: h}, nil
	}

	amount, err := partialAmount(h, req.Amount)
	if err != nil {
		return nil, err
	}
	created := r.partialTransfer(h, recipient, amount, req.ShareType, date)
	return &TransferResult{Sender: h, Recipient: created}, nil
}

func transferDate(s, today string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return today, nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", NewValidationError("transfer_date", "transfer_date must be a date in YYYY-MM-DD format")
	}
	return s, nil
}

// partialAmount requires 0 < amount < current holding and returns the amount to move.
// Share amounts must be whole; member interest is rounded to 2 places before the range check.
func partialAmount(h *Holding, amount *float64) (float64, error) {
	outOfRange := NewValidationError("amount", "amount out of range")
	if amount == nil || !isFinite(*amount) {
		return 0, outOfRange
	}
	a := *amount
	if h.Share != nil && a != math.Trunc(a) {
		return 0, outOfRange
	}
	if h.Interest != nil {
		a = round2(a)
	}
	if a <= 0 || a >= h.Amount() {
		return 0, outOfRange
	}
	return a, nil
}

// fullTransfer hands the position to a new holder. The holding id and history carry over.
func (r *Register) fullTransfer(h *Holding, recipient Holder, date string) {
	rec := TransferRecord{
		Date: date,
		Type: TransferFull,
		From: h.Holder,
		To:   recipient,
	}
	h.Holder = recipient

	if h.Share != nil {
		next := r.NextCertificateNumber()
		rec.OldCertificate = h.issue(next, date)
		rec.NewCertificate = next
		rec.Shares = h.Share.Shares
		rec.ShareType = h.Share.ShareType
		rec.Percentage = h.Share.Percentage
	} else {
		rec.MemberInterest = h.Interest.MemberInterest
	}

	h.TransferHistory = append(h.TransferHistory, rec)
	r.markChanged(h)
}

// partialTransfer reduces the sender and creates a new holding for the recipient.
func (r *Register) partialTransfer(h *Holding, recipient Holder, amount float64, shareType ShareType, date string) *Holding {
	created := &Holding{
		ID:                 uuid.New(),
		CompanyID:          h.CompanyID,
		Position:           r.nextPosition(),
		Model:              h.Model,
		Holder:             recipient,
		CertificateHistory: []Certificate{},
		IsActive:           true,
	}
	rec := TransferRecord{
		Date: date,
		Type: TransferPartial,
		From: h.Holder,
		To:   recipient,
	}

	if h.Share != nil {
		total := r.TotalShares()
		moved := int64(amount)
		remaining := h.Share.Shares - moved
		if shareType == "" {
			shareType = h.Share.ShareType
		}
		senderNumber := r.NextCertificateNumber()
		recipientNumber := FormatCertificateNumber(parseCertificateNumber(senderNumber) + 1)

		h.Share.Shares = remaining
		h.Share.Percentage = Percentage(remaining, total)
		rec.OldCertificate = h.issue(senderNumber, date)
		rec.NewCertificate = senderNumber
		rec.RecipientCertificate = recipientNumber
		rec.Shares = moved
		rec.ShareType = shareType
		rec.Percentage = Percentage(moved, total)

		created.Share = &ShareHolding{
			Shares:     moved,
			ShareType:  shareType,
			Percentage: rec.Percentage,
		}
		created.issue(recipientNumber, date)
	} else {
		current := decimal.NewFromFloat(h.Interest.MemberInterest).Round(2)
		moved := decimal.NewFromFloat(amount).Round(2)
		h.Interest.MemberInterest = current.Sub(moved).InexactFloat64()
		rec.MemberInterest = moved.InexactFloat64()

		created.Interest = &InterestHolding{
			MemberInterest: rec.MemberInterest,
			DateJoined:     date,
		}
	}
	h.IsActive = h.Amount() > 0

	received := rec
	received.Type = TransferReceived
	created.TransferHistory = []TransferRecord{received}
	h.TransferHistory = append(h.TransferHistory, rec)

	r.holdings = append(r.holdings, created)
	r.markChanged(h)
	r.markChanged(created)
	return created
}
