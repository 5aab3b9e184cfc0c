// Package certificates renders the downloadable text certificate for a holding.
package certificates

import (
	"fmt"
	"strings"
	"time"

	"sharesreg-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Placeholder stands in for any field the record does not carry.
const Placeholder = "[not recorded]"

const displayDateLayout = "2006/01/02"

// Render produces the certificate text. For share-based holdings cert selects which certificate
// to render; nil means the active one. It never fails: missing values become Placeholder.
func Render(company domain.Company, h *domain.Holding, cert *domain.Certificate) string {
	if h == nil {
		h = &domain.Holding{}
	}
	if h.Interest != nil {
		return renderInterest(company, h)
	}
	if cert == nil {
		cert = h.ActiveCertificate()
	}
	return renderShares(company, h, cert)
}

func renderShares(company domain.Company, h *domain.Holding, cert *domain.Certificate) string {
	var (
		number, issued, shareType string
		shares, percentage        string
		archived                  string
	)
	switch {
	case cert != nil:
		number = cert.CertificateNumber
		issued = cert.DateIssued
		shareType = string(cert.ShareType)
		shares = fmt.Sprint(cert.Shares)
		percentage = formatPercent(cert.Percentage)
		if cert.Status == domain.CertificateArchived {
			archived = cert.ArchivedDate
			if archived == "" {
				archived = Placeholder
			}
		}
	case h.Share != nil:
		number = h.Share.CertificateNumber
		issued = h.Share.DateIssued
		shareType = string(h.Share.ShareType)
		shares = fmt.Sprint(h.Share.Shares)
		percentage = formatPercent(h.Share.Percentage)
	}

	var b strings.Builder
	b.WriteString("SHARE CERTIFICATE\n\n")
	fmt.Fprintf(&b, "Company: %s\n", orPlaceholder(company.Name))
	fmt.Fprintf(&b, "Registration: %s\n\n", orPlaceholder(company.IDOrRegNumber))
	fmt.Fprintf(&b, "Certificate Number: %s\n", orPlaceholder(number))
	fmt.Fprintf(&b, "Date Issued: %s\n", displayDate(issued))
	if archived != "" {
		fmt.Fprintf(&b, "Status: ARCHIVED on %s\n", displayDate(archived))
	}
	b.WriteString("\nThis certifies that:\n")
	writeHolder(&b, h.Holder)
	fmt.Fprintf(&b, "\nis the registered holder of %s %s shares\n", orPlaceholder(shares), strings.ToLower(orPlaceholder(shareType)))
	fmt.Fprintf(&b, "representing %s%% of the issued share capital\n", orPlaceholder(percentage))
	b.WriteString("\n_______________________\nDirector Signature\n")
	return b.String()
}

func renderInterest(company domain.Company, h *domain.Holding) string {
	var b strings.Builder
	b.WriteString("MEMBER'S INTEREST CERTIFICATE\n\n")
	fmt.Fprintf(&b, "Close Corporation: %s\n", orPlaceholder(company.Name))
	fmt.Fprintf(&b, "Registration: %s\n\n", orPlaceholder(company.IDOrRegNumber))
	fmt.Fprintf(&b, "Date Joined: %s\n", displayDate(h.Interest.DateJoined))
	b.WriteString("\nThis certifies that:\n")
	writeHolder(&b, h.Holder)
	fmt.Fprintf(&b, "\nholds a member's interest of %s%% in the corporation\n", formatPercent(h.Interest.MemberInterest))
	b.WriteString("\n_______________________\nMember Signature\n")
	return b.String()
}

func writeHolder(b *strings.Builder, h domain.Holder) {
	fmt.Fprintf(b, "%s\n", orPlaceholder(h.FullName()))
	fmt.Fprintf(b, "ID Number: %s\n", orPlaceholder(h.IDNumber))
}

// FileName is the download name, e.g. Certificate_001_Smith.txt.
func FileName(h *domain.Holding, cert *domain.Certificate) string {
	label := "Interest"
	switch {
	case cert != nil:
		label = cert.CertificateNumber
	case h.Share != nil:
		label = h.Share.CertificateNumber
	}
	last := strings.Join(strings.Fields(h.LastName), "_")
	if last == "" {
		last = "Holder"
	}
	return fmt.Sprintf("Certificate_%s_%s.txt", label, last)
}

func formatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func displayDate(s string) string {
	if s == "" {
		return Placeholder
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(displayDateLayout)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
