package domain

// CompanyType is the entity type recorded on the client record.
type CompanyType string

const (
	ListedCompany     CompanyType = "Listed Company"
	PrivateCompany    CompanyType = "Private Company"
	ClosedCorporation CompanyType = "Closed Corporation"
	Trust             CompanyType = "Trust"
	Individual        CompanyType = "Individual"
	NPO               CompanyType = "NPO"
	NPC               CompanyType = "NPC"
)

// CompanyTypes lists every type the client record accepts.
var CompanyTypes = []CompanyType{ListedCompany, PrivateCompany, ClosedCorporation, Trust, Individual, NPO, NPC}

// IsValidCompanyType returns true if t is one of the enumerated company types.
func IsValidCompanyType(t CompanyType) bool {
	for _, ct := range CompanyTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// OwnershipModel decides which register applies to a company. It is derived, never stored.
type OwnershipModel string

const (
	Unavailable   OwnershipModel = "unavailable"
	ShareBased    OwnershipModel = "share_based"
	InterestBased OwnershipModel = "interest_based"
)

// Classify maps a company type to its ownership model.
func Classify(t CompanyType) OwnershipModel {
	switch t {
	case PrivateCompany, ListedCompany, NPC:
		return ShareBased
	case ClosedCorporation:
		return InterestBased
	default:
		return Unavailable
	}
}

// RegisterTitle is the heading shown for a model's register.
func (m OwnershipModel) RegisterTitle() string {
	switch m {
	case ShareBased:
		return "Share Register"
	case InterestBased:
		return "Members Interest Register"
	default:
		return ""
	}
}

// ShareType is the class of shares a certificate evidences.
type ShareType string

const (
	Ordinary   ShareType = "Ordinary"
	Preference ShareType = "Preference"
	ClassA     ShareType = "Class A"
	ClassB     ShareType = "Class B"
	Redeemable ShareType = "Redeemable"
)

var ShareTypes = []ShareType{Ordinary, Preference, ClassA, ClassB, Redeemable}

func IsValidShareType(t ShareType) bool {
	for _, st := range ShareTypes {
		if st == t {
			return true
		}
	}
	return false
}
