package enums

import "fmt"

// PriceListKind distinguishes the three managed price lists.
type PriceListKind string

const (
	PriceListKindPurchase     PriceListKind = "purchase"
	PriceListKindCommonSale   PriceListKind = "common_sale"
	PriceListKindCustomerSale PriceListKind = "customer_sale"
)

var validPriceListKinds = []PriceListKind{
	PriceListKindPurchase,
	PriceListKindCommonSale,
	PriceListKindCustomerSale,
}

// String implements fmt.Stringer.
func (k PriceListKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known PriceListKind.
func (k PriceListKind) IsValid() bool {
	for _, candidate := range validPriceListKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ApprovalSubject maps the price list to its approval subject type.
func (k PriceListKind) ApprovalSubject() ApprovalSubject {
	switch k {
	case PriceListKindPurchase:
		return ApprovalSubjectPriceListPurchase
	case PriceListKindCommonSale:
		return ApprovalSubjectPriceListCommonSale
	default:
		return ApprovalSubjectPriceListCustomerSale
	}
}

// ParsePriceListKind converts raw input into a PriceListKind.
func ParsePriceListKind(value string) (PriceListKind, error) {
	for _, candidate := range validPriceListKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price list kind %q", value)
}
