package enums

import "fmt"

// ApprovalSubject identifies what kind of change an approval request carries.
type ApprovalSubject string

const (
	ApprovalSubjectOrderAudit            ApprovalSubject = "order_audit"
	ApprovalSubjectOrderPrice            ApprovalSubject = "order_price"
	ApprovalSubjectPriceListPurchase     ApprovalSubject = "price_list_purchase"
	ApprovalSubjectPriceListCommonSale   ApprovalSubject = "price_list_common_sale"
	ApprovalSubjectPriceListCustomerSale ApprovalSubject = "price_list_customer_sale"
)

var validApprovalSubjects = []ApprovalSubject{
	ApprovalSubjectOrderAudit,
	ApprovalSubjectOrderPrice,
	ApprovalSubjectPriceListPurchase,
	ApprovalSubjectPriceListCommonSale,
	ApprovalSubjectPriceListCustomerSale,
}

// String implements fmt.Stringer.
func (s ApprovalSubject) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ApprovalSubject.
func (s ApprovalSubject) IsValid() bool {
	for _, candidate := range validApprovalSubjects {
		if candidate == s {
			return true
		}
	}
	return false
}

// PriceList reports whether the subject targets a price-list record.
func (s ApprovalSubject) PriceList() bool {
	switch s {
	case ApprovalSubjectPriceListPurchase, ApprovalSubjectPriceListCommonSale, ApprovalSubjectPriceListCustomerSale:
		return true
	}
	return false
}

// ParseApprovalSubject converts raw input into an ApprovalSubject.
func ParseApprovalSubject(value string) (ApprovalSubject, error) {
	for _, candidate := range validApprovalSubjects {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval subject %q", value)
}
