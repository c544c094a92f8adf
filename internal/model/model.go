// Package model holds the catalog and ledger row types.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"minipos/internal/poserr"
)

// DateLayout is the wire format of the ledger's Date column.
const DateLayout = "2006-01-02 03:04:05 PM"

// Product is one catalog row. Name is the row key.
type Product struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// PaymentMethod is the fixed payment enumeration.
type PaymentMethod string

const (
	Cash  PaymentMethod = "Cash"
	Zelle PaymentMethod = "Zelle"
)

// ParsePaymentMethod validates a raw payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case Cash:
		return Cash, nil
	case Zelle:
		return Zelle, nil
	}
	return "", poserr.Validationf("unknown payment method %q", s)
}

// Sale is one ledger row. Reference is the row key and, with Date, is
// immutable after creation.
type Sale struct {
	Reference string          `json:"reference"`
	Date      time.Time       `json:"date"`
	Items     string          `json:"items"`
	Quantity  int64           `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	Payment   PaymentMethod   `json:"payment"`
}

// Validate checks the ledger invariants on a sale row.
func (s Sale) Validate() error {
	if s.Reference == "" {
		return poserr.Validationf("empty reference")
	}
	if s.Quantity < 1 {
		return poserr.Validationf("quantity %d < 1", s.Quantity)
	}
	if s.Total.IsNegative() {
		return poserr.Validationf("negative total %s", s.Total)
	}
	if _, err := ParsePaymentMethod(string(s.Payment)); err != nil {
		return err
	}
	return nil
}

// SalePatch is a field-by-field edit of an existing sale. Nil fields are
// left untouched. Reference and Date have no patch fields: both are
// immutable once a sale exists. Quantity and Total are patched
// independently and are not re-derived from each other.
type SalePatch struct {
	Items    *string          `json:"items,omitempty"`
	Quantity *int64           `json:"quantity,omitempty"`
	Total    *decimal.Decimal `json:"total,omitempty"`
	Payment  *PaymentMethod   `json:"payment,omitempty"`
}

// Validate checks the patched fields against the ledger invariants.
func (p SalePatch) Validate() error {
	if p.Quantity != nil && *p.Quantity < 1 {
		return poserr.Validationf("quantity %d < 1", *p.Quantity)
	}
	if p.Total != nil && p.Total.IsNegative() {
		return poserr.Validationf("negative total %s", *p.Total)
	}
	if p.Payment != nil {
		if _, err := ParsePaymentMethod(string(*p.Payment)); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns the sale with the patch applied.
func (p SalePatch) Apply(s Sale) Sale {
	if p.Items != nil {
		s.Items = *p.Items
	}
	if p.Quantity != nil {
		s.Quantity = *p.Quantity
	}
	if p.Total != nil {
		s.Total = *p.Total
	}
	if p.Payment != nil {
		s.Payment = *p.Payment
	}
	return s
}

// Line is one entry of a checkout selection.
type Line struct {
	Product string `json:"product"`
	Qty     int64  `json:"qty"`
}

// Selection is an ordered product selection. Order is preserved so the
// sale's items description reads in the order the user picked.
type Selection []Line

// Validate rejects empty selections, duplicate product lines and
// non-positive quantities.
func (sel Selection) Validate() error {
	if len(sel) == 0 {
		return poserr.Validationf("empty selection")
	}
	seen := make(map[string]struct{}, len(sel))
	for _, ln := range sel {
		if ln.Product == "" {
			return poserr.Validationf("empty product name in selection")
		}
		if ln.Qty < 1 {
			return poserr.Validationf("quantity %d for %q must be >= 1", ln.Qty, ln.Product)
		}
		if _, dup := seen[ln.Product]; dup {
			return poserr.Validationf("duplicate product %q in selection", ln.Product)
		}
		seen[ln.Product] = struct{}{}
	}
	return nil
}

// Items renders the flattened description stored on a sale:
// product names comma-joined in selection order.
func (sel Selection) Items() string {
	names := make([]string, len(sel))
	for i, ln := range sel {
		names[i] = ln.Product
	}
	return strings.Join(names, ", ")
}

// TotalQty sums the unit count across all lines.
func (sel Selection) TotalQty() int64 {
	var n int64
	for _, ln := range sel {
		n += ln.Qty
	}
	return n
}
