// Package checkout computes sale totals and records confirmed sales in
// the ledger.
package checkout

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"minipos/internal/ledger"
	"minipos/internal/model"
	"minipos/internal/poserr"
)

// refStem is the reference number stem layout (YYYYMMDDHHMMSS).
const refStem = "20060102150405"

// Now returns the current wall-clock time. Split for testability.
var Now = func() time.Time { return time.Now() }

// ComputeTotal prices a selection against the catalog. Pure: the sum of
// price times quantity over all lines, independent of line order.
func ComputeTotal(sel model.Selection, products []model.Product) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, ln := range sel {
		if ln.Qty < 1 {
			return decimal.Zero, poserr.Validationf("quantity %d for %q must be >= 1", ln.Qty, ln.Product)
		}
		price, ok := lookup(products, ln.Product)
		if !ok {
			return decimal.Zero, poserr.NotFoundf("product %q", ln.Product)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(ln.Qty)))
	}
	return total, nil
}

func lookup(products []model.Product, name string) (decimal.Decimal, bool) {
	for _, p := range products {
		if p.Name == name {
			return p.Price, true
		}
	}
	return decimal.Zero, false
}

// Recorder turns a validated selection into a ledger row. It is the only
// component that reads the catalog and writes the ledger.
type Recorder struct {
	mu       sync.Mutex
	store    ledger.Store
	lastStem string
	lastSeq  int
}

func NewRecorder(store ledger.Store) *Recorder {
	return &Recorder{store: store}
}

// RecordSale validates the selection and payment method, computes the
// total, mints a unique reference and appends the sale. The returned
// sale carries the minted reference.
//
// References keep the second-granularity YYYYMMDDHHMMSS stem; when two
// sales land in the same second (or the stem already exists in the
// ledger) a numeric suffix disambiguates, so uniqueness holds under
// rapid succession.
func (r *Recorder) RecordSale(sel model.Selection, payment model.PaymentMethod, products []model.Product) (model.Sale, error) {
	if err := sel.Validate(); err != nil {
		return model.Sale{}, err
	}
	if _, err := model.ParsePaymentMethod(string(payment)); err != nil {
		return model.Sale{}, err
	}
	total, err := ComputeTotal(sel, products)
	if err != nil {
		return model.Sale{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := Now()
	stem := now.Format(refStem)
	if stem != r.lastStem {
		r.lastStem = stem
		r.lastSeq = 0
	}

	sale := model.Sale{
		Date:     now,
		Items:    sel.Items(),
		Quantity: sel.TotalQty(),
		Total:    total,
		Payment:  payment,
	}

	// The ledger may already hold references with this stem (another
	// recorder, or a restart within the same second), so a duplicate on
	// append bumps the suffix and retries.
	const maxAttempts = 1000
	for i := 0; i < maxAttempts; i++ {
		sale.Reference = mintRef(stem, r.lastSeq)
		err := r.store.Append(sale)
		if err == nil {
			r.lastSeq++
			return sale, nil
		}
		if !errors.Is(err, poserr.ErrDuplicateKey) {
			return model.Sale{}, err
		}
		r.lastSeq++
	}
	return model.Sale{}, poserr.Storagef(fmt.Errorf("gave up after %d attempts", maxAttempts), "mint reference for %s", stem)
}

func mintRef(stem string, seq int) string {
	if seq == 0 {
		return stem
	}
	return fmt.Sprintf("%s-%d", stem, seq)
}
