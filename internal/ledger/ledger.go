// Package ledger owns the sales table. The reference number is the row
// key; rows are only ever created through a checkout append or edited
// field-by-field through an admin patch. As with the catalog, the CSV
// store is the canonical durable form and memory/pebble are alternates.
package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"minipos/internal/model"
	"minipos/internal/poserr"
)

// Store abstracts the ledger backend.
type Store interface {
	Load() ([]model.Sale, error)
	Append(sale model.Sale) error
	UpdateByReference(ref string, patch model.SalePatch) error
	DeleteByReference(ref string) error
	// ExportAll serializes the full collection in the durable table
	// format (exact header and column order), for external download.
	ExportAll() ([]byte, error)
}

// Header columns of the durable sales table. Export reproduces these
// verbatim so downloads stay compatible with previously saved files.
var csvHeader = []string{"Reference Number", "Date", "Product Sold", "Quantity", "Total Price", "Payment Method"}

func findSale(list []model.Sale, ref string) int {
	for i := range list {
		if list[i].Reference == ref {
			return i
		}
	}
	return -1
}

func appendSale(list []model.Sale, sale model.Sale) ([]model.Sale, error) {
	if err := sale.Validate(); err != nil {
		return nil, err
	}
	if findSale(list, sale.Reference) >= 0 {
		return nil, poserr.DuplicateKeyf("reference %q already exists", sale.Reference)
	}
	return append(list, sale), nil
}

func patchSale(list []model.Sale, ref string, patch model.SalePatch) ([]model.Sale, error) {
	i := findSale(list, ref)
	if i < 0 {
		return nil, poserr.NotFoundf("reference %q", ref)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	list[i] = patch.Apply(list[i])
	return list, nil
}

func deleteSale(list []model.Sale, ref string) ([]model.Sale, error) {
	i := findSale(list, ref)
	if i < 0 {
		return nil, poserr.NotFoundf("reference %q", ref)
	}
	return append(list[:i], list[i+1:]...), nil
}

// encodeCSV renders sales in the durable table format, header included.
func encodeCSV(list []model.Sale) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(csvHeader)
	for _, s := range list {
		_ = w.Write([]string{
			s.Reference,
			s.Date.Format(model.DateLayout),
			s.Items,
			strconv.FormatInt(s.Quantity, 10),
			s.Total.StringFixed(2),
			string(s.Payment),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, poserr.Storagef(err, "encode ledger")
	}
	return buf.Bytes(), nil
}

// decodeCSV parses the durable table format, header row first.
func decodeCSV(data []byte) ([]model.Sale, error) {
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, poserr.Storagef(err, "read ledger")
	}
	var list []model.Sale
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) != 6 {
			return nil, poserr.Storagef(fmt.Errorf("row %d has %d columns, want 6", i, len(row)), "parse ledger")
		}
		s, err := decodeRow(row)
		if err != nil {
			return nil, poserr.Storagef(err, "parse ledger row %d", i)
		}
		list = append(list, s)
	}
	return list, nil
}

// parseDate reads the Date column. The table stores local wall-clock
// time with no zone marker.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, s, time.Local)
}

func decodeRow(row []string) (model.Sale, error) {
	date, err := parseDate(row[1])
	if err != nil {
		return model.Sale{}, err
	}
	qty, err := strconv.ParseInt(row[3], 10, 64)
	if err != nil {
		return model.Sale{}, fmt.Errorf("quantity: %w", err)
	}
	total, err := decimal.NewFromString(row[4])
	if err != nil {
		return model.Sale{}, fmt.Errorf("total: %w", err)
	}
	pm, err := model.ParsePaymentMethod(row[5])
	if err != nil {
		return model.Sale{}, err
	}
	return model.Sale{
		Reference: row[0],
		Date:      date,
		Items:     row[2],
		Quantity:  qty,
		Total:     total,
		Payment:   pm,
	}, nil
}
