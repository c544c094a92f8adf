// Package catalog owns the product table: name (row key) and price.
// Three backends implement the same Store contract; the CSV store is the
// canonical durable form, memory and pebble are alternates for embedding.
package catalog

import (
	"github.com/shopspring/decimal"

	"minipos/internal/model"
	"minipos/internal/poserr"
)

// Store abstracts the catalog backend. Each operation is a full
// read-modify-write of the product table; backends serialize operations so
// two sessions cannot interleave a read and a write.
type Store interface {
	Load() ([]model.Product, error)
	Add(name string, price decimal.Decimal) error
	Update(oldName, newName string, newPrice decimal.Decimal) error
	Remove(name string) error
}

// DefaultProducts is the catalog seeded on first Load when no durable
// state exists yet. Seeding happens once; it never overwrites a store.
func DefaultProducts() []model.Product {
	return []model.Product{
		{Name: "Mini Pancakes", Price: decimal.NewFromFloat(7.00)},
		{Name: "Rice Crispy Cup", Price: decimal.NewFromFloat(6.00)},
		{Name: "Strawberries Fondue", Price: decimal.NewFromFloat(6.00)},
		{Name: "Matcha", Price: decimal.NewFromFloat(5.00)},
	}
}

func findProduct(list []model.Product, name string) int {
	for i := range list {
		if list[i].Name == name {
			return i
		}
	}
	return -1
}

// addProduct applies the Add semantics to an in-memory copy of the table.
func addProduct(list []model.Product, name string, price decimal.Decimal) ([]model.Product, error) {
	if name == "" {
		return nil, poserr.Validationf("empty product name")
	}
	if !price.IsPositive() {
		return nil, poserr.Validationf("price %s must be > 0", price)
	}
	if findProduct(list, name) >= 0 {
		return nil, poserr.DuplicateKeyf("product %q already exists", name)
	}
	return append(list, model.Product{Name: name, Price: price}), nil
}

// updateProduct applies the rename/reprice semantics in place. A rename
// that collides with a different existing product is rejected rather than
// leaving two rows sharing a name.
func updateProduct(list []model.Product, oldName, newName string, newPrice decimal.Decimal) ([]model.Product, error) {
	i := findProduct(list, oldName)
	if i < 0 {
		return nil, poserr.NotFoundf("product %q", oldName)
	}
	if newName == "" {
		return nil, poserr.Validationf("empty product name")
	}
	if newPrice.IsNegative() {
		return nil, poserr.Validationf("price %s must be >= 0", newPrice)
	}
	if j := findProduct(list, newName); j >= 0 && j != i {
		return nil, poserr.DuplicateKeyf("product %q already exists", newName)
	}
	list[i].Name = newName
	list[i].Price = newPrice
	return list, nil
}

// removeProduct applies the Remove semantics. Historical sales keep only
// descriptive text, so removal never touches the ledger.
func removeProduct(list []model.Product, name string) ([]model.Product, error) {
	i := findProduct(list, name)
	if i < 0 {
		return nil, poserr.NotFoundf("product %q", name)
	}
	return append(list[:i], list[i+1:]...), nil
}
