package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"minipos/internal/poserr"
)

func TestPebbleStore_SeedAndCRUD(t *testing.T) {
	st, err := NewPebbleStore(t.TempDir())
	if err != nil {
		t.Fatalf("pebble open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	list, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(list) != 4 || list[0].Name != "Mini Pancakes" || list[3].Name != "Matcha" {
		t.Fatalf("defaults missing or out of order: %+v", list)
	}

	if err := st.Add("Churros", decimal.NewFromFloat(4.50)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := st.Add("Churros", decimal.NewFromInt(5)); !errors.Is(err, poserr.ErrDuplicateKey) {
		t.Fatalf("duplicate add should fail, got %v", err)
	}
	if err := st.Update("Churros", "Churro Cup", decimal.NewFromInt(5)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := st.Remove("Matcha"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	list, err = st.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	// Insertion order survives rename; Matcha is gone, Churro Cup is last.
	if len(list) != 4 {
		t.Fatalf("want 4 rows, got %+v", list)
	}
	last := list[len(list)-1]
	if last.Name != "Churro Cup" || !last.Price.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected last row: %+v", last)
	}
	for _, p := range list {
		if p.Name == "Matcha" {
			t.Fatalf("removed row still present: %+v", list)
		}
	}
}

func TestPebbleStore_NoReseedAfterClearing(t *testing.T) {
	st, err := NewPebbleStore(t.TempDir())
	if err != nil {
		t.Fatalf("pebble open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	list, _ := st.Load()
	for _, p := range list {
		if err := st.Remove(p.Name); err != nil {
			t.Fatalf("remove %s: %v", p.Name, err)
		}
	}
	list, err = st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("emptied store was reseeded: %+v", list)
	}
}
