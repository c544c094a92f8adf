// gensales writes a sample sales changelog (JSONL of append events) for
// demos and replay testing.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"minipos/internal/catalog"
	"minipos/internal/changelog"
	"minipos/internal/model"
)

func main() {
	var count int
	var outputFile string
	flag.IntVar(&count, "count", 100, "number of sales to generate")
	flag.StringVar(&outputFile, "output", "pos.changelog.jsonl", "output file")
	flag.Parse()

	if err := generateSales(count, outputFile); err != nil {
		log.Fatalf("generation failed: %v", err)
	}
}

func generateSales(count int, outputFile string) error {
	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	products := catalog.DefaultProducts()
	methods := []model.PaymentMethod{model.Cash, model.Zelle}

	base := time.Now().Add(-time.Duration(count) * 10 * time.Second)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	enc := json.NewEncoder(file)
	for i := 0; i < count; i++ {
		p := products[rng.Intn(len(products))]
		qty := int64(1 + rng.Intn(5))
		when := base.Add(time.Duration(i) * 10 * time.Second) // 10s apart
		sale := model.Sale{
			Reference: when.Format("20060102150405"),
			Date:      when,
			Items:     p.Name,
			Quantity:  qty,
			Total:     p.Price.Mul(decimal.NewFromInt(qty)),
			Payment:   methods[rng.Intn(len(methods))],
		}
		e := changelog.Event{
			Op:        changelog.OpAppend,
			Reference: sale.Reference,
			TS:        when.UTC().Unix(),
			Sale:      &sale,
		}
		if err := enc.Encode(&e); err != nil {
			return fmt.Errorf("encode sale %d: %w", i+1, err)
		}
	}

	log.Printf("generated %d sales to %s", count, outputFile)
	return nil
}
