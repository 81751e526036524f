package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"biglous-storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products. A row
// with a product name starts a new product; rows with only variation fields
// attach to the preceding product.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

type csvRow struct {
	ID          string
	Name        string
	Desc        string
	PriceCents  *int64
	Currency    string
	ImageURL    string
	VariationID string
	VarName     string
	VarCents    *int64
}

// Run parses CSV rows and upserts products with their variations.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *domain.Product
		imported int
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := i.save(ctx, current); err != nil {
			return err
		}
		imported++
		current = nil
		return nil
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}

		if row.Name != "" {
			if err := flush(); err != nil {
				return imported, err
			}
			currency := row.Currency
			if currency == "" {
				currency = "USD"
			}
			current = &domain.Product{
				ID:          row.ID,
				Name:        row.Name,
				Description: row.Desc,
				PriceCents:  row.PriceCents,
				Currency:    currency,
				Image:       row.ImageURL,
			}
		}

		if current != nil && row.VarName != "" {
			current.Variations = append(current.Variations, domain.Variation{
				ID:         row.VariationID,
				Name:       row.VarName,
				PriceCents: row.VarCents,
				Currency:   current.Currency,
			})
		}
	}

	if err := flush(); err != nil {
		return imported, err
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p *domain.Product) error {
	if p.Name == "" {
		return errors.New("invalid product row: missing name")
	}
	if p.ID != "" && len(p.ID) != 36 {
		return fmt.Errorf("invalid id for product %q: %s", p.Name, p.ID)
	}

	if _, err := i.productRepo.Upsert(ctx, *p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.Name, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		ID:          pick(record, index, "id"),
		Name:        pick(record, index, "name"),
		Desc:        pick(record, index, "description"),
		PriceCents:  parsePrice(pick(record, index, "price")),
		Currency:    strings.ToUpper(pick(record, index, "currency")),
		ImageURL:    pick(record, index, "image"),
		VariationID: pick(record, index, "variation.id"),
		VarName:     pick(record, index, "variation.name"),
		VarCents:    parsePrice(pick(record, index, "variation.price")),
	}
	if row.Name == "" && row.VarName == "" {
		return nil
	}
	return row
}

// parsePrice converts a whole-unit decimal price ("4.50") to minor units.
// Unparseable or empty prices yield nil so the catalog default applies.
func parsePrice(s string) *int64 {
	if s == "" {
		return nil
	}
	units, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(units, 0) || math.IsNaN(units) {
		return nil
	}
	cents := int64(math.Round(units * 100))
	return &cents
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
