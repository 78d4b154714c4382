package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"negobot/internal/model"
)

// LoadCSV seeds the catalog from a CSV file with a header row.
// Required columns: name, mrp (list price in rupees), stock.
// Optional: id, min_price, description, image. Rows without an id are
// assigned sequential ids after the current maximum.
// Returns the number of products loaded.
func LoadCSV(ctx context.Context, store Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return loadCSV(ctx, store, f)
}

func loadCSV(ctx context.Context, store Store, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "mrp", "stock"} {
		if _, ok := col[required]; !ok {
			return 0, fmt.Errorf("csv missing required column %q", required)
		}
	}

	nextID, err := maxProductID(ctx, store)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return loaded, fmt.Errorf("read csv line %d: %w", line, err)
		}

		field := func(name string) string {
			if i, ok := col[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		p := model.Product{
			Name:        field("name"),
			Description: field("description"),
			Price:       model.ParsePaise(field("mrp")),
			MinPrice:    model.ParsePaise(field("min_price")),
			Image:       field("image"),
		}
		if stock := field("stock"); stock != "" {
			n, err := strconv.Atoi(stock)
			if err != nil {
				return loaded, fmt.Errorf("csv line %d: bad stock %q", line, stock)
			}
			p.Stock = n
		}
		if id := field("id"); id != "" {
			n, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return loaded, fmt.Errorf("csv line %d: bad id %q", line, id)
			}
			p.ID = n
		} else {
			nextID++
			p.ID = nextID
		}

		if err := store.UpsertProduct(ctx, &p); err != nil {
			return loaded, fmt.Errorf("csv line %d: %w", line, err)
		}
		loaded++
	}
	return loaded, nil
}

func maxProductID(ctx context.Context, store Store) (int64, error) {
	products, err := store.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list products for id assignment: %w", err)
	}
	var max int64
	for _, p := range products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max, nil
}
