package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/actuallystonmai/shopwiz/internal/domain"
)

// column names as they appear in the catalog CSV header
const (
	colName        = "Name"
	colBrand       = "Brand"
	colTags        = "Tags"
	colRating      = "Rating"
	colReviewCount = "ReviewCount"
	colImageURL    = "ImageURL"
)

// LoadFile reads a catalog CSV from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

// Load parses a catalog CSV. Columns are located by header name so extra
// columns and any ordering are accepted. Only the Name column is required.
func Load(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty catalog: missing header")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := cols[colName]; !ok {
		return nil, fmt.Errorf("missing %q column", colName)
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var items []domain.CatalogItem
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		item := domain.CatalogItem{
			Name:     field(rec, colName),
			Brand:    field(rec, colBrand),
			Tags:     field(rec, colTags),
			ImageURL: field(rec, colImageURL),
		}
		if v := field(rec, colRating); v != "" {
			rating, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse rating %q: %w", line, v, err)
			}
			item.Rating = rating
		}
		if v := field(rec, colReviewCount); v != "" {
			// counts are sometimes exported as floats ("12.0")
			count, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse review count %q: %w", line, v, err)
			}
			item.ReviewCount = int(count)
		}
		items = append(items, item)
	}

	return New(items), nil
}
