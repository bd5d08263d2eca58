package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/recipematch/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Spreadsheet columns, matched case-insensitively against the header row.
const (
	colID        = "id"
	colTitle     = "title"
	colHandle    = "handle"
	colThumbnail = "thumbnail"
	colTags      = "tags"
	colVariantID = "variant_id"
	colPrice     = "price"
)

// FileSource reads a catalog export from disk: a JSON array of products or an
// XLSX sheet with one row per variant.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed catalog source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// ListProducts loads the file and returns at most limit products.
func (s *FileSource) ListProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		products []domain.Product
		err      error
	)
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".json":
		products, err = readJSON(s.path)
	case ".xlsx":
		products, err = readXLSX(s.path)
	default:
		return nil, fmt.Errorf("unsupported catalog file type %q", filepath.Ext(s.path))
	}
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func readJSON(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file: %w", err)
	}
	return products, nil
}

func readXLSX(path string) ([]domain.Product, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in catalog workbook")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[string]int)
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	if _, ok := columns[colID]; !ok {
		return nil, fmt.Errorf("required column %q not found in catalog workbook", colID)
	}
	if _, ok := columns[colTitle]; !ok {
		return nil, fmt.Errorf("required column %q not found in catalog workbook", colTitle)
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var products []domain.Product
	index := make(map[string]int)

	for rowIdx, row := range rows[1:] {
		id := cell(row, colID)
		if id == "" {
			continue
		}

		i, seen := index[id]
		if !seen {
			products = append(products, domain.Product{
				ID:        id,
				Title:     cell(row, colTitle),
				Handle:    cell(row, colHandle),
				Thumbnail: cell(row, colThumbnail),
				Tags:      splitTags(cell(row, colTags)),
			})
			i = len(products) - 1
			index[id] = i
		}

		variantID := cell(row, colVariantID)
		if variantID == "" {
			continue
		}
		price, err := parsePrice(cell(row, colPrice))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowIdx+2, err)
		}
		products[i].Variants = append(products[i].Variants, domain.Variant{ID: variantID, Price: price})
	}

	return products, nil
}

func splitTags(s string) []string {
	var tags []string
	for _, tag := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// parsePrice accepts "12.5" and "12,5"; an empty cell is no price.
func parsePrice(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", s)
	}
	return &v, nil
}
