package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/internal/app/repository"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	jsoniter "github.com/json-iterator/go"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sheet names of a catalog workbook.
const (
	SheetProducts        = "products"
	SheetParts           = "parts"
	SheetAlternativeSets = "alternative_sets"
	SheetSchemes         = "schemes"
)

// CatalogWorkbook is the parsed content of a catalog spreadsheet. Parts are
// grouped by product; alternative sets hang off their part.
type CatalogWorkbook struct {
	Products []model.Product
	Parts    map[uint][]model.Part
	Schemes  []model.Scheme
}

// ImportSummary counts what an import wrote.
type ImportSummary struct {
	Products        int
	Parts           int
	AlternativeSets int
	Schemes         int
}

type CatalogImporter interface {
	Import(ctx context.Context, wb *CatalogWorkbook) (*ImportSummary, error)
}

type catalogImporter struct {
	db      *gorm.DB
	catalog CatalogService
}

// NewCatalogImporter builds an importer. catalog may be nil; when set its
// parts cache is flushed after a successful import.
func NewCatalogImporter(db *gorm.DB, catalog CatalogService) CatalogImporter {
	return &catalogImporter{db: db, catalog: catalog}
}

// Import writes the workbook in one transaction. Products and schemes are
// upserted; each listed product has its parts replaced.
func (i *catalogImporter) Import(ctx context.Context, wb *CatalogWorkbook) (*ImportSummary, error) {
	summary := &ImportSummary{}

	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewProductRepository(tx).Upsert(ctx, wb.Products); err != nil {
			return err
		}
		summary.Products = len(wb.Products)

		partRepo := repository.NewPartRepository(tx)
		for _, product := range wb.Products {
			parts := wb.Parts[product.ID]
			if err := partRepo.ReplaceForProduct(ctx, product.ID, parts); err != nil {
				return fmt.Errorf("replace parts of product %d: %w", product.ID, err)
			}
			summary.Parts += len(parts)
			for _, p := range parts {
				summary.AlternativeSets += len(p.AlternativeSetRows)
			}
		}

		if err := repository.NewSchemeRepository(tx).Upsert(ctx, wb.Schemes); err != nil {
			return err
		}
		summary.Schemes = len(wb.Schemes)
		return nil
	})
	if err != nil {
		logger.Error("Catalog import failed", err)
		return nil, err
	}

	if i.catalog != nil {
		if err := i.catalog.InvalidateParts(ctx); err != nil {
			logger.Warn("Catalog imported but parts cache could not be flushed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	logger.Info("Catalog imported", map[string]interface{}{
		"products":         summary.Products,
		"parts":            summary.Parts,
		"alternative_sets": summary.AlternativeSets,
		"schemes":          summary.Schemes,
	})
	return summary, nil
}

// ParseCatalogWorkbook reads a catalog spreadsheet. Columns are located by
// header name, so their order does not matter. Missing sheets are treated
// as empty, except products.
func ParseCatalogWorkbook(r io.Reader) (*CatalogWorkbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	wb := &CatalogWorkbook{Parts: map[uint][]model.Part{}}

	productRows, err := readSheet(f, SheetProducts, true)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]bool)
	for _, row := range productRows {
		id, err := row.unsigned("id")
		if err != nil {
			return nil, err
		}
		width, err := row.integer("width")
		if err != nil {
			return nil, err
		}
		drawing, err := row.optInt("drawing")
		if err != nil {
			return nil, err
		}
		head, err := row.integer("head")
		if err != nil {
			return nil, err
		}
		wb.Products = append(wb.Products, model.Product{
			ID:      id,
			Src:     row.str("src"),
			Path:    row.str("path"),
			Width:   width,
			Name:    row.str("name"),
			Drawing: drawing,
			Head:    head,
		})
		known[id] = true
	}

	partRows, err := readSheet(f, SheetParts, false)
	if err != nil {
		return nil, err
	}
	// ref -> (product, index) so alternative sets can find their part.
	type partRef struct {
		product uint
		index   int
	}
	refs := make(map[string]partRef)
	for _, row := range partRows {
		attrs, err := row.partAttributes()
		if err != nil {
			return nil, err
		}
		if !known[attrs.ProductID] {
			return nil, fmt.Errorf("%s row %d: unknown product_id %d", SheetParts, row.line, attrs.ProductID)
		}
		// Parts without a ref are addressed by their sheet row.
		ref := row.str("ref")
		if ref == "" {
			ref = fmt.Sprintf("row:%d", row.line)
		}
		if _, dup := refs[ref]; dup {
			return nil, fmt.Errorf("%s row %d: duplicate ref %q", SheetParts, row.line, ref)
		}
		refs[ref] = partRef{product: attrs.ProductID, index: len(wb.Parts[attrs.ProductID])}
		wb.Parts[attrs.ProductID] = append(wb.Parts[attrs.ProductID], model.Part{PartAttributes: attrs})
	}

	setRows, err := readSheet(f, SheetAlternativeSets, false)
	if err != nil {
		return nil, err
	}
	for _, row := range setRows {
		ref, ok := refs[row.str("part_ref")]
		if !ok {
			return nil, fmt.Errorf("%s row %d: unknown part_ref %q", SheetAlternativeSets, row.line, row.str("part_ref"))
		}
		set, err := row.alternativeSet()
		if err != nil {
			return nil, err
		}
		part := &wb.Parts[ref.product][ref.index]
		part.AlternativeSetRows = append(part.AlternativeSetRows, set)
	}

	schemeRows, err := readSheet(f, SheetSchemes, false)
	if err != nil {
		return nil, err
	}
	for _, row := range schemeRows {
		data := strings.TrimSpace(row.str("data"))
		if !jsoniter.Valid([]byte(data)) {
			return nil, fmt.Errorf("%s row %d: data is not valid JSON", SheetSchemes, row.line)
		}
		wb.Schemes = append(wb.Schemes, model.Scheme{
			Path: row.str("path"),
			Data: datatypes.JSON(data),
		})
	}

	return wb, nil
}

type sheetRow struct {
	sheet  string
	line   int
	values map[string]string
}

func readSheet(f *excelize.File, name string, required bool) ([]sheetRow, error) {
	if idx, _ := f.GetSheetIndex(name); idx < 0 {
		if required {
			return nil, fmt.Errorf("sheet %q not found", name)
		}
		return nil, nil
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var out []sheetRow
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		values := make(map[string]string, len(header))
		for c, h := range header {
			if c < len(row) {
				values[h] = strings.TrimSpace(row[c])
			}
		}
		out = append(out, sheetRow{sheet: name, line: i + 2, values: values})
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r sheetRow) str(col string) string {
	return r.values[col]
}

func (r sheetRow) optStr(col string) *string {
	v := r.values[col]
	if v == "" {
		return nil
	}
	return &v
}

func (r sheetRow) optInt(col string) (*int, error) {
	v := r.values[col]
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s row %d: %s must be an integer, got %q", r.sheet, r.line, col, v)
	}
	return &n, nil
}

func (r sheetRow) integer(col string) (int, error) {
	n, err := r.optInt(col)
	if err != nil || n == nil {
		return 0, err
	}
	return *n, nil
}

// intOr returns fallback for an empty cell.
func (r sheetRow) intOr(col string, fallback int) (int, error) {
	n, err := r.optInt(col)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return fallback, nil
	}
	return *n, nil
}

func (r sheetRow) unsigned(col string) (uint, error) {
	v := r.values[col]
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: %s must be a positive integer, got %q", r.sheet, r.line, col, v)
	}
	return uint(n), nil
}

func (r sheetRow) partAttributes() (model.PartAttributes, error) {
	var (
		attrs model.PartAttributes
		err   error
	)
	if attrs.ProductID, err = r.unsigned("product_id"); err != nil {
		return attrs, err
	}
	if attrs.Position, err = r.integer("position"); err != nil {
		return attrs, err
	}
	if attrs.Quantity, err = r.intOr("quantity", 1); err != nil {
		return attrs, err
	}
	if attrs.Drawing, err = r.optInt("drawing"); err != nil {
		return attrs, err
	}
	attrs.Name = r.str("name")
	attrs.Description = r.optStr("description")
	attrs.Designation = r.optStr("designation")

	coords := []struct {
		col  string
		dest **int
	}{
		{"positioning_top", &attrs.PositioningTop},
		{"positioning_left", &attrs.PositioningLeft},
		{"positioning_top2", &attrs.PositioningTop2},
		{"positioning_left2", &attrs.PositioningLeft2},
		{"positioning_top3", &attrs.PositioningTop3},
		{"positioning_left3", &attrs.PositioningLeft3},
		{"positioning_top4", &attrs.PositioningTop4},
		{"positioning_left4", &attrs.PositioningLeft4},
		{"positioning_top5", &attrs.PositioningTop5},
		{"positioning_left5", &attrs.PositioningLeft5},
	}
	for _, c := range coords {
		if *c.dest, err = r.optInt(c.col); err != nil {
			return attrs, err
		}
	}
	return attrs, nil
}

func (r sheetRow) alternativeSet() (model.PartAlternativeSet, error) {
	set := model.PartAlternativeSet{
		SetName:     r.str("set_name"),
		Name:        r.str("name"),
		Description: r.optStr("description"),
		Designation: r.optStr("designation"),
	}
	if set.SetName == "" {
		return set, fmt.Errorf("%s row %d: set_name is required", r.sheet, r.line)
	}
	var err error
	if set.Position, err = r.integer("position"); err != nil {
		return set, err
	}
	if set.Quantity, err = r.intOr("quantity", 1); err != nil {
		return set, err
	}
	if set.Drawing, err = r.optInt("drawing"); err != nil {
		return set, err
	}
	return set, nil
}
