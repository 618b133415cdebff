package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/internal/app/repository"
	"github.com/ikkim/pumpcatalog-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type workbookSheet struct {
	name string
	rows [][]interface{}
}

func buildWorkbook(t *testing.T, sheets ...workbookSheet) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet.name))
		} else {
			_, err := f.NewSheet(sheet.name)
			require.NoError(t, err)
		}
		for r, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(sheet.name, cell, &values))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func catalogSheets() []workbookSheet {
	return []workbookSheet{
		{name: SheetProducts, rows: [][]interface{}{
			{"id", "name", "path", "src", "width", "drawing", "head"},
			{1, "Centrifugal Pump", "/pumps/centrifugal", "img/centrifugal.png", 600, 1200, 1},
			{2, "Dosing Pump", "/pumps/dosing", "img/dosing.png", 400, "", 0},
		}},
		{name: SheetParts, rows: [][]interface{}{
			{"ref", "product_id", "position", "name", "description", "designation", "quantity", "drawing", "positioning_top", "positioning_left", "positioning_top2"},
			{"seal", 1, 1, "Seal", "Mechanical seal", "S-1", 1, 10, 12, 40, ""},
			{"ring", 1, 2, "Ring", "", "", "", "", "", "", 33},
			{"", 2, 1, "Diaphragm", "", "", 2, "", "", "", ""},
		}},
		{name: SheetAlternativeSets, rows: [][]interface{}{
			{"part_ref", "set_name", "position", "name", "quantity", "drawing"},
			{"seal", "EU", 1, "Seal-EU", 1, ""},
			{"seal", "US", 1, "Seal-US", 2, 4},
		}},
		{name: SheetSchemes, rows: [][]interface{}{
			{"path", "data"},
			{"/pumps/centrifugal", `{"nodes":[{"x_pos":1}]}`},
		}},
	}
}

func TestParseCatalogWorkbook(t *testing.T) {
	wb, err := ParseCatalogWorkbook(buildWorkbook(t, catalogSheets()...))
	require.NoError(t, err)

	require.Len(t, wb.Products, 2)
	assert.Equal(t, uint(1), wb.Products[0].ID)
	assert.Equal(t, 1200, *wb.Products[0].Drawing)
	assert.Nil(t, wb.Products[1].Drawing)

	require.Len(t, wb.Parts[1], 2)
	seal := wb.Parts[1][0]
	assert.Equal(t, "Seal", seal.Name)
	assert.Equal(t, "Mechanical seal", *seal.Description)
	assert.Equal(t, 12, *seal.PositioningTop)
	assert.Nil(t, seal.PositioningTop2)
	assert.Len(t, seal.AlternativeSetRows, 2)

	ring := wb.Parts[1][1]
	assert.Equal(t, 1, ring.Quantity)
	assert.Nil(t, ring.Description)
	assert.Equal(t, 33, *ring.PositioningTop2)

	require.Len(t, wb.Parts[2], 1)
	assert.Equal(t, 2, wb.Parts[2][0].Quantity)

	require.Len(t, wb.Schemes, 1)
	assert.JSONEq(t, `{"nodes":[{"x_pos":1}]}`, string(wb.Schemes[0].Data))
}

func TestParseCatalogWorkbook_Errors(t *testing.T) {
	tests := []struct {
		name   string
		sheets []workbookSheet
		errMsg string
	}{
		{
			name:   "missing products sheet",
			sheets: []workbookSheet{{name: SheetParts, rows: [][]interface{}{{"product_id"}}}},
			errMsg: `sheet "products" not found`,
		},
		{
			name: "part of unknown product",
			sheets: []workbookSheet{
				{name: SheetProducts, rows: [][]interface{}{{"id", "name"}, {1, "Pump"}}},
				{name: SheetParts, rows: [][]interface{}{{"product_id", "position", "name"}, {9, 1, "Seal"}}},
			},
			errMsg: "unknown product_id 9",
		},
		{
			name: "non-numeric position",
			sheets: []workbookSheet{
				{name: SheetProducts, rows: [][]interface{}{{"id", "name"}, {1, "Pump"}}},
				{name: SheetParts, rows: [][]interface{}{{"product_id", "position", "name"}, {1, "first", "Seal"}}},
			},
			errMsg: "position must be an integer",
		},
		{
			name: "dangling alternative set",
			sheets: []workbookSheet{
				{name: SheetProducts, rows: [][]interface{}{{"id", "name"}, {1, "Pump"}}},
				{name: SheetAlternativeSets, rows: [][]interface{}{{"part_ref", "set_name"}, {"nope", "EU"}}},
			},
			errMsg: `unknown part_ref "nope"`,
		},
		{
			name: "invalid scheme json",
			sheets: []workbookSheet{
				{name: SheetProducts, rows: [][]interface{}{{"id", "name"}, {1, "Pump"}}},
				{name: SheetSchemes, rows: [][]interface{}{{"path", "data"}, {"/a", "{broken"}}},
			},
			errMsg: "data is not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalogWorkbook(buildWorkbook(t, tt.sheets...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseCatalogWorkbook_UnreferencedPartsShareAPosition(t *testing.T) {
	wb, err := ParseCatalogWorkbook(buildWorkbook(t,
		workbookSheet{name: SheetProducts, rows: [][]interface{}{{"id", "name"}, {1, "Pump"}}},
		workbookSheet{name: SheetParts, rows: [][]interface{}{
			{"product_id", "position", "name"},
			{1, 3, "Bolt"},
			{1, 3, "Washer"},
		}},
		workbookSheet{name: SheetAlternativeSets, rows: [][]interface{}{
			{"part_ref", "set_name", "name"},
			{"row:3", "EU", "Washer-EU"},
		}},
	))
	require.NoError(t, err)

	require.Len(t, wb.Parts[1], 2)
	assert.Equal(t, "Bolt", wb.Parts[1][0].Name)
	assert.Empty(t, wb.Parts[1][0].AlternativeSetRows)
	assert.Equal(t, "Washer", wb.Parts[1][1].Name)
	require.Len(t, wb.Parts[1][1].AlternativeSetRows, 1)
}

func TestCatalogImporter_ImportIsRepeatable(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	cache := newMemoryCache()
	cache.entries["parts:1"] = []byte(`[]`)
	catalog := NewCatalogService(
		repository.NewProductRepository(testDB),
		repository.NewPartRepository(testDB),
		repository.NewSchemeRepository(testDB),
		cache,
		0,
	)
	importer := NewCatalogImporter(testDB, catalog)

	wb, err := ParseCatalogWorkbook(buildWorkbook(t, catalogSheets()...))
	require.NoError(t, err)

	summary, err := importer.Import(ctx, wb)
	require.NoError(t, err)
	assert.Equal(t, &ImportSummary{Products: 2, Parts: 3, AlternativeSets: 2, Schemes: 1}, summary)
	assert.Empty(t, cache.entries)

	// Re-parse so the second run starts from fresh structs without ids.
	wb, err = ParseCatalogWorkbook(buildWorkbook(t, catalogSheets()...))
	require.NoError(t, err)
	_, err = importer.Import(ctx, wb)
	require.NoError(t, err)

	var products, parts, sets, schemes int64
	testDB.Model(&model.Product{}).Count(&products)
	testDB.Model(&model.Part{}).Count(&parts)
	testDB.Model(&model.PartAlternativeSet{}).Count(&sets)
	testDB.Model(&model.Scheme{}).Count(&schemes)
	assert.Equal(t, int64(2), products)
	assert.Equal(t, int64(3), parts)
	assert.Equal(t, int64(2), sets)
	assert.Equal(t, int64(1), schemes)

	grouped, err := catalog.ListParts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, grouped, 2)
	assert.Equal(t, "Seal-US", *grouped[0].AlternativeSets["US"].Name)
}
