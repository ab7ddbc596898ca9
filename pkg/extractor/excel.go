package extractor

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"docnorm/pkg/failure"
)

// Record is one data row keyed by header. Values are float64, bool or
// string; empty cells are absent rather than nil.
type Record map[string]interface{}

// Sheet is one worksheet's records in row order.
type Sheet struct {
	Name string   `json:"sheetName"`
	Rows []Record `json:"rows"`
}

// SheetCollection holds one Sheet per worksheet in workbook order.
type SheetCollection []Sheet

type ExcelExtractor struct {
	Log zerolog.Logger
}

func NewExcelExtractor(log zerolog.Logger) *ExcelExtractor {
	return &ExcelExtractor{Log: log.With().Str("component", "excel").Logger()}
}

func (e *ExcelExtractor) Extract(ctx context.Context, payload []byte) (SheetCollection, error) {
	if Detect(payload) == FormatXls {
		return nil, failure.Newf(failure.KindExcel, "legacy .xls workbooks are not supported")
	}

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, failure.New(failure.KindExcel, "payload is not a valid workbook", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, failure.Newf(failure.KindExcel, "workbook has no worksheets")
	}

	out := make(SheetCollection, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, failure.New(failure.KindTimeout, "excel extraction interrupted", err)
		}
		rows, err := sheetRecords(f, name)
		if err != nil {
			return nil, failure.New(failure.KindExcel, fmt.Sprintf("failed to read sheet %q", name), err)
		}
		e.Log.Debug().Str("sheet", name).Int("records", len(rows)).Msg("sheet converted")
		out = append(out, Sheet{Name: name, Rows: rows})
	}
	return out, nil
}

// sheetRecords turns a sheet grid into records. The first populated row
// supplies the field names by column position.
func sheetRecords(f *excelize.File, sheet string) ([]Record, error) {
	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0)
	headerRow := -1
	for i, row := range grid {
		if !blankRow(row) {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return records, nil
	}

	width := 0
	for _, row := range grid[headerRow:] {
		if len(row) > width {
			width = len(row)
		}
	}
	headers := headerNames(grid[headerRow], width)

	for r := headerRow + 1; r < len(grid); r++ {
		row := grid[r]
		if blankRow(row) {
			continue
		}
		rec := make(Record, len(row))
		for c, raw := range row {
			if raw == "" {
				continue
			}
			v, err := cellValue(f, sheet, c, r, raw)
			if err != nil {
				return nil, err
			}
			rec[headers[c]] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

// headerNames names every column up to width. Blank headers become
// __EMPTY, __EMPTY_1, ... and repeated headers get _1, _2 suffixes.
func headerNames(row []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for c := 0; c < width; c++ {
		base := ""
		if c < len(row) {
			base = strings.TrimSpace(row[c])
		}
		if base == "" {
			base = "__EMPTY"
		}
		name := base
		if n, ok := seen[base]; ok {
			name = base + "_" + strconv.Itoa(n)
			for {
				if _, taken := seen[name]; !taken {
					break
				}
				n++
				name = base + "_" + strconv.Itoa(n)
			}
			seen[base] = n + 1
		} else {
			seen[base] = 1
		}
		seen[name] = 1
		names[c] = name
	}
	return names
}

func cellValue(f *excelize.File, sheet string, col, row int, raw string) (interface{}, error) {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return nil, err
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n, nil
		}
	}
	return raw, nil
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
