package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names. Each sheet has a header row; columns are matched by
// header text, so their order is free.
const (
	SheetDistricts = "Districts"
	SheetSoilTypes = "SoilTypes"
	SheetVarieties = "Varieties"
	SheetTemplates = "Templates"
)

var templateHeaders = []string{"task_name", "phase", "task_type", "variety_key", "timing_days_after_start", "detailed_steps"}

func LoadXLSX(path string) (*Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog.LoadXLSX: %w", err)
	}
	defer f.Close()
	return readWorkbook(f)
}

func ParseXLSX(r io.Reader) (*Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("catalog.ParseXLSX: %w", err)
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) (*Document, error) {
	doc := &Document{}
	present := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		present[name] = true
	}

	if present[SheetDistricts] {
		rows, err := sheetRecords(f, SheetDistricts)
		if err != nil {
			return nil, err
		}
		for i, rec := range rows {
			id, err := atoi(rec["id"])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", SheetDistricts, i+2, err)
			}
			doc.Districts = append(doc.Districts, DistrictRow{ID: id, Name: rec["name"]})
		}
	}

	if present[SheetSoilTypes] {
		rows, err := sheetRecords(f, SheetSoilTypes)
		if err != nil {
			return nil, err
		}
		for i, rec := range rows {
			id, err := atoi(rec["id"])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", SheetSoilTypes, i+2, err)
			}
			doc.SoilTypes = append(doc.SoilTypes, SoilTypeRow{ID: id, Name: rec["name"]})
		}
	}

	if present[SheetVarieties] {
		rows, err := sheetRecords(f, SheetVarieties)
		if err != nil {
			return nil, err
		}
		for _, rec := range rows {
			doc.Varieties = append(doc.Varieties, VarietyRow{ID: rec["id"], Name: rec["name"]})
		}
	}

	if !present[SheetTemplates] {
		return nil, fmt.Errorf("catalog: workbook has no %q sheet", SheetTemplates)
	}
	rows, err := sheetRecords(f, SheetTemplates)
	if err != nil {
		return nil, err
	}
	for i, rec := range rows {
		offset, err := atoi(rec["timing_days_after_start"])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetTemplates, i+2, err)
		}
		doc.Templates = append(doc.Templates, TemplateRow{
			TaskName:             rec["task_name"],
			Phase:                rec["phase"],
			TaskType:             rec["task_type"],
			VarietyKey:           rec["variety_key"],
			TimingDaysAfterStart: offset,
			DetailedSteps:        splitSteps(rec["detailed_steps"]),
		})
	}
	return doc, nil
}

// sheetRecords returns each non-empty data row keyed by lower-cased header.
func sheetRecords(f *excelize.File, sheet string) ([]map[string]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("catalog: read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var out []map[string]string
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(headers))
		empty := true
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				empty = false
			}
			rec[headers[i]] = cell
		}
		if !empty {
			out = append(out, rec)
		}
	}
	return out, nil
}

func splitSteps(cell string) []string {
	var steps []string
	for _, s := range strings.Split(cell, "\n") {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

// WriteXLSX renders doc as a workbook in the layout LoadXLSX reads.
func WriteXLSX(doc *Document, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	write := func(sheet string, header []interface{}, rows [][]interface{}) error {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			r := row
			if err := f.SetSheetRow(sheet, cell, &r); err != nil {
				return err
			}
		}
		return nil
	}

	var districts, soils, varieties, templates [][]interface{}
	for _, d := range doc.Districts {
		districts = append(districts, []interface{}{d.ID, d.Name})
	}
	for _, s := range doc.SoilTypes {
		soils = append(soils, []interface{}{s.ID, s.Name})
	}
	for _, v := range doc.Varieties {
		varieties = append(varieties, []interface{}{v.ID, v.Name})
	}
	for _, t := range doc.Templates {
		templates = append(templates, []interface{}{
			t.TaskName, t.Phase, t.TaskType, t.VarietyKey, t.TimingDaysAfterStart, strings.Join(t.DetailedSteps, "\n"),
		})
	}

	templateHeader := make([]interface{}, len(templateHeaders))
	for i, h := range templateHeaders {
		templateHeader[i] = h
	}

	if err := write(SheetDistricts, []interface{}{"id", "name"}, districts); err != nil {
		return fmt.Errorf("catalog.WriteXLSX: %w", err)
	}
	if err := write(SheetSoilTypes, []interface{}{"id", "name"}, soils); err != nil {
		return fmt.Errorf("catalog.WriteXLSX: %w", err)
	}
	if err := write(SheetVarieties, []interface{}{"id", "name"}, varieties); err != nil {
		return fmt.Errorf("catalog.WriteXLSX: %w", err)
	}
	if err := write(SheetTemplates, templateHeader, templates); err != nil {
		return fmt.Errorf("catalog.WriteXLSX: %w", err)
	}
	f.DeleteSheet("Sheet1")

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("catalog.WriteXLSX: %w", err)
	}
	return nil
}
