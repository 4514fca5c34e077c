package workflow

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// excelLookup implements the lookup_excel step contract: open the workbook,
// read the named (or first) sheet, case-insensitively substring-match
// searchValue against searchColumn, and project returnColumns from the
// first matching row.
func excelLookup(filePath, sheetName, searchColumn, searchValue string, returnColumns []string) (map[string]string, *StepError) {
	resolved := filePath
	if !filepath.IsAbs(resolved) {
		if wd, err := os.Getwd(); err == nil {
			resolved = filepath.Join(wd, filePath)
		}
	}
	if _, err := os.Stat(resolved); err != nil {
		return nil, newStepError(ErrFileNotFound, "workbook not found: %s", filePath)
	}

	f, err := excelize.OpenFile(resolved)
	if err != nil {
		return nil, newStepError(ErrFileNotFound, "opening workbook %s: %v", filePath, err)
	}
	defer f.Close()

	sheet := sheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) == 0 {
		return nil, newStepError(ErrNoMatch, "sheet %q has no rows", sheet)
	}

	header := rows[0]
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}

	searchIdx, ok := colIndex[searchColumn]
	if !ok {
		return nil, newStepError(ErrUnknownColumn, "search column %q not found", searchColumn)
	}
	for _, col := range returnColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, newStepError(ErrUnknownColumn, "return column %q not found", col)
		}
	}

	needle := strings.ToLower(searchValue)
	for _, row := range rows[1:] {
		if searchIdx >= len(row) {
			continue
		}
		if strings.Contains(strings.ToLower(row[searchIdx]), needle) {
			result := make(map[string]string, len(returnColumns))
			for _, col := range returnColumns {
				idx := colIndex[col]
				if idx < len(row) {
					result[col] = row[idx]
				} else {
					result[col] = ""
				}
			}
			return result, nil
		}
	}

	return nil, newStepError(ErrNoMatch, "no row matched %q in column %q", searchValue, searchColumn)
}
