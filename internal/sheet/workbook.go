package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// LoadWorkbook reads one worksheet of a local .xlsx file. An empty sheetName
// selects the first worksheet, matching how a gid-less spreadsheet URL
// defaults to the first tab.
func LoadWorkbook(path, sheetName string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheetName == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook %s has no worksheets", path)
		}
		sheetName = list[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", sheetName, err)
	}
	return New(rows)
}
