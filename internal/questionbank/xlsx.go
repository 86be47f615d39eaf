package questionbank

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// XLSXOptions defines the spreadsheet layout.
type XLSXOptions struct {
	SheetName    string // Sheet to read; empty means the first sheet
	IDColumn     string // Column with the id; empty means ids are positional
	PromptColumn string // Column with the Japanese prompt
	AnswerColumn string // Column with the English answer
	StartRow     int    // First data row (1-based index)
}

// DefaultXLSXOptions returns the classroom workbook layout:
// A = id, B = Japanese, C = English, header in row 1.
func DefaultXLSXOptions() XLSXOptions {
	return XLSXOptions{
		IDColumn:     "A",
		PromptColumn: "B",
		AnswerColumn: "C",
		StartRow:     2,
	}
}

func (o XLSXOptions) withDefaults() XLSXOptions {
	d := DefaultXLSXOptions()
	if o.PromptColumn == "" {
		o.PromptColumn = d.PromptColumn
	}
	if o.AnswerColumn == "" {
		o.AnswerColumn = d.AnswerColumn
	}
	if o.StartRow < 1 {
		o.StartRow = d.StartRow
	}
	return o
}

// ParseXLSX reads questions from an Excel workbook.
func ParseXLSX(r io.Reader, opts ParseOptions) (*Bank, error) {
	log := opts.logger()
	layout := opts.XLSX.withDefaults()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := layout.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("get rows of %q: %w", sheet, err)
	}

	promptIdx, err := columnIndex(layout.PromptColumn)
	if err != nil {
		return nil, err
	}
	answerIdx, err := columnIndex(layout.AnswerColumn)
	if err != nil {
		return nil, err
	}
	idIdx := -1
	if layout.IDColumn != "" {
		if idIdx, err = columnIndex(layout.IDColumn); err != nil {
			return nil, err
		}
	}

	var records []record
	var issues []Issue
	for i, row := range rows {
		rowNo := i + 1
		if rowNo < layout.StartRow {
			continue
		}
		if isBlankRow(row) {
			continue
		}

		r := record{
			Prompt:   cell(row, promptIdx),
			Answer:   cell(row, answerIdx),
			Position: rowNo,
		}
		if raw := strings.TrimSpace(cell(row, idIdx)); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil || id < 0 {
				issues = append(issues, Issue{Position: rowNo, Err: fmt.Errorf("%w: bad id %q", ErrMalformed, raw), Skipped: true})
				log.Warn("skipping row with bad id", zap.Int("row", rowNo), zap.String("id", raw))
				continue
			}
			r.ID = &id
		}
		records = append(records, r)
	}

	questions, normIssues := normalize(records, opts)
	return &Bank{
		Namespace: opts.DefaultNamespace,
		Questions: questions,
		Issues:    append(issues, normIssues...),
	}, nil
}

// columnIndex converts a column name ("A", "AB") to a 0-based index.
func columnIndex(name string) (int, error) {
	n, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", name, err)
	}
	return n - 1, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
