package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	matchesSheet = "Matches"
	profileSheet = "Profile"
)

var matchColumns = []struct {
	title string
	width float64
}{
	{"Score", 8},
	{"Title", 40},
	{"Company", 28},
	{"Location", 28},
	{"Remote", 9},
	{"Salary", 26},
	{"Employment", 14},
	{"Posted (days ago)", 10},
	{"Matching skills", 36},
	{"Reasons", 60},
	{"AI fit", 8},
	{"AI score", 9},
	{"AI reason", 50},
	{"Source", 12},
	{"Apply URL", 50},
}

// WriteExcel saves the report as an .xlsx workbook and returns the final path. The
// extension is added when missing.
func (r *Report) WriteExcel(path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", matchesSheet); err != nil {
		return "", fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(profileSheet); err != nil {
		return "", fmt.Errorf("creating profile sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return "", fmt.Errorf("creating header style: %w", err)
	}

	if err := r.writeMatches(f, header); err != nil {
		return "", fmt.Errorf("writing matches sheet: %w", err)
	}
	if err := r.writeProfile(f, header); err != nil {
		return "", fmt.Errorf("writing profile sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}
	return path, nil
}

func (r *Report) writeMatches(f *excelize.File, header int) error {
	titles := make([]any, 0, len(matchColumns))
	for i, c := range matchColumns {
		titles = append(titles, c.title)
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(matchesSheet, col, col, c.width); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(matchesSheet, "A1", &titles); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(matchColumns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(matchesSheet, "A1", last, header); err != nil {
		return err
	}

	for i, e := range r.Entries {
		p := e.Posting
		row := []any{
			e.Score,
			p.Title,
			p.Company,
			p.Location,
			yesNo(p.IsRemote()),
			p.Salary.String(),
			p.EmploymentType,
			p.PostedDaysAgo,
			strings.Join(e.MatchingSkills, ", "),
			strings.Join(e.Reasons, "; "),
			"", "", "",
			p.Source.String(),
			p.ApplyURL,
		}
		if e.AI != nil {
			row[10] = yesNo(e.AI.Fit)
			row[11] = e.AI.Score
			row[12] = e.AI.Reason
			if e.AI.Error != "" {
				row[12] = "error: " + e.AI.Error
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(matchesSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SetPanes(matchesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (r *Report) writeProfile(f *excelize.File, header int) error {
	p := r.Profile
	rows := [][]any{
		{"Field", "Value"},
		{"Name", p.Name},
		{"Email", p.Email},
		{"Location", p.Preferred()},
		{"Seniority", p.Seniority.String()},
		{"Years of experience", p.YearsExperience.String()},
		{"Skills", strings.Join(p.Skills, ", ")},
		{"Education", strings.Join(p.Education, ", ")},
		{"Provider", r.Provider},
		{"Query", r.Query},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05")},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(profileSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(profileSheet, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(profileSheet, "B", "B", 70); err != nil {
		return err
	}
	return f.SetCellStyle(profileSheet, "A1", "B1", header)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
