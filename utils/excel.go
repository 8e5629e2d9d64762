package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"tts-guard-backend/config"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportDir is where generated workbooks are written and served from.
const ExportDir = "./public/files"

// Sheet is one worksheet of an exported workbook.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// EnsureDirectoryExists creates dir (and parents) when missing.
func EnsureDirectoryExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// GenerateExcel writes sheets into a new workbook under dir and returns the
// file path. The first sheet becomes the active one.
func GenerateExcel(dir, taskName string, now time.Time, sheets ...Sheet) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook needs at least one sheet")
	}
	if err := EnsureDirectoryExists(dir); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("error creating header style: %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return "", fmt.Errorf("error naming sheet %s: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return "", fmt.Errorf("error creating sheet %s: %w", sheet.Name, err)
		}

		for col, h := range sheet.Headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sheet.Name, cell, h); err != nil {
				return "", fmt.Errorf("error setting header %s: %w", h, err)
			}
		}
		if len(sheet.Headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
			if err := f.SetCellStyle(sheet.Name, "A1", last, header); err != nil {
				return "", fmt.Errorf("error styling headers: %w", err)
			}
		}

		for r, row := range sheet.Rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
				return "", fmt.Errorf("error writing row %d of %s: %w", r+2, sheet.Name, err)
			}
		}
	}
	f.SetActiveSheet(0)

	fileName := fmt.Sprintf("%s_%s.xlsx", unsafeFileChars.ReplaceAllString(taskName, "_"), now.Format("20060102_150405"))
	path := filepath.Join(dir, fileName)
	if err := f.SaveAs(path); err != nil {
		config.Logger.Error("Error saving Excel file", zap.String("path", path), zap.Error(err))
		return "", err
	}

	config.Logger.Info("Saved Excel file", zap.String("path", path))
	return path, nil
}
