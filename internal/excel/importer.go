package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/lernbot/pkg/models"
)

// Expected column layout of import files:
//
//	A: lemma, optionally with the article ("der Hund")
//	B: translation
//	C: example sentence (optional)
//	D: additional forms (optional, e.g. plural or past forms)
const (
	colLemma = iota
	colTranslation
	colExample
	colForms
)

// Importer parses word lists from Excel and CSV files. It only extracts
// the words; storing them is the caller's concern.
type Importer struct {
	// SheetName is the Excel sheet to read. Empty means the first sheet.
	SheetName string
}

// NewImporter creates an importer with the default settings
func NewImporter() *Importer {
	return &Importer{}
}

// Parse reads a word list from r. The format is chosen by the file
// extension: .csv is parsed as CSV, everything else as an Excel workbook.
func (im *Importer) Parse(r io.Reader, filename string) ([]models.Word, error) {
	if strings.ToLower(filepath.Ext(filename)) == ".csv" {
		return im.parseCSV(r)
	}
	return im.parseExcel(r)
}

// ParseFile reads a word list from a file on disk
func (im *Importer) ParseFile(path string) ([]models.Word, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %v", err)
	}
	defer f.Close()
	return im.Parse(f, path)
}

func (im *Importer) parseExcel(r io.Reader) ([]models.Word, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheet := im.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	return collectWords(rows), nil
}

func (im *Importer) parseCSV(r io.Reader) ([]models.Word, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rows = append(rows, row)
	}

	return collectWords(rows), nil
}

// collectWords turns raw rows into words, skipping a header row and rows
// without a lemma or translation.
func collectWords(rows [][]string) []models.Word {
	var words []models.Word
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		word, ok := rowToWord(row)
		if !ok {
			continue
		}
		words = append(words, word)
	}
	return words
}

func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(row[0])) {
	case "wort", "word", "lemma", "слово":
		return true
	}
	return false
}

func rowToWord(row []string) (models.Word, bool) {
	lemma := cell(row, colLemma)
	translation := cell(row, colTranslation)
	if lemma == "" || translation == "" {
		return models.Word{}, false
	}

	word := models.Word{
		Lemma:           lemma,
		Translation:     translation,
		Example:         cell(row, colExample),
		AdditionalForms: cell(row, colForms),
	}

	lower := strings.ToLower(lemma)
	for _, article := range []string{"der ", "die ", "das "} {
		if strings.HasPrefix(lower, article) {
			word.Article = strings.TrimSpace(lemma[:len(article)])
			word.Lemma = strings.TrimSpace(lemma[len(article):])
			word.PartOfSpeech = "noun"
			break
		}
	}
	if word.PartOfSpeech == "" && strings.HasSuffix(strings.ToLower(word.Lemma), "en") {
		word.PartOfSpeech = "verb"
	}

	return word, true
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
