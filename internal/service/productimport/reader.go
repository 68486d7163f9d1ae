package productimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat возвращается для файлов, отличных от .xlsx и .csv
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx or .csv")
	// ErrEmptyFile возвращается, если в файле нет строки заголовков
	ErrEmptyFile = errors.New("file has no header row")
	// ErrTooManyRows возвращается при превышении лимита строк
	ErrTooManyRows = errors.New("too many rows in file")
)

// Sheet — содержимое файла импорта: нормализованные заголовки и непустые строки
type Sheet struct {
	Headers []string
	Rows    []Row
}

// Read разбирает файл по расширению имени
func Read(filename string, r io.Reader, maxRows int) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return ReadXLSX(r, maxRows)
	case ".csv":
		return ReadCSV(r, maxRows)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ReadXLSX читает первый лист книги; первая строка — заголовки
func ReadXLSX(r io.Reader, maxRows int) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrEmptyFile
	}

	rows, err := f.Rows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	defer rows.Close()

	b := newSheetBuilder(maxRows)
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", b.line+1, err)
		}
		if err := b.add(cols); err != nil {
			return nil, err
		}
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return b.sheet()
}

// ReadCSV читает CSV; первая строка — заголовки
func ReadCSV(r io.Reader, maxRows int) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	b := newSheetBuilder(maxRows)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", b.line+1, err)
		}
		if err := b.add(record); err != nil {
			return nil, err
		}
	}
	return b.sheet()
}

type sheetBuilder struct {
	maxRows int
	line    int
	headers []string
	rows    []Row
}

func newSheetBuilder(maxRows int) *sheetBuilder {
	return &sheetBuilder{maxRows: maxRows}
}

func (b *sheetBuilder) add(cells []string) error {
	b.line++
	if b.headers == nil {
		if isBlank(cells) {
			// пустые строки до заголовка пропускаем
			return nil
		}
		b.headers = make([]string, len(cells))
		for i, h := range cells {
			b.headers[i] = NormalizeHeader(h)
		}
		return nil
	}

	if isBlank(cells) {
		return nil
	}
	if b.maxRows > 0 && len(b.rows) >= b.maxRows {
		return fmt.Errorf("%w: limit is %d", ErrTooManyRows, b.maxRows)
	}

	values := make(map[string]string, len(b.headers))
	for i, h := range b.headers {
		if h == "" || i >= len(cells) {
			continue
		}
		// первая колонка с таким заголовком выигрывает
		if _, seen := values[h]; !seen {
			values[h] = cells[i]
		}
	}
	b.rows = append(b.rows, Row{Line: b.line, Values: values})
	return nil
}

func (b *sheetBuilder) sheet() (*Sheet, error) {
	if b.headers == nil {
		return nil, ErrEmptyFile
	}
	return &Sheet{Headers: b.headers, Rows: b.rows}, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
