package engine

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tartampluch/go-refill/internal/config"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnsupportedFormat rejects a whole file before it reaches the parser.
var ErrUnsupportedFormat = errors.New(config.ErrUnsupportedFormat)

// DecodeSource converts raw file bytes into the delimited text Parse expects.
// The file name (or URL path) selects the decoder by extension; a missing
// extension is treated as CSV. Text sources that are actually zip archives
// are read as workbooks.
func DecodeSource(name string, data []byte) (string, error) {
	ext := strings.ToLower(path.Ext(name))

	switch ext {
	case config.ExtCSV, config.ExtTXT, "":
		if bytes.HasPrefix(data, []byte(config.ZipMagic)) {
			return workbookToCSV(data)
		}
		return decodeText(data)
	case config.ExtXLSX:
		return workbookToCSV(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// decodeText accepts UTF-8 (with or without BOM) and falls back to Big5,
// the default export encoding of Traditional Chinese Windows spreadsheets.
func decodeText(data []byte) (string, error) {
	encoding := config.EncodingUTF8
	decoder := unicode.UTF8BOM.NewDecoder()
	if !utf8.Valid(data) {
		encoding = config.EncodingBig5
		decoder = traditionalchinese.Big5.NewDecoder()
	}

	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrSourceDecode, err)
	}

	slog.Debug(config.MsgSourceDecoded,
		config.LogKeyComponent, config.CompSource,
		config.LogKeyEncoding, encoding,
		config.LogKeySizeBytes, len(data))
	return string(out), nil
}

// workbookToCSV flattens the first sheet of an .xlsx workbook into CSV text.
// Cells are joined with plain commas, matching what the parser splits on.
// Dispense dates stored as Excel serial numbers are rendered as YYYY-MM-DD.
func workbookToCSV(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, config.ErrWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrWorkbook, err)
	}

	var b strings.Builder
	for _, row := range rows {
		if len(row) > config.ColDispenseDate {
			row[config.ColDispenseDate] = serialToISO(row[config.ColDispenseDate])
		}
		b.WriteString(strings.Join(row, config.ColumnSeparator))
		b.WriteString(config.LineSeparator)
	}

	slog.Debug(config.MsgSourceDecoded,
		config.LogKeyComponent, config.CompSource,
		config.LogKeyEncoding, config.EncodingXLSX,
		config.LogKeyCount, len(rows))
	return b.String(), nil
}

// serialToISO converts an Excel date serial to YYYY-MM-DD and leaves any
// other value untouched.
func serialToISO(value string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || serial <= 0 {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	return t.Format(config.DateFormatISO)
}
