package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// Header is the canonical CSV header for records.csv. Files are always
// written in this column order; reads accept any order (see ParseHeader).
const Header = "time,category,counterparty,item,direction,amount,payment_method,status,order_no,merchant_no,remarks"

// CurrencyGlyph prefixes every stored amount.
const CurrencyGlyph = "¥"

const (
	numFields     = 11
	colTime       = "time"
	colCategory   = "category"
	colCparty     = "counterparty"
	colItem       = "item"
	colDirection  = "direction"
	colAmount     = "amount"
	colPayMethod  = "payment_method"
	colStatus     = "status"
	colOrderNo    = "order_no"
	colMerchantNo = "merchant_no"
	colRemarks    = "remarks"
)

// Columns returns the canonical column names in write order.
func Columns() []string {
	return strings.Split(Header, ",")
}

// ParseHeader maps canonical column names to their positions in a file's
// header row. Matching is case-insensitive and ignores column order, so a
// reordered file still loads. A leading UTF-8 byte-order mark on the first
// cell is stripped. Returns a DecodeError naming the first missing column.
func ParseHeader(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		pos[strings.ToLower(strings.TrimSpace(name))] = i
	}

	idx := make(map[string]int, numFields)
	for _, col := range Columns() {
		p, ok := pos[col]
		if !ok {
			return nil, &DecodeError{Row: 1, Column: col, Reason: "missing column"}
		}
		idx[col] = p
	}
	return idx, nil
}

// MarshalRecord converts a Record to a CSV row in canonical column order.
// The amount is re-encoded as glyph + two decimal places regardless of how
// it was originally written.
func MarshalRecord(rec model.Record) []string {
	return []string{
		rec.Timestamp,
		rec.Category,
		rec.Counterparty,
		rec.Item,
		string(rec.Direction),
		FormatAmount(rec.Amount),
		rec.PaymentMethod,
		string(rec.Status),
		rec.OrderNo,
		rec.MerchantNo,
		rec.Remarks,
	}
}

// UnmarshalRecord converts one data row to a Record using the column index
// from ParseHeader. rowNum is the 1-based row number used in errors.
func UnmarshalRecord(row []string, idx map[string]int, rowNum int) (model.Record, error) {
	field := func(col string) (string, error) {
		p := idx[col]
		if p >= len(row) {
			return "", &DecodeError{Row: rowNum, Column: col, Reason: "row has too few fields"}
		}
		return strings.TrimSpace(row[p]), nil
	}

	var rec model.Record
	var err error

	if rec.Timestamp, err = field(colTime); err != nil {
		return model.Record{}, err
	}
	if rec.Category, err = field(colCategory); err != nil {
		return model.Record{}, err
	}
	if rec.Counterparty, err = field(colCparty); err != nil {
		return model.Record{}, err
	}
	if rec.Item, err = field(colItem); err != nil {
		return model.Record{}, err
	}

	dirText, err := field(colDirection)
	if err != nil {
		return model.Record{}, err
	}
	dir, ok := model.ParseDirection(dirText)
	if !ok {
		return model.Record{}, &DecodeError{Row: rowNum, Column: colDirection, Reason: fmt.Sprintf("unknown direction %q", dirText)}
	}
	rec.Direction = dir

	amountText, err := field(colAmount)
	if err != nil {
		return model.Record{}, err
	}
	rec.Amount, err = ParseAmount(amountText)
	if err != nil {
		return model.Record{}, &DecodeError{Row: rowNum, Column: colAmount, Reason: err.Error()}
	}

	if rec.PaymentMethod, err = field(colPayMethod); err != nil {
		return model.Record{}, err
	}

	statusText, err := field(colStatus)
	if err != nil {
		return model.Record{}, err
	}
	status, ok := model.ParseStatus(statusText)
	if !ok {
		return model.Record{}, &DecodeError{Row: rowNum, Column: colStatus, Reason: fmt.Sprintf("unknown status %q", statusText)}
	}
	rec.Status = status

	if rec.OrderNo, err = field(colOrderNo); err != nil {
		return model.Record{}, err
	}
	if rec.MerchantNo, err = field(colMerchantNo); err != nil {
		return model.Record{}, err
	}
	if rec.Remarks, err = field(colRemarks); err != nil {
		return model.Record{}, err
	}

	return rec, nil
}

// ParseAmount parses a stored amount, stripping a single leading non-digit
// currency glyph if present. Amounts are stored unsigned.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	runes := []rune(s)
	if !unicode.IsDigit(runes[0]) && runes[0] != '.' {
		s = strings.TrimSpace(string(runes[1:]))
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("amount %q is negative", s)
	}
	return d, nil
}

// FormatAmount renders an amount as glyph + fixed two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return CurrencyGlyph + d.StringFixed(2)
}

// ReadRecords reads all records from r. Rows that fail to decode are
// returned separately so callers choose between skip-and-continue (bulk
// load) and fail (single-record contexts).
func ReadRecords(r io.Reader) ([]model.Record, []*DecodeError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading records CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil, nil
	}

	idx, err := ParseHeader(rows[0])
	if err != nil {
		return nil, nil, err
	}

	var records []model.Record
	var bad []*DecodeError
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row, idx, i+2)
		if err != nil {
			var de *DecodeError
			if !errors.As(err, &de) {
				de = &DecodeError{Row: i + 2, Reason: err.Error()}
			}
			bad = append(bad, de)
			continue
		}
		records = append(records, rec)
	}
	return records, bad, nil
}

// WriteRecords writes the canonical header and every record to w.
func WriteRecords(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Columns()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range records {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendRecords appends rows to an existing records writer (no header).
func AppendRecords(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, rec := range records {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}
