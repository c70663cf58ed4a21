package ledger

import (
	"fmt"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// Field identifies a record field that UpdateOne may overwrite. OrderNo is
// deliberately absent: the order number is the record's identity and is
// never reassigned.
type Field int

const (
	FieldTimestamp Field = iota
	FieldCategory
	FieldCounterparty
	FieldItem
	FieldDirection
	FieldAmount
	FieldPaymentMethod
	FieldStatus
	FieldMerchantNo
	FieldRemarks
)

var fieldNames = map[Field]string{
	FieldTimestamp:     "timestamp",
	FieldCategory:      "category",
	FieldCounterparty:  "counterparty",
	FieldItem:          "item",
	FieldDirection:     "direction",
	FieldAmount:        "amount",
	FieldPaymentMethod: "payment_method",
	FieldStatus:        "status",
	FieldMerchantNo:    "merchant_no",
	FieldRemarks:       "remarks",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField resolves a field name from user input.
func ParseField(name string) (Field, bool) {
	for f, n := range fieldNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// apply sets the field on rec, parsing typed values.
func (f Field) apply(rec *model.Record, value string) error {
	switch f {
	case FieldTimestamp:
		if _, ok := model.ParseTimestamp(value); !ok {
			return ValidationError{Field: "timestamp", Reason: fmt.Sprintf("unparseable timestamp %q", value)}
		}
		rec.Timestamp = value
	case FieldCategory:
		rec.Category = value
	case FieldCounterparty:
		rec.Counterparty = value
	case FieldItem:
		rec.Item = value
	case FieldDirection:
		dir, ok := model.ParseDirection(value)
		if !ok {
			return ValidationError{Field: "direction", Reason: fmt.Sprintf("unknown direction %q", value)}
		}
		rec.Direction = dir
	case FieldAmount:
		amount, err := ParseAmount(value)
		if err != nil {
			return ValidationError{Field: "amount", Reason: err.Error()}
		}
		rec.Amount = amount
	case FieldPaymentMethod:
		rec.PaymentMethod = value
	case FieldStatus:
		status, ok := model.ParseStatus(value)
		if !ok {
			return ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", value)}
		}
		rec.Status = status
	case FieldMerchantNo:
		rec.MerchantNo = value
	case FieldRemarks:
		rec.Remarks = value
	default:
		return fmt.Errorf("unknown field %v", f)
	}
	return nil
}
