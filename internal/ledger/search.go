package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// Criteria filters records in Search. Empty fields match everything; each
// populated field must case-insensitively substring-match the record.
// Direction is the exception: it is matched through the synonym table, so
// "in" finds income records.
type Criteria struct {
	Category      string
	Counterparty  string
	Item          string
	Direction     string
	PaymentMethod string
	Status        string
	OrderNo       string
	MerchantNo    string
	Remarks       string
}

// Search reads the collection through the cache, filters it, and returns
// matches ordered by parsed timestamp descending. Records whose timestamp
// cannot be parsed sort last; ties keep file order.
func (s *Service) Search(crit Criteria) ([]model.Record, error) {
	var wantDir model.Direction
	if crit.Direction != "" {
		dir, ok := model.ParseDirection(crit.Direction)
		if !ok {
			return nil, ValidationError{Field: "direction", Reason: "unknown direction " + crit.Direction}
		}
		wantDir = dir
	}

	records, err := s.GetAll()
	if err != nil {
		return nil, err
	}

	var matches []model.Record
	for _, rec := range records {
		if crit.matches(rec, wantDir) {
			matches = append(matches, rec)
		}
	}

	sortByTimestampDesc(matches)
	return matches, nil
}

func (c Criteria) matches(rec model.Record, wantDir model.Direction) bool {
	if c.Direction != "" && rec.Direction != wantDir {
		return false
	}
	return contains(rec.Category, c.Category) &&
		contains(rec.Counterparty, c.Counterparty) &&
		contains(rec.Item, c.Item) &&
		contains(rec.PaymentMethod, c.PaymentMethod) &&
		contains(string(rec.Status), c.Status) &&
		contains(rec.OrderNo, c.OrderNo) &&
		contains(rec.MerchantNo, c.MerchantNo) &&
		contains(rec.Remarks, c.Remarks)
}

// contains is a case- and spacing-tolerant substring match. An empty
// criterion matches everything.
func contains(field, criterion string) bool {
	if criterion == "" {
		return true
	}
	return strings.Contains(
		strings.ToLower(strings.TrimSpace(field)),
		strings.ToLower(strings.TrimSpace(criterion)),
	)
}

func sortByTimestampDesc(records []model.Record) {
	type decorated struct {
		rec model.Record
		t   time.Time
		ok  bool
	}
	rows := make([]decorated, len(records))
	for i, rec := range records {
		t, ok := model.ParseTimestamp(rec.Timestamp)
		rows[i] = decorated{rec: rec, t: t, ok: ok}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		switch {
		case rows[i].ok && !rows[j].ok:
			return true
		case !rows[i].ok:
			return false
		default:
			return rows[i].t.After(rows[j].t)
		}
	})
	for i, row := range rows {
		records[i] = row.rec
	}
}
