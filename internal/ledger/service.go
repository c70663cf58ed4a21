package ledger

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/cache"
	"github.com/tallybook-dev/tallybook/internal/id"
	"github.com/tallybook-dev/tallybook/internal/lockmap"
	"github.com/tallybook-dev/tallybook/internal/model"
)

// Service is the entry point application code calls. It is bound to one
// user's record file, reads through the cache, and serializes mutations on
// that file through the shared Locker so concurrent read-modify-rewrite
// sequences cannot lose updates.
type Service struct {
	path  string
	store *Store
	cache *cache.Cache
	locks *lockmap.Locker
	log   zerolog.Logger
}

// NewService creates a Service for one record file. The cache and locker
// are shared across all services in the process; construct them once at
// startup and inject them.
func NewService(path string, store *Store, c *cache.Cache, locks *lockmap.Locker, log zerolog.Logger) *Service {
	return &Service{path: path, store: store, cache: c, locks: locks, log: log}
}

// Path returns the record file this service is bound to.
func (s *Service) Path() string {
	return s.path
}

// GetAll returns the full collection, served from the cache when fresh.
// Callers must not mutate the returned slice.
func (s *Service) GetAll() ([]model.Record, error) {
	return s.cache.Get(s.path, s.store.Load)
}

// Add validates and appends one record, then invalidates the cache so the
// next read reloads the authoritative file. A blank order number gets a
// generated one; a colliding order number is rejected with
// DuplicateKeyError. Returns the record as stored.
func (s *Service) Add(rec model.Record) (model.Record, error) {
	s.locks.Lock(s.path)
	defer s.locks.Unlock(s.path)

	rec.OrderNo = id.Normalize(rec.OrderNo)
	if rec.OrderNo == "" {
		rec.OrderNo = id.NewOrderNo()
	}

	if verrs := ValidateForAdd(rec); len(verrs) > 0 {
		joined := make([]error, len(verrs))
		for i, ve := range verrs {
			joined[i] = ve
		}
		return model.Record{}, fmt.Errorf("validation failed: %w", errors.Join(joined...))
	}

	current, err := s.GetAll()
	if err != nil {
		return model.Record{}, err
	}
	for _, existing := range current {
		if id.Normalize(existing.OrderNo) == rec.OrderNo {
			return model.Record{}, &DuplicateKeyError{OrderNo: rec.OrderNo}
		}
	}

	if err := s.store.AppendOne(s.path, rec); err != nil {
		return model.Record{}, err
	}
	// The appended collection is not reconstructed in memory here, so
	// invalidate rather than write through.
	s.cache.Invalidate(s.path)
	return rec, nil
}

// UpdateParams carries a partial record for Update. Nil fields are left
// unchanged; that includes Amount, so zero stays distinguishable from
// "not supplied". The order number only selects the record and is never
// rewritten.
type UpdateParams struct {
	OrderNo       string
	Timestamp     *string
	Category      *string
	Counterparty  *string
	Item          *string
	Direction     *model.Direction
	Amount        *decimal.Decimal
	PaymentMethod *string
	Status        *model.Status
	MerchantNo    *string
	Remarks       *string
}

// Update applies the supplied fields to the record matching params.OrderNo,
// rewrites the file atomically, and writes the new collection through to
// the cache. Returns NotFoundError when no record matches.
func (s *Service) Update(params UpdateParams) (model.Record, error) {
	s.locks.Lock(s.path)
	defer s.locks.Unlock(s.path)

	if err := params.validate(); err != nil {
		return model.Record{}, err
	}

	current, err := s.GetAll()
	if err != nil {
		return model.Record{}, err
	}

	orderNo := id.Normalize(params.OrderNo)
	idx := -1
	for i, rec := range current {
		if id.Normalize(rec.OrderNo) == orderNo {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Record{}, &NotFoundError{OrderNo: orderNo}
	}

	// The cached slice is shared with concurrent readers; mutate a copy.
	updated := slices.Clone(current)
	rec := updated[idx]
	params.applyTo(&rec)
	updated[idx] = rec

	if err := s.store.RewriteAll(s.path, updated); err != nil {
		return model.Record{}, err
	}
	// The authoritative collection is in hand: write through.
	s.cache.Put(s.path, updated)
	return rec, nil
}

func (p UpdateParams) validate() error {
	var errs []error
	if p.Timestamp != nil && !strictTimestamp(*p.Timestamp) {
		errs = append(errs, ValidationError{
			Field:  "timestamp",
			Reason: fmt.Sprintf("%q does not match %q", *p.Timestamp, model.TimestampFormat),
		})
	}
	if p.Amount != nil && p.Amount.IsNegative() {
		errs = append(errs, ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("must not be negative, got %s", p.Amount),
		})
	}
	if p.Direction != nil && *p.Direction != model.DirectionIncome && *p.Direction != model.DirectionExpense {
		errs = append(errs, ValidationError{
			Field:  "direction",
			Reason: fmt.Sprintf("unknown direction %q", *p.Direction),
		})
	}
	if p.Status != nil && *p.Status != model.StatusCompleted && *p.Status != model.StatusPending {
		errs = append(errs, ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("unknown status %q", *p.Status),
		})
	}
	if p.Category != nil && *p.Category == "" {
		errs = append(errs, ValidationError{Field: "category", Reason: "must not be empty"})
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

func (p UpdateParams) applyTo(rec *model.Record) {
	if p.Timestamp != nil {
		rec.Timestamp = *p.Timestamp
	}
	if p.Category != nil {
		rec.Category = *p.Category
	}
	if p.Counterparty != nil {
		rec.Counterparty = *p.Counterparty
	}
	if p.Item != nil {
		rec.Item = *p.Item
	}
	if p.Direction != nil {
		rec.Direction = *p.Direction
	}
	if p.Amount != nil {
		rec.Amount = *p.Amount
	}
	if p.PaymentMethod != nil {
		rec.PaymentMethod = *p.PaymentMethod
	}
	if p.Status != nil {
		rec.Status = *p.Status
	}
	if p.MerchantNo != nil {
		rec.MerchantNo = *p.MerchantNo
	}
	if p.Remarks != nil {
		rec.Remarks = *p.Remarks
	}
}

// Delete removes the record matching orderNo. A missing record is not an
// error; the bool reports whether anything was removed.
func (s *Service) Delete(orderNo string) (bool, error) {
	s.locks.Lock(s.path)
	defer s.locks.Unlock(s.path)

	found, err := s.store.DeleteOne(s.path, orderNo)
	if err != nil {
		return false, err
	}
	if found {
		s.cache.Invalidate(s.path)
	}
	return found, nil
}
