package ledger

import (
	"github.com/tallybook-dev/tallybook/internal/id"
)

// MergeResult reports the outcome of an ImportMerge.
type MergeResult struct {
	Merged  int      // records appended to the destination
	Skipped []string // order numbers that collided and were left alone
}

// ImportMerge merges the records of sourcePath into this service's file.
// Source records with a blank order number get a fresh generated one;
// records whose order number already exists in the destination are skipped
// and reported, never overwritten. The merged set is written atomically and
// the cache entry is invalidated.
//
// Both files are loaded directly from the store so the merge always works
// from committed on-disk state.
func (s *Service) ImportMerge(sourcePath string) (MergeResult, error) {
	s.locks.Lock(s.path)
	defer s.locks.Unlock(s.path)

	dest, err := s.store.Load(s.path)
	if err != nil {
		return MergeResult{}, err
	}
	source, err := s.store.Load(sourcePath)
	if err != nil {
		return MergeResult{}, err
	}

	seen := make(map[string]bool, len(dest))
	for _, rec := range dest {
		seen[id.Normalize(rec.OrderNo)] = true
	}

	var result MergeResult
	merged := dest
	for _, rec := range source {
		orderNo := id.Normalize(rec.OrderNo)
		if orderNo == "" {
			orderNo = id.NewOrderNo()
		} else if seen[orderNo] {
			result.Skipped = append(result.Skipped, orderNo)
			s.log.Warn().
				Str("source", sourcePath).
				Str("order_no", orderNo).
				Msg("skipping duplicate record during merge")
			continue
		}
		rec.OrderNo = orderNo
		seen[orderNo] = true
		merged = append(merged, rec)
		result.Merged++
	}

	if result.Merged == 0 {
		return result, nil
	}

	if err := s.store.RewriteAll(s.path, merged); err != nil {
		return MergeResult{}, err
	}
	s.cache.Invalidate(s.path)
	return result, nil
}
