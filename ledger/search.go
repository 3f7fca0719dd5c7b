package ledger

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/Neverland-Money/go-escrow/inter"
)

// timestampAt reads the timestamp of the checkpoint at a 1-based epoch.
type timestampAt func(epoch idx.Epoch) (inter.Timestamp, error)

// epochAtOrBefore returns the highest epoch in [1, count] whose checkpoint
// sits at or before target, or 0 when the whole history is later. Both
// history heads are probed first, so the common "query the present" case
// costs one read.
//
// The bisection picks center = upper - (upper-lower)/2, which rounds up
// and therefore can never revisit lower: the interval strictly shrinks
// even when lower advances to center.
func epochAtOrBefore(count idx.Epoch, target inter.Timestamp, at timestampAt) (idx.Epoch, error) {
	if count == 0 {
		return 0, nil
	}
	ts, err := at(count)
	if err != nil {
		return 0, err
	}
	if ts <= target {
		return count, nil
	}
	ts, err = at(1)
	if err != nil {
		return 0, err
	}
	if ts > target {
		return 0, nil
	}

	lower, upper := idx.Epoch(0), count
	for upper > lower {
		center := upper - (upper-lower)/2
		ts, err := at(center)
		if err != nil {
			return 0, err
		}
		switch {
		case ts == target:
			return center, nil
		case ts < target:
			lower = center
		default:
			upper = center - 1
		}
	}
	return lower, nil
}
