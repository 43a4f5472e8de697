package stravasync

import "time"

// RangeKey correlates a local record with a remote activity. Both bounds are
// UTC Unix seconds truncated to the minute, so starts reported a few seconds
// apart by different platforms compare equal.
type RangeKey struct {
	From int64
	To   int64
}

// NewRangeKey normalizes both bounds to UTC minutes.
func NewRangeKey(from, to time.Time) RangeKey {
	return RangeKey{From: truncateMinute(from), To: truncateMinute(to)}
}

// KeyAt is the degenerate range used for activity starts.
func KeyAt(t time.Time) RangeKey {
	return NewRangeKey(t, t)
}

func truncateMinute(t time.Time) int64 {
	return t.UTC().Truncate(time.Minute).Unix()
}

func (k RangeKey) String() string {
	from := time.Unix(k.From, 0).UTC().Format("2006-01-02T15:04Z")
	if k.From == k.To {
		return from
	}
	return from + "/" + time.Unix(k.To, 0).UTC().Format("2006-01-02T15:04Z")
}
