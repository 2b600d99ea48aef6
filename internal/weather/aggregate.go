package weather

// AggregatePairs combines consecutive pairs of intervals into one interval each.
// The dbz of the result is the mean of the pair and its timestamp is that of the first
// interval of the pair. A trailing unpaired interval is dropped.
func AggregatePairs(intervals []Interval) []Interval {
	out := make([]Interval, 0, len(intervals)/2)
	for i := 0; i+1 < len(intervals); i += 2 {
		out = append(out, Interval{
			Timestamp: intervals[i].Timestamp,
			DBZ:       (intervals[i].DBZ + intervals[i+1].DBZ) / 2,
		})
	}
	return out
}
