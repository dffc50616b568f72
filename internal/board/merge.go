package board

import "sort"

// Merge combines locally stored messages with mirror-derived ones into a
// single view sorted ascending by timestamp and capped at limit (the most
// recent limit messages are kept). The sort is stable: ties preserve input
// order, local before remote, since local is appended first.
//
// Mirror-derived messages that duplicate a local message (same correlation
// id) are dropped: reading back our own mirror must not double-list a
// message. Mirror messages without a correlation id are kept, since foreign
// mirrors may hold messages this node never stored.
//
// Merge is pure: no I/O, deterministic for a given input.
func Merge(local, remote []Message, limit int) []Message {
	if limit <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(local))
	for _, m := range local {
		if m.CorrelationID != "" {
			seen[m.CorrelationID] = struct{}{}
		}
	}

	merged := make([]Message, 0, len(local)+len(remote))
	merged = append(merged, local...)
	for _, m := range remote {
		if m.CorrelationID != "" {
			if _, dup := seen[m.CorrelationID]; dup {
				continue
			}
		}
		merged = append(merged, m)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	if len(merged) > limit {
		merged = merged[len(merged)-limit:]
	}

	return merged
}
