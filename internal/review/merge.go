package review

import (
	"sort"
	"time"
)

// Merge concatenates local then remote, keeps the first item per id and
// returns the result sorted by creation time, newest first. Items with equal
// timestamps keep their concatenated order.
func Merge[T any](local, remote []T, id func(T) string, createdAt func(T) time.Time) []T {
	seen := make(map[string]struct{}, len(local)+len(remote))
	out := make([]T, 0, len(local)+len(remote))
	for _, list := range [][]T{local, remote} {
		for _, item := range list {
			key := id(item)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return createdAt(out[i]).After(createdAt(out[j]))
	})
	return out
}
