package retention

import (
	"fmt"
	"strings"
)

const Delimiter = "/"

// FirstSegment returns key up to, not including, the first delimiter. Keys
// without a delimiter are their own segment.
func FirstSegment(key string) string {
	seg, _, _ := strings.Cut(key, Delimiter)
	return seg
}

// GroupKey returns the bucket-qualified group ID for an object key.
func GroupKey(bucket, key string) string {
	return bucket + Delimiter + FirstSegment(key)
}

// SplitGroupID splits a group ID at its first delimiter into the bucket name
// and the group's top-level segment. One trailing delimiter is accepted; an ID
// naming anything below the top level is rejected.
func SplitGroupID(id string) (bucket, segment string, err error) {
	bucket, rest, ok := strings.Cut(id, Delimiter)
	segment = strings.TrimSuffix(rest, Delimiter)
	if !ok || bucket == "" || segment == "" || strings.Contains(segment, Delimiter) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidGroupID, id)
	}
	return bucket, segment, nil
}

// GroupObjects collapses a listing into its deployment groups, in the order
// each group was first seen. A group's Timestamp is the newest LastModified
// among its members; members without a timestamp do not contribute.
func GroupObjects(bucket string, objects []Object) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, obj := range objects {
		id := GroupKey(bucket, obj.Key)
		i, seen := index[id]
		if !seen {
			index[id] = len(groups)
			groups = append(groups, Group{ID: id, Timestamp: obj.LastModified})
			continue
		}
		if obj.LastModified.After(groups[i].Timestamp) {
			groups[i].Timestamp = obj.LastModified
		}
	}
	return groups
}
