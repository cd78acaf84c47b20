package retention

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// CountPolicy keeps the Keep most recently updated groups of a bucket.
type CountPolicy struct {
	Keep int
}

func NewCountPolicy(keep int) (*CountPolicy, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep count must not be negative, got %d", keep)
	}
	return &CountPolicy{Keep: keep}, nil
}

func (p *CountPolicy) Name() string {
	return fmt.Sprintf("count(keep=%d)", p.Keep)
}

func (p *CountPolicy) Evaluate(ctx context.Context, lister ObjectLister, bucket string) (Decision, error) {
	prefixes, err := lister.ListCommonPrefixes(ctx, bucket, Delimiter)
	if err != nil {
		return Decision{}, &ListingError{Bucket: bucket, Err: err}
	}
	return SelectByCount(bucket, prefixes, p.Keep)
}

type rankedPrefix struct {
	id     string
	latest time.Time
}

// SelectByCount ranks the common prefixes of bucket by their newest member
// and returns every group past the first keep. Ties keep listing order.
// Nothing is eligible when there are at most keep prefixes.
func SelectByCount(bucket string, prefixes []CommonPrefix, keep int) (Decision, error) {
	d := Decision{Bucket: bucket}
	if keep < 0 {
		return d, fmt.Errorf("keep count must not be negative, got %d", keep)
	}
	if len(prefixes) <= keep {
		return d, nil
	}

	ranked := make([]rankedPrefix, 0, len(prefixes))
	for _, cp := range prefixes {
		if len(cp.Objects) == 0 {
			return Decision{}, &EmptyGroupError{Bucket: bucket, Prefix: cp.Prefix}
		}

		for _, obj := range cp.Objects {
			if obj.LastModified.IsZero() {
				d.Skipped = append(d.Skipped, obj.Key)
			}
		}
		var latest time.Time
		for _, g := range GroupObjects(bucket, cp.Objects) {
			if g.Timestamp.After(latest) {
				latest = g.Timestamp
			}
		}
		if latest.IsZero() {
			continue
		}

		ranked = append(ranked, rankedPrefix{
			id:     GroupKey(bucket, strings.TrimSuffix(cp.Prefix, Delimiter)),
			latest: latest,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].latest.After(ranked[j].latest)
	})

	if len(ranked) <= keep {
		return d, nil
	}
	for _, r := range ranked[keep:] {
		d.Groups = append(d.Groups, r.id)
	}
	return d, nil
}
