package retention

import (
	"context"
	"fmt"
	"math"
	"time"

	"k8s.io/utils/clock"
)

// MaxDays bounds the age threshold in either direction.
const MaxDays = 36500

// AgeMode controls how many members of a group must be older than the cutoff.
type AgeMode int

const (
	// MatchAny marks a group eligible as soon as one member is older than the cutoff.
	MatchAny AgeMode = iota
	// MatchAll marks a group eligible only when every member is older than the cutoff.
	MatchAll
)

func (m AgeMode) String() string {
	if m == MatchAll {
		return "all"
	}
	return "any"
}

// AgePolicy selects groups whose objects were last modified before
// now minus Days. Days may be fractional or negative.
type AgePolicy struct {
	Days  float64
	Mode  AgeMode
	Clock clock.PassiveClock
}

func NewAgePolicy(days float64, mode AgeMode, clk clock.PassiveClock) (*AgePolicy, error) {
	if err := ValidateDays(days); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &AgePolicy{Days: days, Mode: mode, Clock: clk}, nil
}

// ValidateDays rejects thresholds that cannot be expressed as a duration.
func ValidateDays(days float64) error {
	if math.IsNaN(days) || math.IsInf(days, 0) || math.Abs(days) > MaxDays {
		return fmt.Errorf("days must be a finite number between -%d and %d, got %v", MaxDays, MaxDays, days)
	}
	return nil
}

func (p *AgePolicy) Name() string {
	return fmt.Sprintf("age(days=%g, match=%s)", p.Days, p.Mode)
}

// Cutoff returns the UTC instant before which objects are considered old.
func (p *AgePolicy) Cutoff() time.Time {
	clk := p.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	age := time.Duration(p.Days * float64(24*time.Hour))
	return clk.Now().UTC().Add(-age)
}

func (p *AgePolicy) Evaluate(ctx context.Context, lister ObjectLister, bucket string) (Decision, error) {
	objects, err := lister.ListObjects(ctx, bucket, "")
	if err != nil {
		return Decision{}, &ListingError{Bucket: bucket, Err: err}
	}
	return SelectByAge(bucket, objects, p.Cutoff(), p.Mode), nil
}

// SelectByAge returns the groups of bucket that are older than cutoff, in the
// order their qualifying objects were listed. Objects without a timestamp
// never make a group eligible; under MatchAll they keep it ineligible.
func SelectByAge(bucket string, objects []Object, cutoff time.Time, mode AgeMode) Decision {
	d := Decision{Bucket: bucket}

	if mode == MatchAll {
		return selectAllOld(d, objects, cutoff)
	}

	seen := make(map[string]struct{})
	for _, obj := range objects {
		if obj.LastModified.IsZero() {
			d.Skipped = append(d.Skipped, obj.Key)
			continue
		}
		if !obj.LastModified.Before(cutoff) {
			continue
		}
		id := GroupKey(bucket, obj.Key)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		d.Groups = append(d.Groups, id)
	}
	return d
}

func selectAllOld(d Decision, objects []Object, cutoff time.Time) Decision {
	var order []string
	old := make(map[string]bool)

	for _, obj := range objects {
		id := GroupKey(d.Bucket, obj.Key)
		isOld := !obj.LastModified.IsZero() && obj.LastModified.Before(cutoff)
		if obj.LastModified.IsZero() {
			d.Skipped = append(d.Skipped, obj.Key)
		}
		prev, seen := old[id]
		if !seen {
			order = append(order, id)
			old[id] = isOld
			continue
		}
		old[id] = prev && isOld
	}

	for _, id := range order {
		if old[id] {
			d.Groups = append(d.Groups, id)
		}
	}
	return d
}
