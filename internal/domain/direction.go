package domain

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// DirectionFallback decides what happens to a label outside the 16 compass points.
type DirectionFallback int

const (
	// PassThrough leaves unknown labels unchanged.
	PassThrough DirectionFallback = iota
	// BucketOther replaces unknown labels with OtherBucket.
	BucketOther
)

// OtherBucket is written for unknown labels under the BucketOther policy.
const OtherBucket = "Other"

// ParseDirectionFallback accepts "passthrough" or "other".
func ParseDirectionFallback(s string) (DirectionFallback, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passthrough", "pass-through", "":
		return PassThrough, true
	case "other":
		return BucketOther, true
	default:
		return PassThrough, false
	}
}

func (f DirectionFallback) String() string {
	if f == BucketOther {
		return "other"
	}
	return "passthrough"
}

// cardinalGroups lists which compass points collapse into each cardinal bucket.
// Intercardinal points go to the northern or southern bucket.
var cardinalGroups = map[string][]string{
	"N": {"N", "NNW", "NNE", "NE", "NW"},
	"S": {"S", "SSW", "SSE", "SE", "SW"},
	"E": {"E", "ENE", "ESE"},
	"W": {"W", "WNW", "WSW"},
}

// compassBuckets is cardinalGroups inverted: compass point -> bucket.
var compassBuckets = func() map[string]string {
	m := make(map[string]string, 16)
	for bucket, points := range cardinalGroups {
		for _, p := range points {
			m[p] = bucket
		}
	}
	return m
}()

// CardinalBuckets returns the four bucket labels.
func CardinalBuckets() []string {
	return []string{"E", "N", "S", "W"}
}

// CompassPoints returns the 16 recognised compass labels.
func CompassPoints() []string {
	points := make([]string, 0, len(compassBuckets))
	for _, bucket := range CardinalBuckets() {
		points = append(points, cardinalGroups[bucket]...)
	}
	return points
}

// DirectionNormalizer collapses 16-point compass labels into cardinal buckets.
type DirectionNormalizer struct {
	fallback DirectionFallback
}

// NewDirectionNormalizer creates a normalizer with the given unknown-label policy.
func NewDirectionNormalizer(fallback DirectionFallback) *DirectionNormalizer {
	return &DirectionNormalizer{fallback: fallback}
}

// Bucket maps a single label. The boolean is false for unknown labels, in which
// case the returned value follows the fallback policy.
func (n *DirectionNormalizer) Bucket(label string) (string, bool) {
	if b, ok := compassBuckets[strings.TrimSpace(label)]; ok {
		return b, true
	}
	if n.fallback == BucketOther {
		return OtherBucket, false
	}
	return label, false
}

// Normalize rewrites every named column present in df and returns the new
// frame with the number of unrecognised labels. Missing entries stay missing.
// Numeric columns are read as text since their values cannot be compass labels.
func (n *DirectionNormalizer) Normalize(df dataframe.DataFrame, columns []string) (dataframe.DataFrame, int, error) {
	unknown := 0
	for _, name := range columns {
		if !HasColumn(df, name) {
			continue
		}
		values := Texts(df.Col(name))
		for i, v := range values {
			if v == "" {
				continue
			}
			b, known := n.Bucket(v)
			if !known {
				unknown++
			}
			values[i] = b
		}
		df = df.Mutate(Categorical(name, values))
		if df.Err != nil {
			return df, unknown, fmt.Errorf("normalize %s: %w", name, df.Err)
		}
	}
	return df, unknown, nil
}
