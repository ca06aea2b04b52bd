// Package dedupe detects duplicate and near-duplicate content.
//
// Two complementary checks are needed because chunk boundaries are
// not stable across re-extractions of the same document: an exact
// fingerprint check catches verbatim re-ingestion in O(1), and Jaccard
// similarity over token sets catches near-duplicate chunks produced
// from a second, slightly different edition.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultThreshold is the Jaccard similarity at or above which two
// contents are considered duplicates.
const DefaultThreshold = 0.50

// Fingerprint returns a stable hash of content for exact-duplicate
// detection. Content is normalised first: lowercased, whitespace
// collapsed to single spaces, trimmed.
func Fingerprint(content string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(content)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Similarity computes the Jaccard similarity between the token sets
// of a and b: intersection size over union size. Tokens are
// whitespace-delimited and lowercased. Returns 0 when either token
// set is empty.
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Detector decides whether candidate content duplicates existing
// partition content.
type Detector struct {
	threshold float64
}

// Option configures a Detector.
type Option func(*Detector)

// WithThreshold overrides the similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(d *Detector) {
		if threshold > 0 && threshold <= 1 {
			d.threshold = threshold
		}
	}
}

// NewDetector creates a detector with the given options.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Threshold returns the configured similarity threshold.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// IsDuplicate reports whether content is an exact duplicate (its
// fingerprint appears in hashes) or a near-duplicate (similarity to
// any existing content meets the threshold).
func (d *Detector) IsDuplicate(content string, existing []string, hashes map[string]struct{}) bool {
	if hashes != nil {
		if _, ok := hashes[Fingerprint(content)]; ok {
			return true
		}
	}

	for _, other := range existing {
		if Similarity(content, other) >= d.threshold {
			return true
		}
	}

	return false
}
