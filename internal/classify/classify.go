// Package classify assigns content to a knowledge base partition by
// keyword scoring. It is the default implementation of the
// Classifier port for deployments without an external classifier.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/atlas-safety/safekb-cli/internal/core/ports/driven"
)

// DefaultPartition receives content no specific partition claims.
const DefaultPartition = "general"

// vocabulary maps each specific partition to the phrases that signal
// it. Derived from the hazard taxonomy the knowledge base is
// organised around.
var vocabulary = map[string][]string{
	"fall": {
		"fall", "falls", "fall protection", "fall arrest", "working at height",
		"heights", "ladder", "ladders", "scaffold", "scaffolding", "harness",
		"guardrail", "guardrails", "anchor point", "lanyard", "elevated",
		"leading edge", "roof",
	},
	"electrical": {
		"electrical", "electricity", "voltage", "lockout", "tagout",
		"lockout/tagout", "power line", "power lines", "arc flash", "wiring",
		"circuit", "circuits", "conductor", "conductors", "energized",
		"grounding", "shock",
	},
	"struckby": {
		"struck-by", "struck by", "vehicle", "vehicles", "forklift",
		"forklifts", "crane", "cranes", "rigging", "falling object",
		"falling objects", "flying debris", "swing radius", "mobile equipment",
		"load handling", "backing",
	},
}

// Ensure Classifier implements the interface.
var _ driven.Classifier = (*Classifier)(nil)

// Classifier scores content against per-partition keyword lists.
type Classifier struct {
	patterns map[string][]*regexp.Regexp
}

// New creates a classifier over the built-in hazard vocabulary.
func New() *Classifier {
	c := &Classifier{
		patterns: make(map[string][]*regexp.Regexp, len(vocabulary)),
	}
	for partition, phrases := range vocabulary {
		res := make([]*regexp.Regexp, len(phrases))
		for i, phrase := range phrases {
			res[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
		}
		c.patterns[partition] = res
	}
	return c
}

// Partitions returns every partition the classifier can assign,
// sorted, with the default partition last.
func (c *Classifier) Partitions() []string {
	names := make([]string, 0, len(c.patterns))
	for p := range c.patterns {
		names = append(names, p)
	}
	sort.Strings(names)
	return append(names, DefaultPartition)
}

// Classify returns the partition whose vocabulary matches the
// content most often. Content matching nothing, or matching two
// partitions equally, lands in the default partition.
func (c *Classifier) Classify(content string) string {
	lower := strings.ToLower(content)

	best := DefaultPartition
	bestScore := 0
	tied := false

	for _, partition := range c.Partitions() {
		res, ok := c.patterns[partition]
		if !ok {
			continue
		}
		score := 0
		for _, re := range res {
			score += len(re.FindAllStringIndex(lower, -1))
		}
		switch {
		case score > bestScore:
			best = partition
			bestScore = score
			tied = false
		case score == bestScore && score > 0:
			tied = true
		}
	}

	if bestScore == 0 || tied {
		return DefaultPartition
	}
	return best
}
