// Package partition splits the program committee and then the papers into
// the Friday and Saturday sessions. Every split is the best of a fixed number
// of randomized trials.
package partition

import (
	"fmt"
	"slices"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/errors"
)

// Day is one of the two review sessions.
type Day int

const (
	Friday Day = iota
	Saturday
)

// String returns the lower-case day name.
func (d Day) String() string {
	switch d {
	case Friday:
		return "friday"
	case Saturday:
		return "saturday"
	default:
		return "unknown"
	}
}

// Other returns the opposite day.
func (d Day) Other() Day {
	if d == Friday {
		return Saturday
	}
	return Friday
}

// Tags are the roster tags that constrain where a member may sit.
type Tags struct {
	Friday   string
	Saturday string
	Both     string
	Either   string
}

// DefaultTags returns the tag names used by the conference system export.
func DefaultTags() Tags {
	return Tags{
		Friday:   "PC_Friday",
		Saturday: "PC_Saturday",
		Both:     "PC_Both",
		Either:   "PC_Either",
	}
}

// For returns the fixed tag for day.
func (t Tags) For(d Day) string {
	if d == Saturday {
		return t.Saturday
	}
	return t.Friday
}

// Strategy selects how flexible members are merged into the fixed groups.
type Strategy string

const (
	StrategyRandom Strategy = "random"
	StrategySmart  Strategy = "smart"
)

// ParseStrategy converts a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyRandom, StrategySmart:
		return Strategy(s), nil
	default:
		return "", errors.NewValidationError(fmt.Sprintf("unknown partition strategy %q", s)).
			WithField("strategy").
			WithValue(s).
			WithCause(errors.ErrUnknownStrategy)
	}
}

// Pools sorts the committee by scheduling constraint.
type Pools struct {
	Friday   []*committee.Member // must sit on Friday
	Saturday []*committee.Member // must sit on Saturday
	Either   []*committee.Member // exactly one day
	Both     []*committee.Member // one day or both
	// Unplaced are primary members with no scheduling tag. They never
	// enter a group.
	Unplaced []*committee.Member
}

// Split assigns each primary committee member to a pool using the first
// matching tag in the order Friday, Saturday, Either, Both. Secondary
// committee members are skipped.
func Split(members []*committee.Member, tags Tags) Pools {
	var p Pools
	for _, m := range members {
		if m.IsSecondary {
			continue
		}
		switch {
		case m.HasTag(tags.Friday):
			p.Friday = append(p.Friday, m)
		case m.HasTag(tags.Saturday):
			p.Saturday = append(p.Saturday, m)
		case m.HasTag(tags.Either):
			p.Either = append(p.Either, m)
		case m.HasTag(tags.Both):
			p.Both = append(p.Both, m)
		default:
			p.Unplaced = append(p.Unplaced, m)
		}
	}
	return p
}

// Flexible returns the number of members the search has to place.
func (p Pools) Flexible() int {
	return len(p.Either) + len(p.Both)
}

func (p Pools) clone() Pools {
	return Pools{
		Friday:   slices.Clone(p.Friday),
		Saturday: slices.Clone(p.Saturday),
		Either:   slices.Clone(p.Either),
		Both:     slices.Clone(p.Both),
	}
}
