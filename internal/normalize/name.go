package normalize

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"

	"pos-taskbridge/internal/i18n"
)

var orderNamePattern = regexp.MustCompile(`(?i)Order\s+(\d+-\d+-\d+)`)

// MatchOrderName extracts the "d-d-d" token of a conventional order name
func MatchOrderName(name string) (string, bool) {
	m := orderNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NameSynthesizer produces "Order <token>" display names.
// Synthesized names are unique on a best-effort basis only.
type NameSynthesizer struct {
	now  func() time.Time
	intN func(int) int
	tr   i18n.Printer
}

type NameOption func(*NameSynthesizer)

// WithClock sets the time source
func WithClock(now func() time.Time) NameOption {
	return func(s *NameSynthesizer) {
		s.now = now
	}
}

// WithRandom sets the source of the four-digit suffix
func WithRandom(intN func(int) int) NameOption {
	return func(s *NameSynthesizer) {
		s.intN = intN
	}
}

// NewNameSynthesizer creates a synthesizer using the wall clock and math/rand unless opts override them
func NewNameSynthesizer(tr i18n.Printer, opts ...NameOption) *NameSynthesizer {
	if tr == nil {
		tr = i18n.English()
	}
	s := &NameSynthesizer{
		now:  time.Now,
		intN: rand.IntN,
		tr:   tr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name keeps the token of existing when it follows the convention and
// synthesizes one otherwise. reprint appends the reprint marker.
func (s *NameSynthesizer) Name(existing string, reprint bool) string {
	var name string
	if token, ok := MatchOrderName(existing); ok {
		name = "Order " + token
	} else {
		name = s.Synthesize()
	}
	if reprint {
		name += s.ReprintSuffix()
	}
	return name
}

// Synthesize returns "Order YYMMDD-HHMM-RRRR" for the current time
func (s *NameSynthesizer) Synthesize() string {
	now := s.now()
	return fmt.Sprintf("Order %s-%s-%d", now.Format("060102"), now.Format("1504"), 1000+s.intN(9000))
}

// ReprintSuffix returns the localized reprint marker
func (s *NameSynthesizer) ReprintSuffix() string {
	return s.tr.Sprintf(" (Reprint)")
}

// AddedSuffix is the marker of orders added to an existing ticket
func (s *NameSynthesizer) AddedSuffix() string {
	return s.tr.Sprintf(" (Added)")
}
