package ordernum

import (
	"fmt"
	"math/rand"
	"regexp"

	"restaurant-ordering-api/clock"
	"restaurant-ordering-api/errs"
)

// Order numbers look like R250527-1234: R + YYMMDD + 4 random digits.
// The format is a persisted, externally visible contract.
var pattern = regexp.MustCompile(`^R\d{6}-\d{4}$`)

// Generator mints date-partitioned order numbers. The 4-digit suffix is
// not globally unique; callers rely on the DB uniqueness constraint and
// retry on conflict.
type Generator struct {
	clock clock.Clock
}

func NewGenerator(c clock.Clock) *Generator {
	return &Generator{clock: c}
}

// Next returns a fresh order number for today
func (g *Generator) Next() string {
	day := g.clock.Now().Format("060102")
	suffix := 1000 + rand.Intn(9000)
	return fmt.Sprintf("R%s-%d", day, suffix)
}

// Valid reports whether s conforms to the order number format
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Validate rejects non-conforming input before any lookup happens, so a
// malformed number is a caller error rather than a missing order
func Validate(s string) error {
	if !Valid(s) {
		return fmt.Errorf("%w: malformed order number %q", errs.ErrInvalidInput, s)
	}
	return nil
}
