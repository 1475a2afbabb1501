package ordernum

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-ordering-api/errs"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func TestNextFormat(t *testing.T) {
	t.Parallel()

	gen := NewGenerator(fixedClock{t: time.Date(2025, 5, 27, 9, 30, 0, 0, time.UTC)})
	for i := 0; i < 200; i++ {
		n := gen.Next()
		assert.Regexp(t, `^R\d{6}-\d{4}$`, n)
		assert.True(t, strings.HasPrefix(n, "R250527-"), "got %s", n)

		suffix, err := strconv.Atoi(n[len("R250527-"):])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, suffix, 1000)
		assert.LessOrEqual(t, suffix, 9999)
	}
}

func TestNextFollowsTheDate(t *testing.T) {
	t.Parallel()

	gen := NewGenerator(fixedClock{t: time.Date(2031, 12, 1, 0, 0, 0, 0, time.UTC)})
	assert.True(t, strings.HasPrefix(gen.Next(), "R311201-"))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Validate("R250527-1234"))

	for _, bad := range []string{
		"",
		"R250527-123",    // short suffix
		"R250527-12345",  // long suffix
		"X250527-1234",   // wrong prefix
		"R2505271234",    // missing dash
		"R25052A-1234",   // non-digit date
		" R250527-1234",  // leading space
		"R250527-1234 ",  // trailing space
	} {
		err := Validate(bad)
		assert.ErrorIs(t, err, errs.ErrInvalidInput, "input %q", bad)
	}
}
