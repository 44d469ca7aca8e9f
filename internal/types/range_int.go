package types

import (
	"fmt"
	"strconv"
	"strings"

	catalogerrors "github.com/moviedb/moviedb/internal/errors"
)

// RangeInt is either a single integer or a closed integer range [lo, hi].
// Year and duration criteria use it so a caller can ask for "1950-1959".
// The zero value is the scalar 0.
type RangeInt struct {
	lo int
	hi int
}

// NewRangeInt returns the scalar value n.
func NewRangeInt(n int) RangeInt {
	return RangeInt{lo: n, hi: n}
}

// NewRange returns the closed range [lo, hi].
func NewRange(lo, hi int) (RangeInt, error) {
	if lo > hi {
		return RangeInt{}, catalogerrors.ValidationError("new_range",
			fmt.Errorf("%w: lower bound %d exceeds upper bound %d", catalogerrors.ErrInvalidInput, lo, hi))
	}
	return RangeInt{lo: lo, hi: hi}, nil
}

// ParseRangeInt accepts "n" or "n-m". Surrounding whitespace is ignored.
func ParseRangeInt(s string) (RangeInt, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return RangeInt{}, catalogerrors.ValidationError("parse_range",
			fmt.Errorf("%w: empty range", catalogerrors.ErrInvalidInput))
	}

	// A leading '-' belongs to the first number, not the separator.
	sep := strings.Index(text[1:], "-")
	if sep < 0 {
		n, err := strconv.Atoi(text)
		if err != nil {
			return RangeInt{}, catalogerrors.ValidationError("parse_range",
				fmt.Errorf("%w: %q is not an integer", catalogerrors.ErrInvalidInput, s))
		}
		return NewRangeInt(n), nil
	}
	sep++

	lo, err := strconv.Atoi(strings.TrimSpace(text[:sep]))
	if err != nil {
		return RangeInt{}, catalogerrors.ValidationError("parse_range",
			fmt.Errorf("%w: bad lower bound in %q", catalogerrors.ErrInvalidInput, s))
	}
	hi, err := strconv.Atoi(strings.TrimSpace(text[sep+1:]))
	if err != nil {
		return RangeInt{}, catalogerrors.ValidationError("parse_range",
			fmt.Errorf("%w: bad upper bound in %q", catalogerrors.ErrInvalidInput, s))
	}
	return NewRange(lo, hi)
}

// MustParseRangeInt is ParseRangeInt for literals known to be valid.
func MustParseRangeInt(s string) RangeInt {
	r, err := ParseRangeInt(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Contains reports whether x lies in the inclusive range.
func (r RangeInt) Contains(x int) bool {
	return r.lo <= x && x <= r.hi
}

// IsScalar reports whether r denotes a single value.
func (r RangeInt) IsScalar() bool {
	return r.lo == r.hi
}

// Bounds returns the inclusive lower and upper bounds.
func (r RangeInt) Bounds() (lo, hi int) {
	return r.lo, r.hi
}

// Int coerces a scalar to its value. A true range cannot be narrowed to one
// integer and fails with a type error.
func (r RangeInt) Int() (int, error) {
	if !r.IsScalar() {
		return 0, catalogerrors.TypeError("range_int",
			fmt.Errorf("%w: %s is a range", catalogerrors.ErrNotScalar, r))
	}
	return r.lo, nil
}

func (r RangeInt) String() string {
	if r.IsScalar() {
		return strconv.Itoa(r.lo)
	}
	return fmt.Sprintf("%d-%d", r.lo, r.hi)
}
