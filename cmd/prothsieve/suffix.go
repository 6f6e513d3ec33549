package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

var _ pflag.Value = (*suffixValue)(nil)

// suffixValue is a pflag.Value accepting the numeric-suffix notation of
// spec.md §6: decimal SI suffixes K|M|G|T|P (x1000 per step), binary
// suffixes k|m|g|t|p (x1024 per step), and the explicit-exponent forms
// eN (x10^N) and bN (x2^N) — the same grammar putil.c's parse_uint64
// accepts, inverted here into a pflag.Value instead of a getopt
// callback, and carrying the same [lo, hi] bound putil.c enforces per
// flag (out-of-range is a usage error, not a silent wraparound).
type suffixValue struct {
	v   *uint64
	lo  uint64
	hi  uint64
	set bool
}

func newSuffixValue(p *uint64, lo, hi uint64) *suffixValue {
	return &suffixValue{v: p, lo: lo, hi: hi}
}

func (s *suffixValue) String() string {
	if s.v == nil {
		return "0"
	}
	return strconv.FormatUint(*s.v, 10)
}

func (s *suffixValue) Type() string { return "suffixedUint" }

func (s *suffixValue) Set(raw string) error {
	n, err := parseSuffixed(raw, s.lo, s.hi)
	if err != nil {
		return err
	}
	*s.v = n
	s.set = true
	return nil
}

// decimalSteps is the number of x1000 multiplications each SI suffix
// applies, matching putil.c's fallthrough switch (P falls through
// T/G/M/K, accumulating 5 steps; K alone is 1 step).
var decimalSteps = map[byte]int{
	'K': 1,
	'M': 2,
	'G': 3,
	'T': 4,
	'P': 5,
}

// binaryShift is the total left-shift each binary suffix applies,
// matching putil.c's fallthrough switch over k/m/g/t/p (p falls
// through t/g/m/k, accumulating a shift of 50).
var binaryShift = map[byte]uint{
	'k': 10,
	'm': 20,
	'g': 30,
	't': 40,
	'p': 50,
}

// parseSuffixed parses a decimal integer optionally followed by one of
// the suffix forms above, rejecting both unparsable text and any value
// that would overflow hi once the suffix is applied — mirroring
// putil.c:parse_uint64's "-1 cannot parse, -2 out of range" pair,
// collapsed here into a single error since pflag has no second channel
// for a distinct out-of-range code.
func parseSuffixed(raw string, lo, hi uint64) (uint64, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty numeric argument")
	}

	if n, ok, err := parseExponentSuffix(raw, 'e', 10, hi); ok {
		if err == nil && n < lo {
			return 0, fmt.Errorf("%q is below the minimum of %d", raw, lo)
		}
		return n, err
	}
	if n, ok, err := parseExponentSuffix(raw, 'b', 2, hi); ok {
		if err == nil && n < lo {
			return 0, fmt.Errorf("%q is below the minimum of %d", raw, lo)
		}
		return n, err
	}

	last := raw[len(raw)-1]
	var n uint64
	var err error
	switch {
	case decimalSteps[last] > 0:
		n, err = parseWithDecimalSteps(raw[:len(raw)-1], decimalSteps[last], hi)
	case binaryShift[last] > 0:
		n, err = parseWithShift(raw[:len(raw)-1], binaryShift[last], hi)
	default:
		n, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid numeric argument %q: %w", raw, err)
		}
		if n > hi {
			return 0, fmt.Errorf("%q exceeds the maximum of %d", raw, hi)
		}
	}
	if err != nil {
		return 0, err
	}
	if n < lo {
		return 0, fmt.Errorf("%q is below the minimum of %d", raw, lo)
	}
	return n, nil
}

// parseExponentSuffix matches "<digits><letter><exponent digits>" forms
// like "5e6" or "3b20". ok is false when letter does not appear in raw,
// so the caller falls through to the fixed-multiplier suffixes. The
// multiplication loops one digit/bit at a time and checks for overflow
// against hi at every step, exactly as putil.c's own eN/bN loops do,
// rather than computing the full multiplier first and checking once.
func parseExponentSuffix(raw string, letter byte, base, hi uint64) (uint64, bool, error) {
	idx := strings.IndexByte(raw, letter)
	if idx <= 0 || idx == len(raw)-1 {
		return 0, false, nil
	}
	mantissa, err := strconv.ParseUint(raw[:idx], 10, 64)
	if err != nil {
		return 0, false, nil
	}
	exp, err := strconv.ParseUint(raw[idx+1:], 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("invalid exponent in %q: %w", raw, err)
	}

	num := mantissa
	for ; exp > 0; exp-- {
		if num > hi/base {
			return 0, true, fmt.Errorf("%q overflows the maximum of %d", raw, hi)
		}
		num *= base
	}
	return num, true, nil
}

// parseWithDecimalSteps multiplies digits by 1000, `steps` times,
// checking for overflow against hi before every multiplication —
// putil.c's "for (; expt > 0; expt -= 3) if (num > hi/1000) return -2;
// else num *= 1000;" loop.
func parseWithDecimalSteps(digits string, steps int, hi uint64) (uint64, error) {
	num, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric argument %q: %w", digits, err)
	}
	for ; steps > 0; steps-- {
		if num > hi/1000 {
			return 0, fmt.Errorf("%q overflows the maximum of %d", digits, hi)
		}
		num *= 1000
	}
	return num, nil
}

// parseWithShift left-shifts digits by shift bits in one step, checking
// overflow against hi first — putil.c's "if (num > (hi>>expt)) return
// -2; num <<= expt;" for the k/m/g/t/p binary suffixes.
func parseWithShift(digits string, shift uint, hi uint64) (uint64, error) {
	num, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric argument %q: %w", digits, err)
	}
	if num > hi>>shift {
		return 0, fmt.Errorf("%q overflows the maximum of %d", digits, hi)
	}
	return num << shift, nil
}
