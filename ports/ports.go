package ports

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a validated, deduplicated, ordered set of TCP ports.
// Every element is in [1, 65535]. A Range is immutable once parsed.
type Range []int

// ErrorKind classifies why a port spec was rejected.
type ErrorKind int

const (
	// KindMalformed means the spec matched none of the accepted forms.
	KindMalformed ErrorKind = iota
	// KindInvalidPort means a list token was not a bare integer.
	KindInvalidPort
	// KindOutOfRange means a port fell outside [1, 65535].
	KindOutOfRange
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidPort:
		return "invalid port"
	case KindOutOfRange:
		return "out of range"
	default:
		return "malformed"
	}
}

// ParseError reports a rejected port spec. Token carries the offending
// input fragment when one can be identified.
type ParseError struct {
	Kind  ErrorKind
	Token string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("port spec %s: %q", e.Kind, e.Token)
	}
	return fmt.Sprintf("port spec %s", e.Kind)
}

// Parse turns a user-supplied port expression into a Range.
// Accepted forms, checked in this order:
//   - comma list: "80,443,8080" (every token a bare integer)
//   - dash range: "8000-8100" (inclusive, order-independent)
//   - single port: "80"
//
// Each resulting port must be in [1, 65535]; the parser never clamps.
func Parse(spec string) (Range, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, &ParseError{Kind: KindMalformed}
	}

	if strings.Contains(spec, ",") {
		return parseList(spec)
	}
	if strings.Contains(spec, "-") {
		return parseRange(spec)
	}

	p, err := strconv.Atoi(spec)
	if err != nil {
		return nil, &ParseError{Kind: KindMalformed, Token: spec}
	}
	if err := checkBounds(p); err != nil {
		return nil, err
	}
	return Range{p}, nil
}

// parseList handles the comma-separated form. Tokens must be bare
// integers; range tokens inside a list are rejected.
func parseList(spec string) (Range, error) {
	tokens := strings.Split(spec, ",")
	seen := make(map[int]struct{}, len(tokens))
	out := make(Range, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		p, err := strconv.Atoi(tok)
		if err != nil {
			return nil, &ParseError{Kind: KindInvalidPort, Token: tok}
		}
		if err := checkBounds(p); err != nil {
			return nil, err
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// parseRange handles the dash form. The bounds are order-independent:
// "1024-1" yields the same range as "1-1024".
func parseRange(spec string) (Range, error) {
	bounds := strings.SplitN(spec, "-", 2)
	start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return nil, &ParseError{Kind: KindMalformed, Token: spec}
	}
	end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return nil, &ParseError{Kind: KindMalformed, Token: spec}
	}
	if start > end {
		start, end = end, start
	}
	if err := checkBounds(start); err != nil {
		return nil, err
	}
	if err := checkBounds(end); err != nil {
		return nil, err
	}

	out := make(Range, 0, end-start+1)
	for p := start; p <= end; p++ {
		out = append(out, p)
	}
	return out, nil
}

func checkBounds(p int) error {
	if p < 1 || p > 65535 {
		return &ParseError{Kind: KindOutOfRange, Token: strconv.Itoa(p)}
	}
	return nil
}
