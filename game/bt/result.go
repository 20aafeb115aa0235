package bt

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Result is the outcome of executing a behaviour tree node.
// The encoding is symmetric around zero so that Invert is a plain negation.
type Result int8

const (
	Pending Result = 0
	Pass    Result = 1
	Fail    Result = -1
)

// ToResult maps true to Pass and false to Fail.
func ToResult(ok bool) Result {
	if ok {
		return Pass
	}
	return Fail
}

// Invert swaps Pass and Fail. Pending stays Pending.
func (r Result) Invert() Result {
	return -r
}

func (r Result) String() string {
	switch r {
	case Pending:
		return "pending"
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return fmt.Sprintf("result(%d)", int8(r))
	}
}

// ParseResult accepts the names produced by String, case-insensitively.
func ParseResult(s string) (Result, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return Pending, nil
	case "pass":
		return Pass, nil
	case "fail":
		return Fail, nil
	}
	return Fail, fmt.Errorf("bt: unknown result %q", s)
}

// UnmarshalYAML lets brain files spell results by name.
func (r *Result) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseResult(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalYAML writes the result by name.
func (r Result) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}
