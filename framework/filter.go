package framework

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Filter decides whether a runnable feature is executed. Features it rejects are reported as
// skipped without starting a process.
type Filter func(FeatureID) bool

// RegexFilters selects features by matching patterns against their "trait/feature" ID. A
// feature runs if it matches one of MustMatch (or MustMatch is empty) and none of MustNotMatch.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id FeatureID) bool {
	s := id.String()
	if r.MustMatch.IsDefined() && !r.MustMatch.Matches(s) {
		return false
	}
	return !r.MustNotMatch.Matches(s)
}

func (r RegexFilters) IsDefined() bool {
	return r.MustMatch.IsDefined() || r.MustNotMatch.IsDefined()
}

// RegexList is a flag.Value; each use of the flag adds a pattern.
type RegexList []*regexp.Regexp

func (r RegexList) String() string {
	quoted := make([]string, len(r))
	for i, rx := range r {
		quoted[i] = strconv.Quote(rx.String())
	}
	return strings.Join(quoted, " or ")
}

func (r *RegexList) Set(pattern string) error {
	rx, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	*r = append(*r, rx)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r) > 0
}

// Matches reports whether any pattern matches s.
func (r RegexList) Matches(s string) bool {
	for _, rx := range r {
		if rx.MatchString(s) {
			return true
		}
	}
	return false
}

// PrintFilterDescription tells the user which features the filters will skip. It prints
// nothing when no filter is set.
func PrintFilterDescription(out io.Writer, filters RegexFilters) {
	if !filters.IsDefined() {
		return
	}
	lines := []string{"Some features will be skipped based on the filter criteria for this run:"}
	if filters.MustMatch.IsDefined() {
		lines = append(lines, "  skip any not matching "+filters.MustMatch.String())
	}
	if filters.MustNotMatch.IsDefined() {
		lines = append(lines, "  skip any matching "+filters.MustNotMatch.String())
	}
	fmt.Fprintf(out, "%s\n\n", strings.Join(lines, "\n"))
}
