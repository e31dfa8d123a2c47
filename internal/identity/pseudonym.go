// Package identity derives deterministic display pseudonyms used to
// anonymize contributor identities discovered during collection.
package identity

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed wordlists.yaml
var wordlistData []byte

var (
	qualifiers []string
	subjects   []string
)

// Offsets tried on a collision before falling back to appending the
// numeric index. The lists have coprime lengths, so collisions only start
// once the index wraps both lists.
const (
	altSubjectOffset   = 7
	altQualifierOffset = 5
)

func init() {
	var lists struct {
		Qualifiers []string `yaml:"qualifiers"`
		Subjects   []string `yaml:"subjects"`
	}
	if err := yaml.Unmarshal(wordlistData, &lists); err != nil {
		panic(fmt.Sprintf("identity: invalid embedded word lists: %v", err))
	}
	if len(lists.Qualifiers) == 0 || len(lists.Subjects) == 0 {
		panic("identity: embedded word lists are empty")
	}
	qualifiers = lists.Qualifiers
	subjects = lists.Subjects
}

// Pseudonyms returns n pairwise-distinct "Qualifier Subject" display names.
// The sequence is a pure function of n: no randomness, no clock.
func Pseudonyms(n int) []string {
	used := make(map[string]struct{}, n)
	names := make([]string, 0, n)

	for i := 0; i < n; i++ {
		name := compose(i, 0, 0)
		if _, taken := used[name]; taken {
			name = compose(i, altSubjectOffset, 0)
		}
		if _, taken := used[name]; taken {
			name = compose(i, 0, altQualifierOffset)
		}
		if _, taken := used[name]; taken {
			name = fmt.Sprintf("%s %d", compose(i, 0, 0), i)
		}
		used[name] = struct{}{}
		names = append(names, name)
	}

	return names
}

func compose(i, subjectOffset, qualifierOffset int) string {
	q := qualifiers[(i+qualifierOffset)%len(qualifiers)]
	s := subjects[(i+subjectOffset)%len(subjects)]
	return q + " " + s
}

// Username derives the cache lookup key for a pseudonym: lower-cased with
// all whitespace removed. Distinct pseudonyms yield distinct usernames
// because the word lists carry no whitespace or case-colliding entries.
func Username(pseudonym string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, pseudonym)
}
