// Package ref turns the opaque reference strings handed out by the data API
// into typed record identities.
package ref

import (
	"regexp"
	"strings"
)

// TokenLength is the length of the hexadecimal identity token embedded at
// the end of a reference.
const TokenLength = 24

var trailingToken = regexp.MustCompile(`(?i)[0-9a-f]{24}$`)

// ID is the identity of a record. The zero value means "no reference".
type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return id == ""
}

// Canonical returns id in the form Extract produces, so record ids and
// references compare equal regardless of hex case.
func (id ID) Canonical() ID {
	return Extract(string(id))
}

// Extract returns the identity embedded in reference.
//
// A trailing hexadecimal token of TokenLength characters wins and is
// lower-cased. Otherwise the last non-empty path segment is used, which
// covers bare record ids and short ids such as ".../c1".
func Extract(reference string) ID {
	s := strings.TrimSpace(reference)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return ""
	}

	if token := trailingToken.FindString(s); token != "" {
		return ID(strings.ToLower(token))
	}

	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return ID(s)
}

// Matches reports whether reference points at id.
func Matches(reference string, id ID) bool {
	return !id.IsZero() && Extract(reference) == id
}
