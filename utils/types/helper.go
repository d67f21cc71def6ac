package types

import (
	"strings"

	"golang.org/x/text/language"
)

// EmptyCheck defines an interface for checking if a value is empty.
type EmptyCheck interface {
	IsEmpty() bool
}

// String is a string that knows whether it is blank.
type String string

// IsEmpty checks if the string is empty or contains only whitespace
func (s String) IsEmpty() bool {
	return strings.TrimSpace(string(s)) == ""
}

// LanguageTag wraps language.Tag so it can be checked for emptiness.
type LanguageTag language.Tag

// IsEmpty checks if the language tag is empty
func (l LanguageTag) IsEmpty() bool {
	return l == LanguageTag{}
}

// ToLanguageTag converts LanguageTag to language.Tag
func ToLanguageTag(l LanguageTag) language.Tag {
	return language.Tag(l)
}

func (l LanguageTag) String() string {
	return language.Tag(l).String()
}
