// Package textutils provides named ASCII character and string constants used
// used to avoid magic rune/byte literals in parsing code.
package textutils

const (
	// AUpperChar is the rune for uppercase A.
	AUpperChar = 'A'
	// ZUpperChar is the rune for uppercase Z.
	ZUpperChar = 'Z'
	// ALowerChar is the rune for lowercase a.
	ALowerChar = 'a'
	// ZLowerChar is the rune for lowercase z.
	ZLowerChar = 'z'

	// HashChar is the rune for '#'.
	HashChar = '#'
	// EqualChar is the rune for '='.
	EqualChar = '='
	// ColonChar is the rune for ':'.
	ColonChar = ':'
	// BackSlashChar is the rune for '\\'.
	BackSlashChar = '\\'
	// ForwardSlashChar is the rune for '/'.
	ForwardSlashChar = '/'
	// DollarChar is the rune for '$'.
	DollarChar = '$'
	// OpenBraceChar is the rune for '{'.
	OpenBraceChar = '{'
	// CloseBraceChar is the rune for '}'.
	CloseBraceChar = '}'
)

const (
	// EmptyStr is the empty string.
	EmptyStr = ""
	// EqualStr is the string "=".
	EqualStr = "="
	// ColonStr is the string ":".
	ColonStr = ":"
	// SemiColonStr is the string ";".
	SemiColonStr = ";"
	// PeriodStr is the string ".".
	PeriodStr = "."
	// ForwardSlashStr is the string "/".
	ForwardSlashStr = "/"
	// CloseBraceStr is the string "}".
	CloseBraceStr = "}"
	// WhiteSpaceStr is a single space.
	WhiteSpaceStr = " "
	// NewLineString is the newline string.
	NewLineString = "\n"
)
