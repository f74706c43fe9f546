// Package fspath turns driver paths into storage keys.
//
// Keys use a backslash separator and have no leading root separator:
// "\dir\file.txt" is stored as "dir\file.txt" and the root is "".
package fspath

import "strings"

const (
	Separator       = '\\'
	separatorString = string(Separator)
	Root            = separatorString
	rootDoubled     = separatorString + separatorString
)

// Normalize strips one leading root separator.
func Normalize(raw string) string {
	return strings.TrimPrefix(raw, separatorString)
}

// IsRoot reports whether raw is one of the root spellings.
func IsRoot(raw string) bool {
	return raw == Root || raw == rootDoubled || raw == ""
}

// SearchPrefix builds the range bounds of an enumeration. The pattern is
// appended to the normalized path and wildcards are trimmed from both
// ends; wildcard is prefix followed by "*".
func SearchPrefix(raw, pattern string) (prefix, wildcard string) {
	prefix = strings.Trim(Normalize(raw)+pattern, "*")
	return prefix, prefix + "*"
}

// LiteralPrefix returns prefix up to its first wildcard. Range scans
// bound on it; the full pattern decides the match.
func LiteralPrefix(prefix string) string {
	if i := strings.IndexAny(prefix, "*?"); i >= 0 {
		return prefix[:i]
	}
	return prefix
}

// Join appends name to a storage key.
func Join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + separatorString + name
}

// Split returns the parent key and the last component of key.
func Split(key string) (parent, name string) {
	i := strings.LastIndexByte(key, Separator)
	if i < 0 {
		return "", key
	}
	return key[:i], key[i+1:]
}

// FromSlash converts a slash separated relative path into a key.
func FromSlash(p string) string {
	return strings.ReplaceAll(strings.Trim(p, "/"), "/", separatorString)
}

// Child returns the immediate child component of key below dir, or ""
// when key is not strictly inside dir.
func Child(dir, key string) string {
	rest := key
	if dir != "" {
		if !strings.HasPrefix(key, dir+separatorString) {
			return ""
		}
		rest = key[len(dir)+1:]
	}
	if rest == "" {
		return ""
	}
	if i := strings.IndexByte(rest, Separator); i >= 0 {
		return rest[:i]
	}
	return rest
}

// Match reports whether name matches pattern, where '*' matches any run
// of characters and '?' exactly one. Backslash is an ordinary character.
func Match(pattern, name string) bool {
	p := []rune(pattern)
	n := []rune(name)

	pi, ni := 0, 0
	star, mark := -1, 0
	for ni < len(n) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == n[ni]):
			pi++
			ni++
		case pi < len(p) && p[pi] == '*':
			star, mark = pi, ni
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			ni = mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
