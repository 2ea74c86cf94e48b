// Package vercmp implements the version comparison scheme used by .pc
// metadata. Versions are compared segment-wise in the RPM style: runs of
// digits compare numerically, runs of letters compare lexically, and a
// tilde marks a pre-release that sorts before everything else, including
// the empty string ("1.0~rc1" < "1.0").
//
// This is deliberately not semver: .pc files carry version strings like
// "1.2.11", "2.0.0-beta1" or "20220623", and the ecosystem expects the
// RPM ordering for all of them.
package vercmp

import "strings"

// Compare returns -1 if a is older than b, 0 if the versions are
// equivalent, and 1 if a is newer than b.
func Compare(a, b string) int {
	if a == b {
		return 0
	}

	i, j := 0, 0
	for i < len(a) || j < len(b) {
		// Separators carry no ordering weight.
		for i < len(a) && !isAlnum(a[i]) && a[i] != '~' {
			i++
		}
		for j < len(b) && !isAlnum(b[j]) && b[j] != '~' {
			j++
		}

		// Tilde sorts before everything, even the end of the string.
		tildeA := i < len(a) && a[i] == '~'
		tildeB := j < len(b) && b[j] == '~'
		if tildeA || tildeB {
			if !tildeA {
				return 1
			}
			if !tildeB {
				return -1
			}
			i++
			j++
			continue
		}

		if i >= len(a) || j >= len(b) {
			break
		}

		// The segment class (numeric or alphabetic) is chosen by the
		// first string; a mismatched class in the second string ends
		// its segment immediately.
		si, sj := i, j
		numeric := isDigit(a[i])
		if numeric {
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
		} else {
			for i < len(a) && isAlpha(a[i]) {
				i++
			}
			for j < len(b) && isAlpha(b[j]) {
				j++
			}
		}

		segA, segB := a[si:i], b[sj:j]
		if segB == "" {
			// Numeric segments sort after alphabetic ones.
			if numeric {
				return 1
			}
			return -1
		}

		if numeric {
			segA = strings.TrimLeft(segA, "0")
			segB = strings.TrimLeft(segB, "0")
			if len(segA) != len(segB) {
				if len(segA) > len(segB) {
					return 1
				}
				return -1
			}
		}

		if c := strings.Compare(segA, segB); c != 0 {
			return c
		}
	}

	if i >= len(a) && j >= len(b) {
		return 0
	}
	if i < len(a) {
		return 1
	}
	return -1
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool { return isDigit(c) || isAlpha(c) }
