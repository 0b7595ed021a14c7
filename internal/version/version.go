// Package version compares dotted host and add-on version strings.
//
// Versions are split on "." and compared segment by segment as integers.
// Any run of non-numeric characters becomes its own negative segment derived
// from its first letter, so pre-release tags sort below the plain release:
//
//	Compare("91.0b1", "91.0") == -1
//	Compare("91.0a1", "91.0b1") == -1
//	Compare("91.0", "91.0.0") == 0
package version

import (
	"regexp"
	"strconv"
	"strings"
)

// tagBase shifts letter code points below zero so a tag always sorts
// before any numeric segment.
const tagBase = 65536

var (
	nonNumericRun = regexp.MustCompile(`[^0-9.]+`)
	nonWordRun    = regexp.MustCompile(`[\W_]+`)
	// A trailing tag segment swallows the zero segments in front of it and a
	// dangling separator after it: "1.0.0b" and "1b" prepare identically.
	trailingTag = regexp.MustCompile(`(?:\.0+)*(\.-[0-9]+)(\.[0-9]+)?\.*$`)
)

// Compare returns -1 when a sorts before b, 1 when it sorts after and 0 when
// both describe the same version. An empty string compares like "0".
func Compare(a, b string) int {
	as, bs := segments(a), segments(b)

	n := max(len(as), len(bs))
	for i := 0; i < n; i++ {
		x, y := at(as, i), at(bs, i)
		switch {
		case x > y:
			return 1
		case x < y:
			return -1
		}
	}
	return 0
}

// AtLeast reports whether v is the same as or newer than min.
func AtLeast(v, min string) bool {
	return Compare(v, min) >= 0
}

func segments(v string) []int {
	prepared := nonNumericRun.ReplaceAllStringFunc(v, tagSegment)
	prepared = trailingTag.ReplaceAllString(prepared, "${1}${2}")

	parts := strings.Split(prepared, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		// Anything that does not parse (empty segments mostly) counts as zero.
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		out[i] = n
	}
	return out
}

func tagSegment(run string) string {
	word := nonWordRun.ReplaceAllString(run, "")
	if word == "" {
		return ".."
	}
	r := []rune(strings.ToLower(word))[0]
	return "." + strconv.Itoa(int(r)-tagBase) + "."
}

func at(s []int, i int) int {
	if i < len(s) {
		return s[i]
	}
	return 0
}
