package version

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"91.0", "91.0", 0},
		{"91.0", "91.0.0", 0},
		{"1", "1.0.0", 0},
		{"", "0", 0},
		{"", "0.0.1", -1},
		{"91.0", "91.0.1", -1},
		{"91.0.1", "91.1", -1},
		{"91.1", "100.0", -1},
		{"100.0", "91.1", 1},
		{"91.0b1", "91.0", -1},
		{"91.0a1", "91.0b1", -1},
		{"91.0b2", "91.0b1", 1},
		{"1.0b", "1b", 0},
		{"128.5.0esr", "128.5.0", -1},
		{"128.5.0esr", "128.4.9", 1},
		{"115.3.1_20230920175946/20230920175946", "115.3.1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Compare(tt.b, tt.a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestCompareMonotonicChain(t *testing.T) {
	chain := []string{"90.0a1", "90.0b3", "90.0", "91.0", "91.0.1", "91.1", "100.0"}
	for i := 0; i < len(chain); i++ {
		for j := i + 1; j < len(chain); j++ {
			if Compare(chain[i], chain[j]) != -1 {
				t.Errorf("expected %q < %q", chain[i], chain[j])
			}
		}
	}
}

func TestAtLeast(t *testing.T) {
	if !AtLeast("128.0", "128.0") {
		t.Error("AtLeast should hold for equal versions")
	}
	if !AtLeast("129.0", "128.0.1") {
		t.Error("AtLeast(129.0, 128.0.1) should hold")
	}
	if AtLeast("128.0b1", "128.0") {
		t.Error("a beta build is not at least the release")
	}
}

func versionGen() gopter.Gen {
	return gen.RegexMatch(`[0-9]{1,3}(\.[0-9]{1,3}){0,3}([ab][0-9]{0,2}|esr)?`)
}

func TestCompareProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("compare is reflexive", prop.ForAll(
		func(a string) bool {
			return Compare(a, a) == 0
		},
		versionGen(),
	))

	properties.Property("compare is antisymmetric", prop.ForAll(
		func(a, b string) bool {
			return Compare(a, b) == -Compare(b, a)
		},
		versionGen(), versionGen(),
	))

	properties.Property("compare is transitive", prop.ForAll(
		func(a, b, c string) bool {
			if Compare(a, b) <= 0 && Compare(b, c) <= 0 {
				return Compare(a, c) <= 0
			}
			return true
		},
		versionGen(), versionGen(), versionGen(),
	))

	properties.TestingRun(t)
}
