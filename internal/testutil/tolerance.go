package testutil

import "math"

// TB is the subset of testing.TB the assertions need. Both *testing.T and
// *rapid.T satisfy it.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// NearlyEqual reports whether got and want agree within eps (absolute).
// Infinities of the same sign compare equal, as do two NaNs.
func NearlyEqual(got, want, eps float64) bool {
	switch {
	case math.IsNaN(got) || math.IsNaN(want):
		return math.IsNaN(got) && math.IsNaN(want)
	case math.IsInf(got, 0) || math.IsInf(want, 0):
		return got == want
	default:
		return math.Abs(got-want) <= eps
	}
}

// RequireNearlyEqual fails t if got and want differ by more than eps.
func RequireNearlyEqual(t TB, name string, got, want, eps float64) {
	t.Helper()
	if !NearlyEqual(got, want, eps) {
		t.Fatalf("%s: got %v, want %v (eps %v)", name, got, want, eps)
	}
}

// RequireScoresEqual fails t if the two score maps differ in keys or if any
// shared key differs by more than eps.
func RequireScoresEqual[M ~map[K]float64, K comparable](t TB, got, want M, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("key count mismatch: got %v, want %v", got, want)
	}
	for k, w := range want {
		g, ok := got[k]
		if !ok {
			t.Fatalf("missing key %v in %v", k, got)
		}
		if !NearlyEqual(g, w, eps) {
			t.Fatalf("key %v: got %v, want %v (eps %v)", k, g, w, eps)
		}
	}
}
