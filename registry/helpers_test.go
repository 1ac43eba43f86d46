package registry

import (
	"errors"
	"testing"
)

// mustViolate runs fn and returns the *IntegrityError it panics with.
// The test fails if fn returns normally or the violation has another reason.
func mustViolate(t *testing.T, reason Reason, fn func()) *IntegrityError {
	t.Helper()

	var got *IntegrityError
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok || !errors.As(err, &got) {
				panic(r)
			}
		}()
		fn()
	}()

	if got == nil {
		t.Fatalf("expected integrity violation (%v), got none", reason)
	}
	if got.Reason != reason {
		t.Fatalf("violation reason = %v, want %v (%v)", got.Reason, reason, got)
	}
	if !errors.Is(got, ErrIntegrity) {
		t.Fatalf("violation %v does not wrap ErrIntegrity", got)
	}
	return got
}
