package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestCodeOf_WrappedErrorKeepsCode(t *testing.T) {
	t.Parallel()

	base := Transientf("fetch failed")
	wrapped := Wrap(base, ErrorCodeTransient, "cycle aborted")
	if CodeOf(wrapped) != ErrorCodeTransient {
		t.Fatalf("code = %v", CodeOf(wrapped))
	}
	if Root(wrapped) == nil {
		t.Fatalf("root lost")
	}
}

func TestRetryable_Classification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want bool
	}{
		{Transientf("x"), true},
		{RateLimitedf("x"), true},
		{Validationf("x"), false},
		{Dispatchf("x"), false},
		{Configf("x"), false},
		{stderrs.New("plain"), false},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Fatalf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestWithField_CopyOnWrite(t *testing.T) {
	t.Parallel()

	base := Validationf("phone is bad")
	withField := WithField(base, "phone")

	e, ok := As(withField)
	if !ok || e.Field() != "phone" {
		t.Fatalf("field = %v", withField)
	}
	orig, _ := As(base)
	if orig.Field() != "" {
		t.Fatalf("original mutated")
	}
}

func TestHTTPStatus_Mapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{Validationf("x"), http.StatusBadRequest},
		{JSONErrf("x"), http.StatusBadRequest},
		{NotFoundf("x"), http.StatusNotFound},
		{DuplicateKeyf("x"), http.StatusConflict},
		{RateLimitedf("x"), http.StatusTooManyRequests},
		{Transientf("x"), http.StatusServiceUnavailable},
		{Dispatchf("x"), http.StatusBadGateway},
		{Configf("x"), http.StatusInternalServerError},
		{stderrs.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWireFrom_PlainErrorFallsBack(t *testing.T) {
	t.Parallel()

	w := WireFrom(stderrs.New("boom"))
	if w.Code != ErrorCodeUnknown || w.Message != "boom" {
		t.Fatalf("wire = %+v", w)
	}
	if z := WireFrom(nil); z.Message != "" {
		t.Fatalf("nil wire = %+v", z)
	}
}
