package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusFor_MapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("user x: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("email taken: %w", ErrConflict), http.StatusConflict},
		{Validation("bad input"), http.StatusBadRequest},
		{fmt.Errorf("plain failure"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusFor(c.err); got != c.want {
			t.Fatalf("%v: expected %d got %d", c.err, c.want, got)
		}
	}
}

func TestValidation_WrapsSentinel(t *testing.T) {
	err := Validation("field %s missing", "email")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation sentinel in chain")
	}
}

func TestCollaborator_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Collaborator("openai", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause preserved in chain")
	}
}
