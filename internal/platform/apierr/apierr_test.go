package apierr

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
		status   int
		code     string
	}{
		{"validation", Validation("name is required"), ErrValidation, http.StatusBadRequest, CodeValidation},
		{"reference", InvalidReference("category %s", "c1"), ErrInvalidReference, http.StatusBadRequest, CodeInvalidReference},
		{"not_found", NotFound("course %s", "x"), ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"forbidden", Forbidden("not owner"), ErrForbidden, http.StatusForbidden, CodeForbidden},
		{"storage_write", StorageWrite(fs.ErrPermission, "save"), ErrStorageWrite, http.StatusInternalServerError, CodeStorageWrite},
		{"storage", Storage(fs.ErrPermission, "delete"), ErrStorage, http.StatusInternalServerError, CodeStorage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("op: %w", tc.err)
			if !errors.Is(wrapped, tc.sentinel) {
				t.Fatalf("errors.Is: want=true got=false (%v)", wrapped)
			}
			if got := StatusOf(wrapped); got != tc.status {
				t.Fatalf("StatusOf: want=%d got=%d", tc.status, got)
			}
			if got := CodeOf(wrapped); got != tc.code {
				t.Fatalf("CodeOf: want=%s got=%s", tc.code, got)
			}
		})
	}
}

func TestStorageKeepsCause(t *testing.T) {
	err := StorageWrite(fs.ErrPermission, "write %s", "a.png")
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("cause: want fs.ErrPermission in chain, got %v", err)
	}
}

func TestUnknownErrorDefaults(t *testing.T) {
	err := errors.New("boom")
	if StatusOf(err) != http.StatusInternalServerError || CodeOf(err) != CodeInternal {
		t.Fatalf("defaults: got status=%d code=%s", StatusOf(err), CodeOf(err))
	}
}

func TestMessageOfDropsWrapPrefixes(t *testing.T) {
	err := fmt.Errorf("edit course: %w", fmt.Errorf("patch: %w", Validation("price must be a number")))
	if got := MessageOf(err); got != "validation error: price must be a number" {
		t.Fatalf("MessageOf: want=%q got=%q", "validation error: price must be a number", got)
	}
	if got := MessageOf(errors.New("boom")); got != "boom" {
		t.Fatalf("MessageOf plain: want=boom got=%q", got)
	}
}
