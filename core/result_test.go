package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/wwsinagogogo/theia/filesystem"
	"github.com/wwsinagogogo/theia/uri"
)

func TestClassifyProviderCodes(t *testing.T) {
	tests := []struct {
		name string
		code filesystem.ErrorCode
		want OperationResult
	}{
		{"not found", filesystem.CodeFileNotFound, ResultNotFound},
		{"is a directory", filesystem.CodeFileIsADirectory, ResultIsDirectory},
		{"not a directory", filesystem.CodeFileNotADirectory, ResultNotDirectory},
		{"no permissions", filesystem.CodeNoPermissions, ResultPermissionDenied},
		{"already exists", filesystem.CodeFileExists, ResultMoveConflict},
		{"unavailable", filesystem.CodeUnavailable, ResultOther},
		{"unknown", filesystem.CodeUnknown, ResultOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := filesystem.NewError(tt.code, "backend failure")
			if got := Classify(err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassifyUnmarkedAndNil(t *testing.T) {
	if got := Classify(errors.New("anything")); got != ResultOther {
		t.Errorf("Classify(unmarked) = %v, want ResultOther", got)
	}
	if got := Classify(nil); got != ResultOther {
		t.Errorf("Classify(nil) = %v, want ResultOther", got)
	}
	custom := filesystem.Mark(errors.New("vendor specific"), filesystem.ErrorCode(999))
	if got := Classify(custom); got != ResultOther {
		t.Errorf("Classify(custom code) = %v, want ResultOther", got)
	}
}

func TestClassifyKeepsOperationResult(t *testing.T) {
	u := uri.MustParse("file:///a")
	oe := newOperationError(ResultModifiedSince, u, WriteOptions{ETag: "abc"}, "stale write")

	if got := Classify(oe); got != ResultModifiedSince {
		t.Errorf("Classify(OperationError) = %v, want ResultModifiedSince", got)
	}
	// Wrapped, the result must survive.
	if got := Classify(fmt.Errorf("while saving: %w", oe)); got != ResultModifiedSince {
		t.Errorf("Classify(wrapped OperationError) = %v, want ResultModifiedSince", got)
	}
}

func TestOperationErrorCarriesOptions(t *testing.T) {
	u := uri.MustParse("file:///a")
	opts := WriteOptions{ETag: "abc", Create: true}

	var oe *OperationError
	err := newOperationError(ResultModifiedSince, u, opts, "stale write")
	if !errors.As(err, &oe) {
		t.Fatal("expected an OperationError")
	}

	got, ok := oe.Options.(WriteOptions)
	if !ok || got.ETag != "abc" || !got.Create {
		t.Errorf("Options = %#v, want the original WriteOptions", oe.Options)
	}
	if !oe.Resource.Equal(u) {
		t.Errorf("Resource = %v, want %v", oe.Resource, u)
	}
}

func TestWrapProviderErrorPreservesOrigin(t *testing.T) {
	origin := filesystem.NewError(filesystem.CodeFileNotFound, "gone")
	wrapped := wrapProviderError(origin, uri.MustParse("file:///a"), nil)

	if wrapped.Result != ResultNotFound {
		t.Errorf("Result = %v, want ResultNotFound", wrapped.Result)
	}
	if filesystem.CodeOf(wrapped) != filesystem.CodeFileNotFound {
		t.Error("provider code lost through wrapping")
	}
}
