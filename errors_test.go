package lakes_test

import (
	"testing"

	"github.com/pkg/errors"
	lakes "github.com/stevemn/udacity-dengr-lakes"
)

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	mismatch := &lakes.SchemaMismatchError{Kind: "song", Reason: "song_id is missing"}
	wrapped := errors.Wrap(errors.Wrap(mismatch, "decoding json from a.json"), "reading songs")
	if !lakes.IsSchemaMismatch(wrapped) {
		t.Fatalf("expected wrapped schema mismatch to be detected: %v", wrapped)
	}
	if lakes.IsSourceUnavailable(wrapped) || lakes.IsWriteFailure(wrapped) || lakes.IsDependencyOrder(wrapped) {
		t.Fatalf("schema mismatch misclassified: %v", wrapped)
	}

	unavail := errors.Wrap(&lakes.SourceUnavailableError{Location: "s3://b/p", Err: errors.New("no")}, "opening")
	if !lakes.IsSourceUnavailable(unavail) {
		t.Fatalf("expected source unavailable to be detected: %v", unavail)
	}

	wf := errors.Wrap(&lakes.WriteFailureError{Key: "songs/", Err: errors.New("no")}, "writing songs")
	if !lakes.IsWriteFailure(wf) {
		t.Fatalf("expected write failure to be detected: %v", wf)
	}

	dep := &lakes.DependencyOrderError{Stage: "songplays", Missing: "songs dimension"}
	if !lakes.IsDependencyOrder(errors.Wrap(dep, "building")) {
		t.Fatalf("expected dependency order violation to be detected")
	}
}
