package outbox

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func duplicateKeyError() error {
	return mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Code: 11000, Message: "E11000 duplicate key error"}},
		},
	}
}

func TestCountInsertedPastDuplicates(t *testing.T) {
	// Re-queueing a plan inserts only the new rows; rows already present for
	// their (plan, student) pair come back as duplicate-key write errors.
	res := &mongo.InsertManyResult{InsertedIDs: []interface{}{1, 2, 3}}
	created, err := countInserted(res, duplicateKeyError())
	if err != nil {
		t.Fatalf("duplicate rows must not fail the queue call: %v", err)
	}
	if created != 3 {
		t.Fatalf("created = %d, want 3", created)
	}
}

func TestCountInsertedAllDuplicates(t *testing.T) {
	created, err := countInserted(nil, duplicateKeyError())
	if err != nil || created != 0 {
		t.Fatalf("got (%d, %v), want (0, nil)", created, err)
	}
}

func TestCountInsertedSurfacesOtherErrors(t *testing.T) {
	if _, err := countInserted(nil, errors.New("connection reset")); err == nil {
		t.Fatalf("non-duplicate errors must surface")
	}
}
