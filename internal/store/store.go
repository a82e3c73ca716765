package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound reports that no document carries the requested id. It is a
// distinct kind from generic store failures so callers can map it to a
// not-found status.
var ErrNotFound = errors.New("document not found")

// Query shapes a List call: one ordering field and at most one equality
// predicate.
type Query struct {
	OrderBy     string
	Descending  bool
	FilterField string
	FilterValue string
}

// Collection is the document-store surface the resource handlers depend on.
// Implementations must be safe for concurrent use; Create always allocates
// the document identifier itself.
type Collection interface {
	Create(ctx context.Context, doc any) (string, error)
	Get(ctx context.Context, id string) (bson.Raw, error)
	List(ctx context.Context, q Query) ([]bson.Raw, error)
	Update(ctx context.Context, id string, doc any) error
	Delete(ctx context.Context, id string) error
}

// toDoc flattens a bson-taggable value into a mutable document, stripping the
// identifier fields the adapter owns. Client-supplied ids never survive this.
func toDoc(v any) (bson.M, error) {
	b, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	delete(m, "_id")
	delete(m, "id")
	return m, nil
}
