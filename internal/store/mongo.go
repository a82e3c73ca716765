package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements Collection over a MongoDB collection. Documents carry a
// server-assigned uuid in an indexed "id" string field, kept separate from
// Mongo's own _id so exported documents stay addressable by the API ids.
type Mongo struct {
	col *mongo.Collection
}

func NewMongo(col *mongo.Collection) *Mongo {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &Mongo{col: col}
}

func (m *Mongo) Create(ctx context.Context, doc any) (string, error) {
	d, err := toDoc(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := uuid.NewString()
	d["id"] = id
	if _, err := m.col.InsertOne(ctx, d); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Mongo) Get(ctx context.Context, id string) (bson.Raw, error) {
	raw, err := m.col.FindOne(ctx, bson.M{"id": id}).Raw()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

func (m *Mongo) List(ctx context.Context, q Query) ([]bson.Raw, error) {
	filter := bson.M{}
	if q.FilterField != "" {
		filter[q.FilterField] = q.FilterValue
	}
	opts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Descending {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy, Value: dir}})
	}
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []bson.Raw{}
	for cur.Next(ctx) {
		// cur.Current is reused between iterations
		raw := make(bson.Raw, len(cur.Current))
		copy(raw, cur.Current)
		out = append(out, raw)
	}
	return out, cur.Err()
}

func (m *Mongo) Update(ctx context.Context, id string, doc any) error {
	d, err := toDoc(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": d})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, id string) error {
	// deleting an absent id is not an error: callers always get the ack
	_, err := m.col.DeleteOne(ctx, bson.M{"id": id})
	return err
}
