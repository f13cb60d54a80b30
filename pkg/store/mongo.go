package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/scene"
)

// Collection holds saved scenes.
const Collection = "scenes"

// MongoStore saves documents in the "scenes" collection of a database.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and pings the server.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(Collection),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, doc scene.Document) (string, error) {
	rec := newRecord(doc)
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return "", errs.Wrap(errs.ErrCodeNetwork, err, "insert scene")
	}
	return rec.ID, nil
}

func (s *MongoStore) Load(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, errs.New(errs.ErrCodeNotFound, "saved scene %q not found", id)
	}
	if err != nil {
		return Record{}, errs.Wrap(errs.ErrCodeNetwork, err, "find scene %s", id)
	}
	return rec, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.Wrap(errs.ErrCodeNetwork, err, "delete scene %s", id)
	}
	if res.DeletedCount == 0 {
		return errs.New(errs.ErrCodeNotFound, "saved scene %q not found", id)
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
