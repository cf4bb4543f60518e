package store

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const databaseName = "nonactdb"

// Mongo implements Store on a MongoDB database.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(ctx context.Context, uri string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	m := &Mongo{client: client, db: client.Database(databaseName)}
	m.ensureIndexes(ctx)
	return m, nil
}

// ensureIndexes creates the unique index on pending registrations so a
// concurrent duplicate submission surfaces as an insert conflict instead of
// a silent second row.
func (m *Mongo) ensureIndexes(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := m.db.Collection(TablePending).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("ensure pending email index: %v", err)
	}

	_, err = m.db.Collection(TableUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("ensure users email index: %v", err)
	}
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toBson(f map[string]any) bson.M {
	doc := bson.M{}
	for k, v := range f {
		doc[k] = v
	}
	return doc
}

func (m *Mongo) Select(ctx context.Context, table string, filter Filter, order *Order, out any) error {
	opts := options.Find()
	if order != nil {
		dir := 1
		if order.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: order.Field, Value: dir}})
	}

	cur, err := m.db.Collection(table).Find(ctx, toBson(filter), opts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

func (m *Mongo) SelectOne(ctx context.Context, table string, filter Filter, out any) error {
	err := m.db.Collection(table).FindOne(ctx, toBson(filter)).Decode(out)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

func (m *Mongo) Insert(ctx context.Context, table string, docs ...any) error {
	var err error
	if len(docs) == 1 {
		_, err = m.db.Collection(table).InsertOne(ctx, docs[0])
	} else {
		_, err = m.db.Collection(table).InsertMany(ctx, docs)
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	return err
}

func (m *Mongo) Update(ctx context.Context, table string, filter Filter, patch Patch) (int64, error) {
	res, err := m.db.Collection(table).UpdateMany(ctx, toBson(filter), bson.M{"$set": toBson(patch)})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (m *Mongo) Delete(ctx context.Context, table string, filter Filter) (int64, error) {
	res, err := m.db.Collection(table).DeleteMany(ctx, toBson(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
