package mongodb

import (
	"context"
	"errors"

	"panchayat-docstore/internal/docstore/domain/model"
	"panchayat-docstore/internal/docstore/domain/repository"
	apperrors "panchayat-docstore/internal/shared/errors"
	"panchayat-docstore/internal/shared/logger"
	"panchayat-docstore/pkg/value"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is a repository.Store over one MongoDB collection. Document ids are
// strings; generated ids are ObjectID hex strings.
type Store struct {
	coll *mongo.Collection
	log  logger.Logger
}

// NewStore wraps coll.
func NewStore(coll *mongo.Collection, log logger.Logger) *Store {
	return &Store{
		coll: coll,
		log:  log.WithFields(map[string]interface{}{"collection": coll.Name()}),
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Find(ctx context.Context, q model.Query) ([]*value.Object, error) {
	filter := BuildFilter(q.Filters)
	opts := BuildFindOptions(q)

	s.log.WithContext(ctx).Debugf("find filter=%v", filter)
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var raws []bson.D
	if err := cur.All(ctx, &raws); err != nil {
		return nil, err
	}

	docs := make([]*value.Object, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, objectFromBSON(raw))
	}
	return docs, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*value.Object, error) {
	var raw bson.D
	err := s.coll.FindOne(ctx, bson.M{model.FieldID: id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return objectFromBSON(raw), nil
}

func (s *Store) Insert(ctx context.Context, doc *value.Object) (string, error) {
	id := primitive.NewObjectID().Hex()
	if _, err := s.coll.InsertOne(ctx, documentToBSON(id, doc)); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Replace(ctx context.Context, id string, doc *value.Object) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{model.FieldID: id},
		documentToBSON(id, doc),
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *Store) Update(ctx context.Context, id string, fields *value.Object) error {
	set := make(bson.D, 0, fields.Len())
	for _, e := range objectToBSON(fields) {
		if e.Key != model.FieldID {
			set = append(set, e)
		}
	}
	if len(set) == 0 {
		_, err := s.FindByID(ctx, id)
		return err
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{model.FieldID: id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrDocumentNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{model.FieldID: id})
	return err
}

// StoreFactory opens Stores on collections of one database.
type StoreFactory struct {
	db  *mongo.Database
	log logger.Logger
}

func NewStoreFactory(db *mongo.Database, log logger.Logger) *StoreFactory {
	return &StoreFactory{db: db, log: log.WithComponent("mongo-store")}
}

// Open never fails: MongoDB creates the collection on first write.
func (f *StoreFactory) Open(collection string) repository.Store {
	return NewStore(f.db.Collection(collection), f.log)
}
