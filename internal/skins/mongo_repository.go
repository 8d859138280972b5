package skins

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSkinRepo implements Repository on a MongoDB backend. It shares the
// client owned by the user repository's database handle.
type MongoSkinRepo struct {
	collection *mongo.Collection
	ctxTimeout time.Duration
}

type skinDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Price       int                `bson:"price"`
	Description string             `bson:"description"`
	Reels       []string           `bson:"reels"`
	Sellable    bool               `bson:"sellable"`
}

// NewMongoSkinRepo wires the repository onto the given database and ensures
// the unique name index.
func NewMongoSkinRepo(db *mongo.Database) (*MongoSkinRepo, error) {
	repo := &MongoSkinRepo{
		collection: db.Collection("skins"),
		ctxTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), repo.ctxTimeout)
	defer cancel()
	nameIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("name_unique"),
	}
	if _, err := repo.collection.Indexes().CreateOne(ctx, nameIdx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (doc *skinDoc) toSkin() *Skin {
	reels := doc.Reels
	if reels == nil {
		reels = []string{}
	}
	return &Skin{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Price:       doc.Price,
		Description: doc.Description,
		Reels:       reels,
		Sellable:    doc.Sellable,
	}
}

func docFromSkin(skin *Skin) *skinDoc {
	return &skinDoc{
		Name:        skin.Name,
		Price:       skin.Price,
		Description: skin.Description,
		Reels:       skin.Reels,
		Sellable:    skin.Sellable,
	}
}

func (m *MongoSkinRepo) findOne(filter bson.M) (*Skin, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	var doc skinDoc
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrSkinNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toSkin(), nil
}

// Create implements Repository.
func (m *MongoSkinRepo) Create(skin *Skin) (*Skin, error) {
	doc := docFromSkin(skin)
	doc.ID = primitive.NewObjectID()

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	_, err := m.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrSkinExists
	}
	if err != nil {
		return nil, err
	}
	return doc.toSkin(), nil
}

// GetByID implements Repository.
func (m *MongoSkinRepo) GetByID(id string) (*Skin, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrSkinNotFound
	}
	return m.findOne(bson.M{"_id": oid})
}

// GetByName implements Repository.
func (m *MongoSkinRepo) GetByName(name string) (*Skin, error) {
	return m.findOne(bson.M{"name": name})
}

// Update implements Repository.
func (m *MongoSkinRepo) Update(skin *Skin) (*Skin, error) {
	oid, err := primitive.ObjectIDFromHex(skin.ID)
	if err != nil {
		return nil, ErrSkinNotFound
	}

	doc := docFromSkin(skin)
	doc.ID = oid

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	res, err := m.collection.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrSkinNotFound
	}
	return doc.toSkin(), nil
}

// Delete implements Repository.
func (m *MongoSkinRepo) Delete(id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrSkinNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrSkinNotFound
	}
	return nil
}

// List implements Repository.
func (m *MongoSkinRepo) List() ([]*Skin, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	cursor, err := m.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []skinDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]*Skin, 0, len(docs))
	for i := range docs {
		result = append(result, docs[i].toSkin())
	}
	return result, nil
}
