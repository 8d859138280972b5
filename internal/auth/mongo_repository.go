package auth

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig contains connection settings for the MongoDB user repository.
type MongoConfig struct {
	URI        string // e.g. mongodb://localhost:27017
	Database   string // e.g. casino
	Collection string // e.g. users
}

// MongoUserRepo implements UserRepository on a MongoDB backend.
type MongoUserRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
	ctxTimeout time.Duration
}

// userDoc is the BSON shape of a stored user.
type userDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Username      string             `bson:"username"`
	PasswordHash  string             `bson:"password_hash"`
	Email         string             `bson:"email"`
	Role          string             `bson:"role"`
	Coins         int                `bson:"coins"`
	Wins          int                `bson:"wins"`
	BJWins        int                `bson:"bjwins"`
	Skins         []string           `bson:"skins"`
	LastLoginDate time.Time          `bson:"last_login_date"`
	ResetToken    string             `bson:"reset_token,omitempty"`
	ResetExpiry   time.Time          `bson:"reset_token_expiry,omitempty"`
}

// NewMongoUserRepo establishes the connection and returns the repository.
func NewMongoUserRepo(cfg MongoConfig) (*MongoUserRepo, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "casino"
	}
	if cfg.Collection == "" {
		cfg.Collection = "users"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	repo := &MongoUserRepo{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		ctxTimeout: 5 * time.Second,
	}

	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Database exposes the underlying handle so sibling repositories can share
// the same connection.
func (m *MongoUserRepo) Database() *mongo.Database {
	return m.collection.Database()
}

func (m *MongoUserRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	usernameIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	}
	emailIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	}
	_, err := m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{usernameIdx, emailIdx})
	return err
}

func (doc *userDoc) toUser() *User {
	skins := doc.Skins
	if skins == nil {
		skins = []string{}
	}
	return &User{
		ID:            doc.ID.Hex(),
		Username:      doc.Username,
		PasswordHash:  doc.PasswordHash,
		Email:         doc.Email,
		Role:          Role(doc.Role),
		Coins:         doc.Coins,
		Wins:          doc.Wins,
		BJWins:        doc.BJWins,
		Skins:         skins,
		LastLoginDate: doc.LastLoginDate,
		ResetToken:    doc.ResetToken,
		ResetExpiry:   doc.ResetExpiry,
	}
}

func docFromUser(user *User) *userDoc {
	return &userDoc{
		Username:      strings.ToLower(user.Username),
		PasswordHash:  user.PasswordHash,
		Email:         strings.ToLower(user.Email),
		Role:          string(user.Role),
		Coins:         user.Coins,
		Wins:          user.Wins,
		BJWins:        user.BJWins,
		Skins:         user.Skins,
		LastLoginDate: user.LastLoginDate,
		ResetToken:    user.ResetToken,
		ResetExpiry:   user.ResetExpiry,
	}
}

func (m *MongoUserRepo) findOne(filter bson.M) (*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	var doc userDoc
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toUser(), nil
}

// Create implements UserRepository.
func (m *MongoUserRepo) Create(user *User) (*User, error) {
	doc := docFromUser(user)
	doc.ID = primitive.NewObjectID()

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	_, err := m.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, err
	}

	stored := doc.toUser()
	return stored, nil
}

// GetByUsername implements UserRepository.
func (m *MongoUserRepo) GetByUsername(username string) (*User, error) {
	return m.findOne(bson.M{"username": strings.ToLower(username)})
}

// GetByEmail implements UserRepository.
func (m *MongoUserRepo) GetByEmail(email string) (*User, error) {
	return m.findOne(bson.M{"email": strings.ToLower(email)})
}

// GetByID implements UserRepository.
func (m *MongoUserRepo) GetByID(id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return m.findOne(bson.M{"_id": oid})
}

// GetByResetToken implements UserRepository. Empty tokens never match: a
// blank reset_token means no reset window is active.
func (m *MongoUserRepo) GetByResetToken(token string) (*User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	return m.findOne(bson.M{"reset_token": token})
}

// Update replaces the stored document with the supplied user state.
func (m *MongoUserRepo) Update(user *User) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	doc := docFromUser(user)
	doc.ID = oid

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	res, err := m.collection.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrUserNotFound
	}
	return doc.toUser(), nil
}

// Delete implements UserRepository.
func (m *MongoUserRepo) Delete(id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List implements UserRepository.
func (m *MongoUserRepo) List() ([]*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	cursor, err := m.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]*User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toUser())
	}
	return users, nil
}

// Close terminates the connection.
func (m *MongoUserRepo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
