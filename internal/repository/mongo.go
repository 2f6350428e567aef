package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/isdelr/user-directory/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection is the collection holding user documents.
const UsersCollection = "users"

// MongoUserRepository stores users in a MongoDB collection.
type MongoUserRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewMongoUserRepository creates a repository backed by db.users.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{db: db, coll: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique username index.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create username index: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.coll.InsertOne(ctx, user)
	return translateMongoError(err)
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return models.User{}, translateMongoError(err)
	}
	return user, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, username string, changes models.UserUpdate) (models.User, error) {
	if changes.IsEmpty() {
		return r.FindByUsername(ctx, username)
	}

	set := bson.M{}
	if changes.Username != nil {
		set["username"] = *changes.Username
	}
	if changes.PasswordHash != nil {
		set["password"] = *changes.PasswordHash
	}

	var user models.User
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"username": username},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		return models.User{}, translateMongoError(err)
	}
	return user, nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.coll.FindOneAndDelete(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return models.User{}, translateMongoError(err)
	}
	return user, nil
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	default:
		return err
	}
}
