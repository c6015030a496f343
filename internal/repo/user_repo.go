package repo

import (
	"context"
	"time"

	dom "github.com/maleehakhalid00-a11y/ToDo-App/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepo provides user persistence.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	Create(ctx context.Context, name, email, passwordHash string) (dom.User, error)
}

// MongoUserRepo implements UserRepo with MongoDB.
type MongoUserRepo struct {
	col *mongo.Collection
}

// NewMongoUserRepo returns a new MongoUserRepo.
func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{col: db.Collection("users")}
}

// GetByEmail returns the user by email. Email matching is exact (case-sensitive).
func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	var u dom.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	return u, err
}

// Create inserts a new user and returns it. A duplicate email surfaces as a
// duplicate-key write error from the unique index.
func (r *MongoUserRepo) Create(ctx context.Context, name, email, passwordHash string) (dom.User, error) {
	u := dom.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		return dom.User{}, err
	}
	return u, nil
}
