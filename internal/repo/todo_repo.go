package repo

import (
	"context"
	"time"

	dom "github.com/maleehakhalid00-a11y/ToDo-App/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TodoRepo provides todo persistence. Every query is filtered by the owner id:
// a todo owned by someone else behaves exactly like a missing one
// (mongo.ErrNoDocuments).
type TodoRepo interface {
	Create(ctx context.Context, t dom.Todo) (dom.Todo, error)
	GetByID(ctx context.Context, userID, id primitive.ObjectID) (dom.Todo, error)
	List(ctx context.Context, userID primitive.ObjectID) ([]dom.Todo, error)
	Update(ctx context.Context, userID, id primitive.ObjectID, patch TodoPatch) (dom.Todo, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
}

// TodoPatch carries the fields an update may change; nil = leave unchanged.
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

type MongoTodoRepo struct {
	col *mongo.Collection
}

func NewMongoTodoRepo(db *mongo.Database) *MongoTodoRepo {
	return &MongoTodoRepo{col: db.Collection("todos")}
}

func (r *MongoTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, t); err != nil {
		return dom.Todo{}, err
	}
	return t, nil
}

func (r *MongoTodoRepo) GetByID(ctx context.Context, userID, id primitive.ObjectID) (dom.Todo, error) {
	var t dom.Todo
	err := r.col.FindOne(ctx, bson.M{"_id": id, "user": userID}).Decode(&t)
	return t, err
}

func (r *MongoTodoRepo) List(ctx context.Context, userID primitive.ObjectID) ([]dom.Todo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var list []dom.Todo
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Update applies only the provided fields in a single atomic document write
// and returns the post-update record. Fields the caller did not provide are
// never written, so a concurrent update to another field cannot be reverted.
func (r *MongoTodoRepo) Update(ctx context.Context, userID, id primitive.ObjectID, patch TodoPatch) (dom.Todo, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t dom.Todo
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "user": userID}, bson.M{"$set": set}, opts).Decode(&t)
	return t, err
}

func (r *MongoTodoRepo) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
