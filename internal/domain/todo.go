package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Todo is the domain entity for a task.
// Does not depend on Gin, Mongo collections or Redis.
type Todo struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"user"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}
