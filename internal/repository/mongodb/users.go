package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventdesk.io/eventdesk/internal/domain"
)

// UserRepository persists administrative accounts. Emails are stored
// lowercase by the service layer, so equality lookups are sufficient.
type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) Insert(ctx context.Context, u *domain.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	return translate(err, "user", u.Email)
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return translate(err, "user", u.ID)
	}
	if res.MatchedCount == 0 {
		return notFound("user", u.ID)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		return nil, translate(err, "user", id)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		return nil, translate(err, "user", email)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var users []*domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound("user", id)
	}
	return nil
}
