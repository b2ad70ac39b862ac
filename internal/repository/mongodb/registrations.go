package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/domain"
	"eventdesk.io/eventdesk/internal/repository"
)

// RegistrationRepository persists the registration ledger.
type RegistrationRepository struct {
	coll *mongo.Collection
}

func (r *RegistrationRepository) Insert(ctx context.Context, reg *domain.Registration) error {
	_, err := r.coll.InsertOne(ctx, reg)
	return translate(err, "registration", reg.ID)
}

func (r *RegistrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": reg.ID}, reg)
	if err != nil {
		return translate(err, "registration", reg.ID)
	}
	if res.MatchedCount == 0 {
		return notFound("registration", reg.ID)
	}
	return nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*domain.Registration, error) {
	var reg domain.Registration
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&reg)
	if err != nil {
		return nil, translate(err, "registration", id)
	}
	return &reg, nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound("registration", id)
	}
	return nil
}

func (r *RegistrationRepository) List(ctx context.Context, f repository.RegistrationFilter) ([]*domain.Registration, int64, error) {
	filter := bson.M{}
	if !f.Scope.Unrestricted {
		filter["event"] = bson.M{"$in": scopeIDs(f.Scope.EventIDs)}
	}
	if f.EventID != "" {
		filter["event"] = f.EventID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		re := searchRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"email": re},
			bson.M{"confirmationNumber": re},
		}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sortField := "registeredAt"
	switch f.SortBy {
	case "email", "status":
		sortField = f.SortBy
	}
	order := -1
	if f.SortOrder == repository.SortAsc {
		order = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: order}})
	applyPagination(opts, f.Page, f.Limit)

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var regs []*domain.Registration
	if err := cur.All(ctx, &regs); err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *RegistrationRepository) HasActiveByEmail(ctx context.Context, eventID, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"event":  eventID,
		"email":  email,
		"status": bson.M{"$ne": domain.RegistrationCancelled},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RegistrationRepository) CountByStatus(ctx context.Context, eventID string, statuses ...domain.RegistrationStatus) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{
		"event":  eventID,
		"status": bson.M{"$in": statuses},
	})
}

func (r *RegistrationRepository) BulkSetStatus(ctx context.Context, ids []string, status domain.RegistrationStatus) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": scopeIDs(ids)}},
		bson.M{"$set": bson.M{
			"status":       status,
			"isWaitlisted": status == domain.RegistrationWaitlisted,
			"updatedAt":    time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *RegistrationRepository) Stats(ctx context.Context, scope access.Scope) (*repository.StatusCounts, error) {
	match := bson.M{}
	if !scope.Unrestricted {
		match["event"] = bson.M{"$in": scopeIDs(scope.EventIDs)}
	}
	cur, err := r.coll.Aggregate(ctx, bson.A{
		bson.M{"$match": match},
		bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status domain.RegistrationStatus `bson:"_id"`
		Count  int64                     `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := &repository.StatusCounts{}
	for _, row := range rows {
		counts.Total += row.Count
		switch row.Status {
		case domain.RegistrationConfirmed:
			counts.Confirmed = row.Count
		case domain.RegistrationPending:
			counts.Pending = row.Count
		case domain.RegistrationWaitlisted:
			counts.Waitlisted = row.Count
		case domain.RegistrationCancelled:
			counts.Cancelled = row.Count
		}
	}
	return counts, nil
}

func (r *RegistrationRepository) TopEvents(ctx context.Context, scope access.Scope, limit int) ([]repository.EventCount, error) {
	match := bson.M{
		"status": bson.M{"$in": []string{
			string(domain.RegistrationConfirmed),
			string(domain.RegistrationPending),
		}},
	}
	if !scope.Unrestricted {
		match["event"] = bson.M{"$in": scopeIDs(scope.EventIDs)}
	}
	pipeline := bson.A{
		bson.M{"$match": match},
		bson.M{"$group": bson.M{"_id": "$event", "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": limit})
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		EventID string `bson:"_id"`
		Count   int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]repository.EventCount, len(rows))
	for i, row := range rows {
		out[i] = repository.EventCount{EventID: row.EventID, Count: row.Count}
	}
	return out, nil
}
