package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventdesk.io/eventdesk/internal/domain"
	"eventdesk.io/eventdesk/internal/repository"
)

// EventRepository persists the event catalog.
type EventRepository struct {
	coll *mongo.Collection
}

func (r *EventRepository) Insert(ctx context.Context, ev *domain.Event) error {
	_, err := r.coll.InsertOne(ctx, ev)
	return translate(err, "event", ev.ID)
}

func (r *EventRepository) Update(ctx context.Context, ev *domain.Event) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": ev.ID}, ev)
	if err != nil {
		return translate(err, "event", ev.ID)
	}
	if res.MatchedCount == 0 {
		return notFound("event", ev.ID)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	var ev domain.Event
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ev)
	if err != nil {
		return nil, translate(err, "event", id)
	}
	return &ev, nil
}

func (r *EventRepository) FindBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	var ev domain.Event
	err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&ev)
	if err != nil {
		return nil, translate(err, "event", slug)
	}
	return &ev, nil
}

func (r *EventRepository) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	filter := bson.M{"slug": slug}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound("event", id)
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context, f repository.EventFilter) ([]*domain.Event, int64, error) {
	filter := bson.M{}
	if !f.IncludeArchived {
		filter["isArchived"] = bson.M{"$ne": true}
	}
	if !f.Scope.Unrestricted {
		filter["_id"] = bson.M{"$in": scopeIDs(f.Scope.EventIDs)}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.EventType != "" {
		filter["eventType"] = f.EventType
	}
	if f.Featured != nil {
		filter["featured"] = *f.Featured
	}
	if f.Search != "" {
		re := searchRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"shortDescription": re},
			bson.M{"tags": re},
		}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sortField := "eventDate"
	switch f.SortBy {
	case "title", "createdAt":
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
	var events []*domain.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *EventRepository) ListPublic(ctx context.Context, f repository.PublicEventFilter) ([]*domain.Event, error) {
	filter := bson.M{
		"status":   domain.EventPublished,
		"isPublic": true,
	}
	if f.FeaturedOnly {
		filter["featured"] = true
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.UpcomingOnly {
		filter["eventDate"] = bson.M{"$gte": f.Now}
	}

	order := -1
	if f.SortAsc {
		order = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "eventDate", Value: order}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var events []*domain.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"analytics.views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound("event", id)
	}
	return nil
}

func (r *EventRepository) Stats(ctx context.Context, now time.Time) (*repository.EventStats, error) {
	published := bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$status", "published"}}, 1, 0,
	}}
	draft := bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$status", "draft"}}, 1, 0,
	}}
	upcoming := bson.M{"$cond": bson.A{
		bson.M{"$and": bson.A{
			bson.M{"$eq": bson.A{"$status", "published"}},
			bson.M{"$gte": bson.A{"$eventDate", now}},
		}}, 1, 0,
	}}

	cur, err := r.coll.Aggregate(ctx, bson.A{
		bson.M{"$group": bson.M{
			"_id":         nil,
			"total":       bson.M{"$sum": 1},
			"published":   bson.M{"$sum": published},
			"draft":       bson.M{"$sum": draft},
			"upcoming":    bson.M{"$sum": upcoming},
			"totalViews":  bson.M{"$sum": "$analytics.views"},
			"totalShares": bson.M{"$sum": "$analytics.shares"},
		}},
	})
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Total       int64 `bson:"total"`
		Published   int64 `bson:"published"`
		Draft       int64 `bson:"draft"`
		Upcoming    int64 `bson:"upcoming"`
		TotalViews  int64 `bson:"totalViews"`
		TotalShares int64 `bson:"totalShares"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	stats := &repository.EventStats{}
	if len(rows) > 0 {
		stats.Total = rows[0].Total
		stats.Published = rows[0].Published
		stats.Draft = rows[0].Draft
		stats.Upcoming = rows[0].Upcoming
		stats.TotalViews = rows[0].TotalViews
		stats.TotalShares = rows[0].TotalShares
	}
	return stats, nil
}

func (r *EventRepository) CategoryBreakdown(ctx context.Context) ([]repository.CategoryCount, error) {
	cur, err := r.coll.Aggregate(ctx, bson.A{
		bson.M{"$match": bson.M{"status": domain.EventPublished}},
		bson.M{"$group": bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Category domain.EventCategory `bson:"_id"`
		Count    int64                `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]repository.CategoryCount, len(rows))
	for i, row := range rows {
		out[i] = repository.CategoryCount{Category: row.Category, Count: row.Count}
	}
	return out, nil
}

func scopeIDs(ids []string) bson.A {
	out := make(bson.A, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func applyPagination(opts *options.FindOptions, page, limit int) {
	if limit <= 0 {
		return
	}
	if page < 1 {
		page = 1
	}
	opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
}
