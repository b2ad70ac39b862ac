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

// ActivityRepository persists audit entries. Append-only by construction:
// no update or delete methods exist.
type ActivityRepository struct {
	coll *mongo.Collection
}

func (r *ActivityRepository) Insert(ctx context.Context, e *domain.ActivityEntry) error {
	_, err := r.coll.InsertOne(ctx, e)
	return translate(err, "activity", e.ID)
}

func (r *ActivityRepository) List(ctx context.Context, f repository.ActivityFilter) ([]*domain.ActivityEntry, int64, error) {
	filter := bson.M{}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.ResourceType != "" {
		filter["resourceType"] = f.ResourceType
	}
	if f.UserID != "" {
		filter["user"] = f.UserID
	}
	if f.Start != nil || f.End != nil {
		created := bson.M{}
		if f.Start != nil {
			created["$gte"] = *f.Start
		}
		if f.End != nil {
			created["$lte"] = *f.End
		}
		filter["createdAt"] = created
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	applyPagination(opts, f.Page, f.Limit)

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var entries []*domain.ActivityEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *ActivityRepository) Stats(ctx context.Context, now time.Time) (*repository.ActivityStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	cur, err := r.coll.Aggregate(ctx, bson.A{
		bson.M{"$facet": bson.M{
			"total": bson.A{bson.M{"$count": "count"}},
			"today": bson.A{
				bson.M{"$match": bson.M{"createdAt": bson.M{"$gte": dayStart}}},
				bson.M{"$count": "count"},
			},
			"actions": bson.A{
				bson.M{"$group": bson.M{"_id": "$action", "count": bson.M{"$sum": 1}}},
				bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
			},
			"resources": bson.A{
				bson.M{"$group": bson.M{"_id": "$resourceType", "count": bson.M{"$sum": 1}}},
				bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
			},
		}},
	})
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
		Today []struct {
			Count int64 `bson:"count"`
		} `bson:"today"`
		Actions []struct {
			Action domain.Action `bson:"_id"`
			Count  int64         `bson:"count"`
		} `bson:"actions"`
		Resources []struct {
			ResourceType domain.ResourceType `bson:"_id"`
			Count        int64               `bson:"count"`
		} `bson:"resources"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &repository.ActivityStats{}
	if len(rows) == 0 {
		return stats, nil
	}
	row := rows[0]
	if len(row.Total) > 0 {
		stats.Total = row.Total[0].Count
	}
	if len(row.Today) > 0 {
		stats.Today = row.Today[0].Count
	}
	for _, a := range row.Actions {
		stats.Actions = append(stats.Actions, repository.ActionCount{Action: a.Action, Count: a.Count})
	}
	for _, res := range row.Resources {
		stats.Resources = append(stats.Resources, repository.ResourceCount{ResourceType: res.ResourceType, Count: res.Count})
	}
	return stats, nil
}
