package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noticeboard/notice-board-api/internal/core/domain"
	"github.com/noticeboard/notice-board-api/internal/core/ports"
)

const broadcastsCollection = "broadcasts"

// sortFields maps caller-facing sort names to document field names. Unknown
// names fall back to created_at.
var sortFields = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"expiryDate": "expiry_date",
	"title":      "title",
	"urgency":    "urgency",
	"priority":   "priority",
	"views":      "views",
}

// BroadcastRepository persists broadcasts in MongoDB.
type BroadcastRepository struct {
	coll *mongo.Collection
}

func NewBroadcastRepository(db *mongo.Database) *BroadcastRepository {
	return &BroadcastRepository{coll: db.Collection(broadcastsCollection)}
}

type broadcastDoc struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty"`
	Title      string                 `bson:"title"`
	Message    string                 `bson:"message"`
	Urgency    domain.Urgency         `bson:"urgency"`
	Type       domain.BroadcastType   `bson:"type"`
	Tags       []string               `bson:"tags"`
	CreatedBy  string                 `bson:"created_by"`
	ExpiryDate *time.Time             `bson:"expiry_date,omitempty"`
	Status     domain.BroadcastStatus `bson:"status"`
	Views      int64                  `bson:"views"`
	Priority   int                    `bson:"priority"`
	CreatedAt  time.Time              `bson:"created_at"`
	UpdatedAt  time.Time              `bson:"updated_at"`
}

func (d broadcastDoc) toDomain() *domain.Broadcast {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Broadcast{
		ID:         d.ID.Hex(),
		Title:      d.Title,
		Message:    d.Message,
		Urgency:    d.Urgency,
		Type:       d.Type,
		Tags:       tags,
		CreatedBy:  d.CreatedBy,
		ExpiryDate: d.ExpiryDate,
		Status:     d.Status,
		Views:      d.Views,
		Priority:   d.Priority,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (r *BroadcastRepository) Create(ctx context.Context, b *domain.Broadcast) (*domain.Broadcast, error) {
	doc := broadcastDoc{
		Title:      b.Title,
		Message:    b.Message,
		Urgency:    b.Urgency,
		Type:       b.Type,
		Tags:       b.Tags,
		CreatedBy:  b.CreatedBy,
		ExpiryDate: b.ExpiryDate,
		Status:     b.Status,
		Views:      b.Views,
		Priority:   b.Priority,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert broadcast: %w", err)
	}

	created := *b
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *BroadcastRepository) FindByID(ctx context.Context, id string) (*domain.Broadcast, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrBroadcastNotFound
	}

	var doc broadcastDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBroadcastNotFound
		}
		return nil, fmt.Errorf("find broadcast: %w", err)
	}
	return doc.toDomain(), nil
}

// GetAndIncrementViews bumps views with a server-side $inc and returns the
// updated document in one round trip. Concurrent readers each observe a
// monotonically increasing count; unrelated fields are never touched, and
// updated_at intentionally does not move on a read.
func (r *BroadcastRepository) GetAndIncrementViews(ctx context.Context, id string) (*domain.Broadcast, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrBroadcastNotFound
	}

	var doc broadcastDoc
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBroadcastNotFound
		}
		return nil, fmt.Errorf("increment views: %w", err)
	}
	return doc.toDomain(), nil
}

// Update writes exactly the fields present in update plus updated_at. An
// explicit null expiry date removes the field.
func (r *BroadcastRepository) Update(ctx context.Context, id string, update ports.BroadcastUpdate) (*domain.Broadcast, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrBroadcastNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Message != nil {
		set["message"] = *update.Message
	}
	if update.Urgency != nil {
		set["urgency"] = *update.Urgency
	}
	if update.Type != nil {
		set["type"] = *update.Type
	}
	if update.Tags != nil {
		set["tags"] = *update.Tags
	}
	if update.CreatedBy != nil {
		set["created_by"] = *update.CreatedBy
	}
	if update.ExpiryDate.Set {
		if update.ExpiryDate.Time != nil {
			set["expiry_date"] = *update.ExpiryDate.Time
		} else {
			unset["expiry_date"] = ""
		}
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Views != nil {
		set["views"] = *update.Views
	}
	if update.Priority != nil {
		set["priority"] = *update.Priority
	}

	updateDoc := bson.M{"$set": set}
	if len(unset) > 0 {
		updateDoc["$unset"] = unset
	}

	var doc broadcastDoc
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		updateDoc,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBroadcastNotFound
		}
		return nil, fmt.Errorf("update broadcast: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BroadcastRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrBroadcastNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete broadcast: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBroadcastNotFound
	}
	return nil
}

// List executes the filtered, sorted, paginated query and counts the full
// match set. Exact filters combine as AND; the search term is an OR of
// case-insensitive substring matches across title, message and tags.
func (r *BroadcastRepository) List(ctx context.Context, filter ports.ListBroadcastsFilter) ([]*domain.Broadcast, int64, error) {
	query := bson.M{"status": filter.Status}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Urgency != "" {
		query["urgency"] = filter.Urgency
	}
	if filter.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"message": re},
			bson.M{"tags": re},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count broadcasts: %w", err)
	}

	opts := options.Find().
		SetSort(parseSort(filter.Sort)).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list broadcasts: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]*domain.Broadcast, 0, filter.Limit)
	for cursor.Next(ctx) {
		var doc broadcastDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode broadcast: %w", err)
		}
		items = append(items, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("list broadcasts: %w", err)
	}

	return items, total, nil
}

// Stats runs a single $facet aggregation so every figure comes from one
// consistent pass over the collection.
func (r *BroadcastRepository) Stats(ctx context.Context) (*ports.BroadcastStats, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$facet", Value: bson.M{
			"total": bson.A{
				bson.M{"$count": "n"},
			},
			"by_urgency": bson.A{
				bson.M{"$group": bson.M{"_id": "$urgency", "n": bson.M{"$sum": 1}}},
			},
			"by_type": bson.A{
				bson.M{"$group": bson.M{"_id": "$type", "n": bson.M{"$sum": 1}}},
			},
			"active": bson.A{
				bson.M{"$match": bson.M{"status": domain.StatusActive}},
				bson.M{"$count": "n"},
			},
			"recent": bson.A{
				bson.M{"$sort": bson.M{"created_at": -1}},
				bson.M{"$limit": 5},
				bson.M{"$project": bson.M{"title": 1, "created_at": 1, "urgency": 1}},
			},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("stats aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	type countDoc struct {
		N int64 `bson:"n"`
	}
	type groupDoc struct {
		ID string `bson:"_id"`
		N  int64  `bson:"n"`
	}
	type recentDoc struct {
		Title     string         `bson:"title"`
		CreatedAt time.Time      `bson:"created_at"`
		Urgency   domain.Urgency `bson:"urgency"`
	}
	var facets []struct {
		Total     []countDoc  `bson:"total"`
		ByUrgency []groupDoc  `bson:"by_urgency"`
		ByType    []groupDoc  `bson:"by_type"`
		Active    []countDoc  `bson:"active"`
		Recent    []recentDoc `bson:"recent"`
	}
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}

	stats := emptyStats()
	if len(facets) == 0 {
		return stats, nil
	}

	f := facets[0]
	if len(f.Total) > 0 {
		stats.Total = f.Total[0].N
	}
	if len(f.Active) > 0 {
		stats.Active = f.Active[0].N
	}
	for _, g := range f.ByUrgency {
		stats.ByUrgency[g.ID] = g.N
	}
	for _, g := range f.ByType {
		stats.ByType[g.ID] = g.N
	}
	for _, rec := range f.Recent {
		stats.Recent = append(stats.Recent, ports.RecentBroadcast{
			Title:     rec.Title,
			CreatedAt: rec.CreatedAt,
			Urgency:   rec.Urgency,
		})
	}

	return stats, nil
}

// EnsureIndexes creates the secondary indexes backing the list filters.
func (r *BroadcastRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiry_date", Value: 1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "urgency", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// emptyStats returns a zero-valued aggregate with every enum key present, so
// an empty collection still reports each bucket as 0.
func emptyStats() *ports.BroadcastStats {
	return &ports.BroadcastStats{
		ByUrgency: map[string]int64{
			string(domain.UrgencyLow):    0,
			string(domain.UrgencyMedium): 0,
			string(domain.UrgencyHigh):   0,
		},
		ByType: map[string]int64{
			string(domain.TypeAnnouncement): 0,
			string(domain.TypeAlert):        0,
			string(domain.TypeMaintenance):  0,
			string(domain.TypeUpdate):       0,
			string(domain.TypeNews):         0,
			string(domain.TypeMeeting):      0,
		},
		Recent: []ports.RecentBroadcast{},
	}
}

// parseSort turns "-createdAt" style sort names into a Mongo sort document.
func parseSort(sort string) bson.D {
	dir := 1
	if strings.HasPrefix(sort, "-") {
		dir = -1
		sort = sort[1:]
	}
	field, ok := sortFields[sort]
	if !ok {
		field, dir = "created_at", -1
	}
	return bson.D{{Key: field, Value: dir}}
}
