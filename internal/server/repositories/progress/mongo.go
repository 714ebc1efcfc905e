package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "readingprogresses"

type progressDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	User        primitive.ObjectID `bson:"user"`
	Book        primitive.ObjectID `bson:"book"`
	CurrentPage int                `bson:"currentPage"`
	TotalPages  int                `bson:"totalPages"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *progressDocument) toModel() *models.ReadingProgress {
	return &models.ReadingProgress{
		ID:          d.ID.Hex(),
		UserID:      d.User.Hex(),
		BookID:      d.Book.Hex(),
		CurrentPage: d.CurrentPage,
		TotalPages:  d.TotalPages,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the (user, book) uniqueness index the upsert relies on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "book", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "completed", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("db error: create progress indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Upsert(ctx context.Context, p *models.ReadingProgress) (*models.ReadingProgress, error) {
	userID, bookID, ok := objectIDs(p.UserID, p.BookID)
	if !ok {
		return nil, common.NewValidationError("bookId", "invalid id")
	}

	now := time.Now().UTC()
	filter := bson.M{"user": userID, "book": bookID}
	update := bson.M{
		"$set": bson.M{
			"currentPage": p.CurrentPage,
			"totalPages":  p.TotalPages,
			"completed":   p.Completed,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc progressDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Two concurrent first writes: the loser retries as a plain update.
		err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) Get(ctx context.Context, userID, bookID string) (*models.ReadingProgress, error) {
	uid, bid, ok := objectIDs(userID, bookID)
	if !ok {
		return nil, common.ErrorNotFound
	}

	var doc progressDocument
	if err := r.coll.FindOne(ctx, bson.M{"user": uid, "book": bid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string) ([]models.ReadingProgress, error) {
	result := make([]models.ReadingProgress, 0)
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return result, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"user": uid}, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var docs []progressDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	for i := range docs {
		result = append(result, *docs[i].toModel())
	}
	return result, nil
}

func (r *MongoRepository) CountCompleted(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"completed": true})
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func objectIDs(userID, bookID string) (primitive.ObjectID, primitive.ObjectID, bool) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	bid, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return uid, bid, true
}
