package books

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "books"

type bookDocument struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Title       string              `bson:"title"`
	Description string              `bson:"description,omitempty"`
	Category    string              `bson:"category"`
	Folder      string              `bson:"folder"`
	Pages       []string            `bson:"pages"`
	CoverImage  string              `bson:"coverImage,omitempty"`
	IsVisible   bool                `bson:"isVisible"`
	CreatedBy   *primitive.ObjectID `bson:"createdBy,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

func (d *bookDocument) toModel() *models.Book {
	b := &models.Book{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Folder:      d.Folder,
		Pages:       nonNilPages(d.Pages),
		CoverImage:  d.CoverImage,
		IsVisible:   d.IsVisible,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.CreatedBy != nil {
		b.CreatedBy = d.CreatedBy.Hex()
	}
	return b
}

func fromModel(b *models.Book) bookDocument {
	d := bookDocument{
		Title:       b.Title,
		Description: b.Description,
		Category:    b.Category,
		Folder:      b.Folder,
		Pages:       nonNilPages(b.Pages),
		CoverImage:  b.CoverImage,
		IsVisible:   b.IsVisible,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(b.ID); err == nil {
		d.ID = oid
	}
	if oid, err := primitive.ObjectIDFromHex(b.CreatedBy); err == nil {
		d.CreatedBy = &oid
	}
	return d
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "isVisible", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("db error: create books indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context, filter models.BookFilter) ([]models.Book, error) {
	q := bson.M{}
	if !filter.IncludeHidden {
		q["isVisible"] = true
	}
	if filter.Category != "" {
		q["category"] = filter.Category
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"description": rx},
			bson.M{"category": rx},
		}
	}
	return r.find(ctx, q, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	var doc bookDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Book, error) {
	oids := make(bson.A, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []models.Book{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *MongoRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now

	doc := fromModel(book)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	book.ID = doc.ID.Hex()
	return book, nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*models.Book, error) {
	book, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(book); err != nil {
		return nil, err
	}
	book.ID = id
	book.UpdatedAt = time.Now().UTC()

	doc := fromModel(book)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, common.ErrorNotFound
	}
	return book, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrorNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	result := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (r *MongoRepository) RenameCategory(ctx context.Context, from, to string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"category": from},
		bson.M{"$set": bson.M{"category": to, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

func (r *MongoRepository) CountVisible(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{"isVisible": true})
}

func (r *MongoRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Book, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var docs []bookDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	result := make([]models.Book, 0, len(docs))
	for i := range docs {
		result = append(result, *docs[i].toModel())
	}
	return result, nil
}
