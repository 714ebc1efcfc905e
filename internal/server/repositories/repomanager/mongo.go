package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/booklib/internal/server/repositories/books"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/progress"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultMongoDatabase is used when the connection string names no database.
const DefaultMongoDatabase = "booklib"

type MongoRepositoryManager struct {
	client   *mongo.Client
	users    *users.MongoRepository
	progress *progress.MongoRepository
	books    *books.MongoRepository
}

var mongoConnect = func(ctx context.Context, opts ...*options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(ctx, opts...)
}

// NewMongoRepositoryManager connects, pings the primary and creates the
// collection indexes the repositories rely on.
func NewMongoRepositoryManager(ctx context.Context, uri string) (*MongoRepositoryManager, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	name := cs.Database
	if name == "" {
		name = DefaultMongoDatabase
	}

	client, err := mongoConnect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m, err := newMongoRepositoryManager(ctx, client, client.Database(name))
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

func newMongoRepositoryManager(ctx context.Context, client *mongo.Client, db *mongo.Database) (*MongoRepositoryManager, error) {
	m := &MongoRepositoryManager{
		client:   client,
		users:    users.NewMongoRepository(db),
		progress: progress.NewMongoRepository(db),
		books:    books.NewMongoRepository(db),
	}

	for _, ix := range []interface {
		EnsureIndexes(context.Context) error
	}{m.users, m.progress, m.books} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("index error: %w", err)
		}
	}
	return m, nil
}

func (m *MongoRepositoryManager) Users() users.Repository       { return m.users }
func (m *MongoRepositoryManager) Progress() progress.Repository { return m.progress }
func (m *MongoRepositoryManager) Books() books.Repository       { return m.books }

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
