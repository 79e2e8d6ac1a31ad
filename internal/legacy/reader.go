package legacy

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Stream is a lazy, finite, forward-only sequence of legacy records in
// natural storage order. It is not restartable once partially consumed; a
// failed run restarts from the beginning. Count reports records consumed so
// far, for progress logging.
type Stream[T any] interface {
	Next(ctx context.Context) bool
	Record() T
	Err() error
	Count() int
	Close(ctx context.Context) error
}

// Source yields one Stream per legacy collection. The concrete
// implementation is MongoSource; tests use SliceStream-backed fakes.
type Source interface {
	Users(ctx context.Context) (Stream[*User], error)
	Transactions(ctx context.Context) (Stream[*Transaction], error)
	Subscriptions(ctx context.Context) (Stream[*Subscription], error)
	Referrals(ctx context.Context) (Stream[*Referral], error)
	Partners(ctx context.Context) (Stream[*Partner], error)
	PartnerTransactions(ctx context.Context) (Stream[*PartnerTransaction], error)
	Close(ctx context.Context) error
}

// MongoSource reads the monolithic legacy store.
type MongoSource struct {
	client *mongo.Client
	db     *mongo.Database
}

// dialTimeout bounds each individual connect attempt; the overall dial is
// retried with exponential backoff before the run starts. Nothing is
// retried once the run is underway.
const dialTimeout = 10 * time.Second

// Open connects to the legacy store and verifies the connection with a
// ping. The database name is taken from the connection string's path; dbName
// overrides it when non-empty.
func Open(ctx context.Context, uri, dbName string) (*MongoSource, error) {
	var client *mongo.Client
	op := func() error {
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()

		c, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		if err := c.Ping(dialCtx, nil); err != nil {
			_ = c.Disconnect(dialCtx)
			return err
		}
		client = c
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("connect legacy store: %w", err)
	}

	if dbName == "" {
		dbName = "legacy"
	}
	return &MongoSource{client: client, db: client.Database(dbName)}, nil
}

// Close releases the client. Safe to call on the failure path.
func (s *MongoSource) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func openStream[T any](ctx context.Context, db *mongo.Database, collection string) (Stream[T], error) {
	cur, err := db.Collection(collection).Find(ctx, bson.D{}, options.Find().SetNoCursorTimeout(true))
	if err != nil {
		return nil, fmt.Errorf("open cursor %s: %w", collection, err)
	}
	return &mongoStream[T]{cur: cur}, nil
}

// Users streams the legacy users collection, products and ratings embedded.
func (s *MongoSource) Users(ctx context.Context) (Stream[*User], error) {
	return openStream[*User](ctx, s.db, "users")
}

func (s *MongoSource) Transactions(ctx context.Context) (Stream[*Transaction], error) {
	return openStream[*Transaction](ctx, s.db, "transactions")
}

func (s *MongoSource) Subscriptions(ctx context.Context) (Stream[*Subscription], error) {
	return openStream[*Subscription](ctx, s.db, "subscriptions")
}

func (s *MongoSource) Referrals(ctx context.Context) (Stream[*Referral], error) {
	return openStream[*Referral](ctx, s.db, "referrals")
}

func (s *MongoSource) Partners(ctx context.Context) (Stream[*Partner], error) {
	return openStream[*Partner](ctx, s.db, "partners")
}

func (s *MongoSource) PartnerTransactions(ctx context.Context) (Stream[*PartnerTransaction], error) {
	return openStream[*PartnerTransaction](ctx, s.db, "partnertransactions")
}

// mongoStream adapts a *mongo.Cursor to Stream. A decode or cursor error
// ends the stream; Err surfaces it to the caller, which treats it as fatal.
type mongoStream[T any] struct {
	cur   *mongo.Cursor
	rec   T
	count int
	err   error
}

func (m *mongoStream[T]) Next(ctx context.Context) bool {
	if m.err != nil {
		return false
	}
	if !m.cur.Next(ctx) {
		m.err = m.cur.Err()
		return false
	}
	var rec T
	if err := m.cur.Decode(&rec); err != nil {
		m.err = fmt.Errorf("decode record %d: %w", m.count, err)
		return false
	}
	m.rec = rec
	m.count++
	return true
}

func (m *mongoStream[T]) Record() T  { return m.rec }
func (m *mongoStream[T]) Err() error { return m.err }
func (m *mongoStream[T]) Count() int { return m.count }

func (m *mongoStream[T]) Close(ctx context.Context) error {
	return m.cur.Close(ctx)
}
