package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chucky-1/ledgerbot/internal/model"
)

const sessionsCollection = "sessions"

// SessionsMongo shares sessions between several bot processes
type SessionsMongo struct {
	coll *mongo.Collection
	ttl  time.Duration
}

func NewSessionsMongo(cli *mongo.Client, database string, ttl time.Duration) *SessionsMongo {
	return &SessionsMongo{
		coll: cli.Database(database).Collection(sessionsCollection),
		ttl:  ttl,
	}
}

// ConnectMongo connects a client and checks that the server answers
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("repository.ConnectMongo, connect: %w", err)
	}
	if err = cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, fmt.Errorf("repository.ConnectMongo, ping: %w", err)
	}
	return cli, nil
}

// EnsureIndexes creates the unique user index and, when ttl is set, the server side expiry index
func (m *SessionsMongo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if m.ttl > 0 {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(expireAfterSeconds(m.ttl)),
		})
	}
	if _, err := m.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("repository.SessionsMongo.EnsureIndexes: %w", err)
	}
	return nil
}

// expireAfterSeconds rounds ttl up to whole seconds, zero would make mongo drop documents at once
func expireAfterSeconds(ttl time.Duration) int32 {
	seconds := int32((ttl + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

func (m *SessionsMongo) Get(ctx context.Context, userID int64) (*model.Session, error) {
	filter := bson.D{{Key: "user_id", Value: userID}}
	if m.ttl > 0 {
		filter = append(filter, bson.E{Key: "updated_at", Value: bson.D{{Key: "$gt", Value: m.cutoff()}}})
	}
	var session model.Session
	err := m.coll.FindOne(ctx, filter).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository.SessionsMongo.Get: %w", err)
	}
	return &session, nil
}

func (m *SessionsMongo) Set(ctx context.Context, session *model.Session) error {
	s := *session
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	_, err := m.coll.ReplaceOne(ctx, bson.D{{Key: "user_id", Value: s.UserID}}, &s, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("repository.SessionsMongo.Set: %w", err)
	}
	return nil
}

func (m *SessionsMongo) Clear(ctx context.Context, userID int64) error {
	if _, err := m.coll.DeleteOne(ctx, bson.D{{Key: "user_id", Value: userID}}); err != nil {
		return fmt.Errorf("repository.SessionsMongo.Clear: %w", err)
	}
	return nil
}

// Purge removes what the TTL monitor has not removed yet, it runs only once a minute on the server
func (m *SessionsMongo) Purge(ctx context.Context) (int, error) {
	if m.ttl <= 0 {
		return 0, nil
	}
	result, err := m.coll.DeleteMany(ctx, bson.D{{Key: "updated_at", Value: bson.D{{Key: "$lte", Value: m.cutoff()}}}})
	if err != nil {
		return 0, fmt.Errorf("repository.SessionsMongo.Purge: %w", err)
	}
	return int(result.DeletedCount), nil
}

func (m *SessionsMongo) cutoff() time.Time {
	return time.Now().UTC().Add(-m.ttl)
}
