package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/franchise/internal/domain/models"
)

// Journal defines the storage of payout run records.
type Journal interface {
	SaveRun(ctx context.Context, run models.PayoutRun) error
	ListRuns(ctx context.Context, tenant, month string, limit int64) ([]models.PayoutRun, error)
}

// MongoDBRepository implements Journal for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "payout_runs",
	}, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveRun stores a payout run record.
func (r *MongoDBRepository) SaveRun(ctx context.Context, run models.PayoutRun) error {
	if _, err := r.collection().InsertOne(ctx, run); err != nil {
		return fmt.Errorf("failed to insert payout run: %w", err)
	}
	return nil
}

// ListRuns returns the latest runs of a tenant, newest first. An empty month
// returns runs of every month.
func (r *MongoDBRepository) ListRuns(ctx context.Context, tenant, month string, limit int64) ([]models.PayoutRun, error) {
	filter := bson.M{"tenant": tenant}
	if month != "" {
		filter["month"] = month
	}
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query payout runs: %w", err)
	}
	defer cursor.Close(ctx)

	var runs []models.PayoutRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("failed to decode payout runs: %w", err)
	}
	return runs, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// NopJournal discards runs when MongoDB is not configured.
type NopJournal struct{}

// SaveRun implements Journal.
func (NopJournal) SaveRun(context.Context, models.PayoutRun) error { return nil }

// ListRuns implements Journal.
func (NopJournal) ListRuns(context.Context, string, string, int64) ([]models.PayoutRun, error) {
	return nil, nil
}
