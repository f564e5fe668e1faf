package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type ledgerDocument struct {
	Reference string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	PlanID    string    `bson:"planId"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

type ledgerRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewLedgerRepository creates a ledger repository over one collection.
// The same implementation serves subscriptions and subscriptions_students.
func NewLedgerRepository(collection *mongo.Collection, logger *zap.Logger) repository.LedgerRepository {
	return &ledgerRepository{
		collection: collection,
		logger:     logger.With(zap.String("collection", collection.Name())),
	}
}

func (r *ledgerRepository) Collection() string {
	return r.collection.Name()
}

// Upsert writes the entry under _id = reference. Redelivery converges on the same document.
func (r *ledgerRepository) Upsert(ctx context.Context, entry entity.LedgerEntry) error {
	filter, update := upsertLedgerQuery(entry)

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert ledger entry %s: %w", entry.Reference, err)
	}

	r.logger.Debug("Upserted ledger entry",
		zap.String("reference", entry.Reference),
		zap.Bool("created", result.UpsertedCount > 0),
	)
	return nil
}

func (r *ledgerRepository) FindExpiredActive(ctx context.Context, now time.Time) ([]entity.ExpiredSubscription, error) {
	cursor, err := r.collection.Find(ctx, expiredLedgerFilter(now),
		options.Find().SetProjection(bson.M{"userId": 1, "planId": 1, "expiresAt": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to query expired ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []ledgerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode expired ledger entries: %w", err)
	}

	expired := make([]entity.ExpiredSubscription, 0, len(docs))
	for _, doc := range docs {
		expired = append(expired, entity.ExpiredSubscription{
			ID:        doc.Reference,
			UserID:    doc.UserID,
			PlanID:    doc.PlanID,
			ExpiresAt: doc.ExpiresAt,
		})
	}
	return expired, nil
}

// ExpireBatch commits all transitions in one transaction. The status and
// expiry guards keep entries renewed since the snapshot untouched.
func (r *ledgerRepository) ExpireBatch(ctx context.Context, references []string, now time.Time) (int64, error) {
	if len(references) == 0 {
		return 0, nil
	}

	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return 0, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	filter, update := expireLedgerBatchQuery(references, now)
	modified, err := session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		result, err := r.collection.UpdateMany(sessCtx, filter, update)
		if err != nil {
			return nil, err
		}
		return result.ModifiedCount, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to expire ledger batch: %w", err)
	}

	count, _ := modified.(int64)
	r.logger.Info("Expired ledger entries",
		zap.Int("requested", len(references)),
		zap.Int64("modified", count),
	)
	return count, nil
}

func upsertLedgerQuery(entry entity.LedgerEntry) (bson.M, bson.M) {
	fields := subscriptionFields("", entry.Subscription)
	fields["email"] = entry.Email
	return bson.M{"_id": entry.Reference}, bson.M{"$set": fields}
}

func expiredLedgerFilter(now time.Time) bson.M {
	return bson.M{
		"status":    entity.SubscriptionStatusActive,
		"expiresAt": bson.M{"$lte": now},
	}
}

func expireLedgerBatchQuery(references []string, now time.Time) (bson.M, bson.M) {
	return bson.M{
			"_id":       bson.M{"$in": references},
			"status":    entity.SubscriptionStatusActive,
			"expiresAt": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{"status": entity.SubscriptionStatusExpired}}
}
