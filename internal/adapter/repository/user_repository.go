package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const subscriptionPrefix = "subscription."

type userDocument struct {
	ID           string              `bson:"_id"`
	Subscription entity.Subscription `bson:"subscription"`
}

type userRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewUserRepository creates a user profile repository backed by a Mongo collection
func NewUserRepository(collection *mongo.Collection, logger *zap.Logger) repository.UserRepository {
	return &userRepository{
		collection: collection,
		logger:     logger,
	}
}

func (r *userRepository) MergeSubscription(ctx context.Context, userID string, sub entity.Subscription) error {
	filter, update := mergeSubscriptionQuery(userID, sub)

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to merge subscription for user %s: %w", userID, err)
	}

	r.logger.Debug("Merged user subscription",
		zap.String("user_id", userID),
		zap.String("reference", sub.Reference),
		zap.Int64("matched", result.MatchedCount),
		zap.Bool("created", result.UpsertedCount > 0),
	)
	return nil
}

func (r *userRepository) FindExpiredActive(ctx context.Context, now time.Time) ([]entity.ExpiredSubscription, error) {
	cursor, err := r.collection.Find(ctx, expiredProfilesFilter(now),
		options.Find().SetProjection(bson.M{"subscription": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to query expired profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode expired profiles: %w", err)
	}

	expired := make([]entity.ExpiredSubscription, 0, len(docs))
	for _, doc := range docs {
		expired = append(expired, entity.ExpiredSubscription{
			ID:        doc.ID,
			UserID:    doc.ID,
			PlanID:    doc.Subscription.PlanID,
			ExpiresAt: doc.Subscription.ExpiresAt,
		})
	}
	return expired, nil
}

func (r *userRepository) GetSubscription(ctx context.Context, userID string) (*entity.Subscription, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"subscription": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription for user %s: %w", userID, err)
	}
	return &doc.Subscription, nil
}

func (r *userRepository) ExpireSubscription(ctx context.Context, userID string, now time.Time) (bool, error) {
	filter, update := expireProfileQuery(userID, now)

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to expire subscription for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		r.logger.Info("Profile no longer active past expiry, left unchanged",
			zap.String("user_id", userID))
		return false, nil
	}
	return true, nil
}

func mergeSubscriptionQuery(userID string, sub entity.Subscription) (bson.M, bson.M) {
	return bson.M{"_id": userID},
		bson.M{"$set": subscriptionFields(subscriptionPrefix, sub)}
}

func expiredProfilesFilter(now time.Time) bson.M {
	return bson.M{
		subscriptionPrefix + "status":    entity.SubscriptionStatusActive,
		subscriptionPrefix + "expiresAt": bson.M{"$lte": now},
	}
}

// expireProfileQuery re-checks the sweep predicate so a renewal that lands
// after the snapshot query is not expired.
func expireProfileQuery(userID string, now time.Time) (bson.M, bson.M) {
	filter := expiredProfilesFilter(now)
	filter["_id"] = userID
	return filter,
		bson.M{
			"$set": bson.M{subscriptionPrefix + "status": entity.SubscriptionStatusExpired},
			"$unset": bson.M{
				subscriptionPrefix + "planId":   "",
				subscriptionPrefix + "planName": "",
			},
		}
}
