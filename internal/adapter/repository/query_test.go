package repository

import (
	"testing"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	paidAt    = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expiresAt = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
)

func sampleSubscription() entity.Subscription {
	return entity.Subscription{
		Status:    entity.SubscriptionStatusActive,
		PlanID:    "plan_monthly_x",
		PlanName:  "Pro",
		PaidAt:    paidAt,
		ExpiresAt: expiresAt,
		Reference: "ref1",
		Channel:   "card",
		Amount:    50,
		Currency:  "NGN",
		UserID:    "u1",
	}
}

func TestMergeSubscriptionQuery_UsesDottedPaths(t *testing.T) {
	filter, update := mergeSubscriptionQuery("u1", sampleSubscription())

	assert.Equal(t, bson.M{"_id": "u1"}, filter)

	set, ok := update["$set"].(bson.M)
	if assert.True(t, ok) {
		assert.Len(t, set, 10)
		assert.Equal(t, entity.SubscriptionStatusActive, set["subscription.status"])
		assert.Equal(t, expiresAt, set["subscription.expiresAt"])
		assert.Equal(t, 50.0, set["subscription.amount"])
		// merge semantics: never replace the whole sub-document
		_, replaces := set["subscription"]
		assert.False(t, replaces)
	}
}

func TestUpsertLedgerQuery_KeyedByReference(t *testing.T) {
	entry := entity.LedgerEntry{Subscription: sampleSubscription(), Email: "a@b.com"}
	filter, update := upsertLedgerQuery(entry)

	assert.Equal(t, bson.M{"_id": "ref1"}, filter)

	set := update["$set"].(bson.M)
	assert.Equal(t, "a@b.com", set["email"])
	assert.Equal(t, "ref1", set["reference"])
	assert.Equal(t, "u1", set["userId"])

	// identical input produces identical writes
	_, again := upsertLedgerQuery(entry)
	assert.Equal(t, update, again)
}

func TestExpiredFilters(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, bson.M{
		"subscription.status":    entity.SubscriptionStatusActive,
		"subscription.expiresAt": bson.M{"$lte": now},
	}, expiredProfilesFilter(now))

	assert.Equal(t, bson.M{
		"status":    entity.SubscriptionStatusActive,
		"expiresAt": bson.M{"$lte": now},
	}, expiredLedgerFilter(now))
}

func TestExpireProfileQuery_RemovesPlanFields(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	filter, update := expireProfileQuery("u1", now)

	assert.Equal(t, bson.M{
		"_id":                    "u1",
		"subscription.status":    entity.SubscriptionStatusActive,
		"subscription.expiresAt": bson.M{"$lte": now},
	}, filter)
	assert.Equal(t, bson.M{"subscription.status": entity.SubscriptionStatusExpired}, update["$set"])
	assert.Equal(t, bson.M{"subscription.planId": "", "subscription.planName": ""}, update["$unset"])
}

func TestExpireProfileQuery_DoesNotShareFilter(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	_, _ = expireProfileQuery("u1", now)

	_, hasID := expiredProfilesFilter(now)["_id"]
	assert.False(t, hasID)
}

func TestExpireLedgerBatchQuery_GuardsStatusAndExpiry(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	filter, update := expireLedgerBatchQuery([]string{"ref1", "ref2"}, now)

	assert.Equal(t, bson.M{"$in": []string{"ref1", "ref2"}}, filter["_id"])
	assert.Equal(t, entity.SubscriptionStatusActive, filter["status"])
	assert.Equal(t, bson.M{"$lte": now}, filter["expiresAt"])
	assert.Equal(t, bson.M{"$set": bson.M{"status": entity.SubscriptionStatusExpired}}, update)
}
