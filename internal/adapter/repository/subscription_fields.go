package repository

import (
	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
	"go.mongodb.org/mongo-driver/bson"
)

// subscriptionFields flattens sub into dotted $set paths under prefix so an
// upsert merges into the stored document instead of replacing it.
func subscriptionFields(prefix string, sub entity.Subscription) bson.M {
	return bson.M{
		prefix + "status":    sub.Status,
		prefix + "planId":    sub.PlanID,
		prefix + "planName":  sub.PlanName,
		prefix + "paidAt":    sub.PaidAt,
		prefix + "expiresAt": sub.ExpiresAt,
		prefix + "reference": sub.Reference,
		prefix + "channel":   sub.Channel,
		prefix + "amount":    sub.Amount,
		prefix + "currency":  sub.Currency,
		prefix + "userId":    sub.UserID,
	}
}
