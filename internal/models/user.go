package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// UserRef is the subset of a user account that profiles display. Accounts are
// owned by the user service; profiles only reference them.
type UserRef struct {
	ID     primitive.ObjectID `json:"id" bson:"_id"`
	Name   string             `json:"name" bson:"name"`
	Avatar string             `json:"avatar" bson:"avatar"`
}
