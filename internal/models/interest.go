package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InterestStatus tracks how far an admin has taken a buyer enquiry.
type InterestStatus string

const (
	InterestPending   InterestStatus = "pending"
	InterestContacted InterestStatus = "contacted"
	InterestClosed    InterestStatus = "closed"
)

// ValidInterestStatus reports whether s is one of the enquiry states.
func ValidInterestStatus(s InterestStatus) bool {
	switch s {
	case InterestPending, InterestContacted, InterestClosed:
		return true
	}
	return false
}

// DefaultInterestMessage is used when a buyer sends no message.
const DefaultInterestMessage = "I am interested in this property"

// Interest is a buyer enquiry stored in MongoDB. At most one exists per
// (buyer, property) pair, enforced by a unique compound index.
type Interest struct {
	ID         primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	BuyerID    string             `json:"buyerId"    bson:"buyer"`
	PropertyID primitive.ObjectID `json:"propertyId" bson:"property"`
	Message    string             `json:"message"    bson:"message"`
	Status     InterestStatus     `json:"status"     bson:"status"`
	CreatedAt  time.Time          `json:"createdAt"  bson:"created_at"`
}

// InterestView is an Interest with buyer and property references populated.
type InterestView struct {
	Interest
	Buyer    *UserSummary `json:"buyer,omitempty"`
	Property *Property    `json:"property,omitempty"`
}

// InterestRequest is the JSON body for POST /api/properties/{id}/interest.
type InterestRequest struct {
	Message string `json:"message"`
}

// InterestStatusRequest is the JSON body for PUT /api/admin/interests/{id}.
type InterestStatusRequest struct {
	Status InterestStatus `json:"status"`
}
