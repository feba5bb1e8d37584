package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PropertyStatus is the listing lifecycle state.
type PropertyStatus string

const (
	StatusPending  PropertyStatus = "pending"
	StatusApproved PropertyStatus = "approved"
	StatusRejected PropertyStatus = "rejected"
	StatusSold     PropertyStatus = "sold"
)

// PropertyType is the kind of unit being listed.
type PropertyType string

const (
	TypeHouse PropertyType = "house"
	TypeFlat  PropertyType = "flat"
	TypeLand  PropertyType = "land"
	TypeShop  PropertyType = "shop"
	TypeVilla PropertyType = "villa"
)

// ValidPropertyType reports whether t is one of the listing types.
func ValidPropertyType(t PropertyType) bool {
	switch t {
	case TypeHouse, TypeFlat, TypeLand, TypeShop, TypeVilla:
		return true
	}
	return false
}

// Property is a single listing stored in MongoDB.
type Property struct {
	ID            primitive.ObjectID `json:"id"            bson:"_id,omitempty"`
	Title         string             `json:"title"         bson:"title"`
	Description   string             `json:"description"   bson:"description"`
	Price         int                `json:"price"         bson:"price"`
	Location      string             `json:"location"      bson:"location"`
	Area          int                `json:"area"          bson:"area"`
	PropertyType  PropertyType       `json:"propertyType"  bson:"property_type"`
	Bedrooms      int                `json:"bedrooms"      bson:"bedrooms"`
	Bathrooms     int                `json:"bathrooms"     bson:"bathrooms"`
	Amenities     string             `json:"amenities"     bson:"amenities"`
	Landmarks     string             `json:"landmarks"     bson:"landmarks"`
	Images        []string           `json:"images"        bson:"images"`
	SellerID      string             `json:"sellerId"      bson:"seller"`
	Status        PropertyStatus     `json:"status"        bson:"status"`
	InterestCount int                `json:"interestCount" bson:"interest_count"`
	PostedAt      time.Time          `json:"postedAt"      bson:"posted_at"`
	ApprovedAt    *time.Time         `json:"approvedAt,omitempty" bson:"approved_at,omitempty"`
	SoldAt        *time.Time         `json:"soldAt,omitempty"     bson:"sold_at,omitempty"`
}

// PropertyView is a Property with the seller reference populated.
type PropertyView struct {
	Property
	Seller *UserSummary `json:"seller,omitempty"`
}
