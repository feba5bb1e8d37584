// Package admin implements the privileged moderation routes. All of them sit
// behind the admin gate; the transition rules here are deliberately
// permissive: approve re-stamps its timestamp, and reject and sold apply to
// any current status.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"konkan-properties/internal/models"
	"konkan-properties/internal/response"
	"konkan-properties/internal/store"
)

// PropertyStore defines the listing operations the admin surface needs.
type PropertyStore interface {
	ListByStatus(ctx context.Context, status models.PropertyStatus, sortField string) ([]models.Property, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[string]*models.Property, error)
	SetStatus(ctx context.Context, id string, status models.PropertyStatus) (*models.Property, error)
}

// UserStore defines the user operations the admin surface needs.
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	SetAdmin(ctx context.Context, id string) (*models.User, error)
	GetUsersByID(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// InterestStore defines the enquiry operations the admin surface needs.
type InterestStore interface {
	ListAll(ctx context.Context) ([]models.Interest, error)
	UpdateStatus(ctx context.Context, id string, status models.InterestStatus) (*models.Interest, error)
}

// Handler holds the admin HTTP handlers.
type Handler struct {
	properties PropertyStore
	users      UserStore
	interests  InterestStore
}

func NewHandler(properties PropertyStore, users UserStore, interests InterestStore) *Handler {
	return &Handler{properties: properties, users: users, interests: interests}
}

// PendingProperties lists listings awaiting moderation with full seller
// contact details.
func (h *Handler) PendingProperties(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, models.StatusPending, "posted_at")
}

// SoldProperties lists sold listings, most recently sold first.
func (h *Handler) SoldProperties(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, models.StatusSold, "sold_at")
}

// Approve moves a listing to approved and stamps approved_at. Re-approving
// simply re-stamps.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusApproved)
}

// Reject moves a listing to rejected from any status.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusRejected)
}

// Sold is the admin path: any status to sold, stamping sold_at.
func (h *Handler) Sold(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusSold)
}

// Users lists every registered user, newest first.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		log.Printf("list users error: %v", err)
		response.ServerError(w)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	response.JSON(w, http.StatusOK, users)
}

// MakeAdmin flips the target user's admin flag on. There is no demote path.
func (h *Handler) MakeAdmin(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.SetAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Message(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("make admin error: %v", err)
		response.ServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

// Interests lists every enquiry with buyer and listing populated.
func (h *Handler) Interests(w http.ResponseWriter, r *http.Request) {
	interests, err := h.interests.ListAll(r.Context())
	if err != nil {
		log.Printf("list interests error: %v", err)
		response.ServerError(w)
		return
	}

	buyerIDs := make([]string, 0, len(interests))
	propIDs := make([]primitive.ObjectID, 0, len(interests))
	for _, i := range interests {
		buyerIDs = append(buyerIDs, i.BuyerID)
		propIDs = append(propIDs, i.PropertyID)
	}
	buyers, err := h.users.GetUsersByID(r.Context(), buyerIDs)
	if err != nil {
		log.Printf("populate buyers error: %v", err)
		response.ServerError(w)
		return
	}
	props, err := h.properties.GetByIDs(r.Context(), propIDs)
	if err != nil {
		log.Printf("populate properties error: %v", err)
		response.ServerError(w)
		return
	}

	views := make([]models.InterestView, 0, len(interests))
	for _, i := range interests {
		view := models.InterestView{Interest: i, Property: props[i.PropertyID.Hex()]}
		if u, ok := buyers[i.BuyerID]; ok {
			view.Buyer = &models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
		}
		views = append(views, view)
	}
	response.JSON(w, http.StatusOK, views)
}

// UpdateInterest sets an enquiry's status by direct field update. No check
// that the new value differs from the current one.
func (h *Handler) UpdateInterest(w http.ResponseWriter, r *http.Request) {
	var req models.InterestStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidInterestStatus(req.Status) {
		response.Message(w, http.StatusBadRequest, "Invalid status")
		return
	}

	interest, err := h.interests.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Message(w, http.StatusNotFound, "Interest not found")
			return
		}
		log.Printf("update interest error: %v", err)
		response.ServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, interest)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status models.PropertyStatus) {
	p, err := h.properties.SetStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Message(w, http.StatusNotFound, "Property not found")
			return
		}
		log.Printf("set status error: %v", err)
		response.ServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

func (h *Handler) listByStatus(w http.ResponseWriter, r *http.Request, status models.PropertyStatus, sortField string) {
	props, err := h.properties.ListByStatus(r.Context(), status, sortField)
	if err != nil {
		log.Printf("list properties error: %v", err)
		response.ServerError(w)
		return
	}

	sellerIDs := make([]string, 0, len(props))
	for _, p := range props {
		sellerIDs = append(sellerIDs, p.SellerID)
	}
	sellers, err := h.users.GetUsersByID(r.Context(), sellerIDs)
	if err != nil {
		log.Printf("populate sellers error: %v", err)
		response.ServerError(w)
		return
	}

	views := make([]models.PropertyView, 0, len(props))
	for _, p := range props {
		view := models.PropertyView{Property: p}
		if u, ok := sellers[p.SellerID]; ok {
			view.Seller = &models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
		}
		views = append(views, view)
	}
	response.JSON(w, http.StatusOK, views)
}
