// Package property implements the public and seller/buyer listing routes:
// browsing approved listings, submitting a listing with images, expressing
// interest, and the owner mark-sold path.
package property

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"konkan-properties/internal/middleware"
	"konkan-properties/internal/models"
	"konkan-properties/internal/response"
	"konkan-properties/internal/store"
)

const maxImages = 10

// PropertyStore defines the interface for listing persistence.
type PropertyStore interface {
	Insert(ctx context.Context, p *models.Property) (*models.Property, error)
	GetByID(ctx context.Context, id string) (*models.Property, error)
	ListByStatus(ctx context.Context, status models.PropertyStatus, sortField string) ([]models.Property, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Property, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[string]*models.Property, error)
	SetStatus(ctx context.Context, id string, status models.PropertyStatus) (*models.Property, error)
	IncrementInterest(ctx context.Context, id primitive.ObjectID, delta int) error
}

// InterestStore defines the interface for buyer enquiries.
type InterestStore interface {
	Insert(ctx context.Context, i *models.Interest) (*models.Interest, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByBuyer(ctx context.Context, buyerID string) ([]models.Interest, error)
}

// UserStore resolves seller references for populated responses.
type UserStore interface {
	GetUsersByID(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// ImageStore defines the interface for photo storage.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Handler holds the listing HTTP handlers.
type Handler struct {
	properties PropertyStore
	interests  InterestStore
	users      UserStore
	images     ImageStore
}

func NewHandler(properties PropertyStore, interests InterestStore, users UserStore, images ImageStore) *Handler {
	return &Handler{properties: properties, interests: interests, users: users, images: images}
}

// List returns all approved listings, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	props, err := h.properties.ListByStatus(r.Context(), models.StatusApproved, "posted_at")
	if err != nil {
		log.Printf("list properties error: %v", err)
		response.ServerError(w)
		return
	}
	views, err := h.withSellers(r.Context(), props)
	if err != nil {
		log.Printf("populate sellers error: %v", err)
		response.ServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, views)
}

// Get returns a single listing regardless of status.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.properties.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Message(w, http.StatusNotFound, "Property not found")
			return
		}
		log.Printf("get property error: %v", err)
		response.ServerError(w)
		return
	}
	views, err := h.withSellers(r.Context(), []models.Property{*p})
	if err != nil {
		log.Printf("populate sellers error: %v", err)
		response.ServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, views[0])
}

// Create accepts a multipart listing submission with up to ten images and
// stores it as pending, owned by the caller. Numeric fields are parsed with
// no range checking.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	text := map[string]string{}
	for _, field := range []string{"title", "description", "location", "amenities", "landmarks", "propertyType"} {
		text[field] = strings.TrimSpace(r.FormValue(field))
	}
	numeric := map[string]int{}
	for _, field := range []string{"price", "area", "bedrooms", "bathrooms"} {
		raw := strings.TrimSpace(r.FormValue(field))
		if raw == "" {
			response.Message(w, http.StatusBadRequest, "All fields are required")
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Message(w, http.StatusBadRequest, "All fields are required")
			return
		}
		numeric[field] = n
	}
	for _, v := range text {
		if v == "" {
			response.Message(w, http.StatusBadRequest, "All fields are required")
			return
		}
	}
	propertyType := models.PropertyType(text["propertyType"])
	if !models.ValidPropertyType(propertyType) {
		response.Message(w, http.StatusBadRequest, "Invalid property type")
		return
	}

	images, err := h.uploadImages(r)
	if err != nil {
		if errors.Is(err, errTooManyImages) {
			response.Message(w, http.StatusBadRequest, "A maximum of 10 images are allowed")
			return
		}
		log.Printf("image upload error: %v", err)
		response.ServerError(w)
		return
	}

	p := &models.Property{
		Title:        text["title"],
		Description:  text["description"],
		Price:        numeric["price"],
		Location:     text["location"],
		Area:         numeric["area"],
		PropertyType: propertyType,
		Bedrooms:     numeric["bedrooms"],
		Bathrooms:    numeric["bathrooms"],
		Amenities:    text["amenities"],
		Landmarks:    text["landmarks"],
		Images:       images,
		SellerID:     middleware.UserID(r.Context()),
		Status:       models.StatusPending,
	}
	saved, err := h.properties.Insert(r.Context(), p)
	if err != nil {
		log.Printf("insert property error: %v", err)
		// best effort: don't leave orphaned objects behind a failed insert
		for _, key := range images {
			if remErr := h.images.Remove(r.Context(), key); remErr != nil {
				log.Printf("image cleanup error: %v", remErr)
			}
		}
		response.ServerError(w)
		return
	}
	views, err := h.withSellers(r.Context(), []models.Property{*saved})
	if err != nil {
		log.Printf("populate sellers error: %v", err)
		response.ServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, views[0])
}

// Interest registers the caller's interest in a listing. The unique
// (buyer, property) index rejects duplicates atomically; the counter
// increment follows, with a best-effort compensating delete on failure.
func (h *Handler) Interest(w http.ResponseWriter, r *http.Request) {
	p, err := h.properties.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Message(w, http.StatusNotFound, "Property not found")
			return
		}
		log.Printf("get property error: %v", err)
		response.ServerError(w)
		return
	}

	var req models.InterestRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // message is optional
	}
	if req.Message == "" {
		req.Message = models.DefaultInterestMessage
	}

	interest, err := h.interests.Insert(r.Context(), &models.Interest{
		BuyerID:    middleware.UserID(r.Context()),
		PropertyID: p.ID,
		Message:    req.Message,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			response.Message(w, http.StatusBadRequest, "You have already shown interest in this property")
			return
		}
		log.Printf("insert interest error: %v", err)
		response.ServerError(w)
		return
	}

	if err := h.properties.IncrementInterest(r.Context(), p.ID, 1); err != nil {
		log.Printf("interest count increment error: %v", err)
		if delErr := h.interests.Delete(r.Context(), interest.ID); delErr != nil {
			log.Printf("interest compensation delete error: %v", delErr)
		}
		response.ServerError(w)
		return
	}

	response.JSON(w, http.StatusOK, interest)
}

// MyProperties returns the caller's listings regardless of status.
func (h *Handler) MyProperties(w http.ResponseWriter, r *http.Request) {
	props, err := h.properties.ListBySeller(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		log.Printf("list user properties error: %v", err)
		response.ServerError(w)
		return
	}
	if props == nil {
		props = []models.Property{}
	}
	response.JSON(w, http.StatusOK, props)
}

// MyInterests returns the caller's enquiries with listings populated.
func (h *Handler) MyInterests(w http.ResponseWriter, r *http.Request) {
	interests, err := h.interests.ListByBuyer(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		log.Printf("list user interests error: %v", err)
		response.ServerError(w)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(interests))
	for _, i := range interests {
		ids = append(ids, i.PropertyID)
	}
	props, err := h.properties.GetByIDs(r.Context(), ids)
	if err != nil {
		log.Printf("populate properties error: %v", err)
		response.ServerError(w)
		return
	}

	views := make([]models.InterestView, 0, len(interests))
	for _, i := range interests {
		views = append(views, models.InterestView{
			Interest: i,
			Property: props[i.PropertyID.Hex()],
		})
	}
	response.JSON(w, http.StatusOK, views)
}

// MarkSold is the owner path: only the listing's owner may call it, and only
// an approved listing can transition to sold.
func (h *Handler) MarkSold(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.properties.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Message(w, http.StatusNotFound, "Property not found")
			return
		}
		log.Printf("get property error: %v", err)
		response.ServerError(w)
		return
	}

	if p.SellerID != middleware.UserID(r.Context()) {
		response.Message(w, http.StatusForbidden, "You are not allowed to mark this property as sold")
		return
	}
	if p.Status != models.StatusApproved {
		response.Message(w, http.StatusBadRequest, "Only approved properties can be marked as sold")
		return
	}

	updated, err := h.properties.SetStatus(r.Context(), id, models.StatusSold)
	if err != nil {
		log.Printf("mark sold error: %v", err)
		response.ServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

// ServeImage streams an uploaded photo from object storage.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.images.Download(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Message(w, http.StatusNotFound, "Image not found")
			return
		}
		log.Printf("image download error: %v", err)
		response.ServerError(w)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

var errTooManyImages = errors.New("too many images")

// uploadImages stores each uploaded file under a millisecond-timestamp key
// with a short random suffix so same-millisecond uploads cannot collide.
func (h *Handler) uploadImages(r *http.Request) ([]string, error) {
	images := []string{}
	if r.MultipartForm == nil {
		return images, nil
	}
	files := r.MultipartForm.File["images"]
	if len(files) > maxImages {
		return nil, errTooManyImages
	}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		key := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], filepath.Ext(fh.Filename))
		if err := h.images.Upload(r.Context(), key, data, contentType); err != nil {
			return nil, err
		}
		images = append(images, key)
	}
	return images, nil
}

// withSellers attaches {id, name} seller summaries to listings.
func (h *Handler) withSellers(ctx context.Context, props []models.Property) ([]models.PropertyView, error) {
	ids := make([]string, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.SellerID)
	}
	users, err := h.users.GetUsersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.PropertyView, 0, len(props))
	for _, p := range props {
		view := models.PropertyView{Property: p}
		if u, ok := users[p.SellerID]; ok {
			view.Seller = &models.UserSummary{ID: u.ID, Name: u.Name}
		}
		views = append(views, view)
	}
	return views, nil
}
