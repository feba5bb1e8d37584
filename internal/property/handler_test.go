package property

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"konkan-properties/internal/middleware"
	"konkan-properties/internal/models"
	"konkan-properties/internal/store/storetest"
)

type fixture struct {
	handler    *Handler
	users      *storetest.Users
	properties *storetest.Properties
	interests  *storetest.Interests
	images     *storetest.Images
}

func newFixture() *fixture {
	users := storetest.NewUsers()
	properties := storetest.NewProperties()
	interests := storetest.NewInterests()
	images := storetest.NewImages()
	return &fixture{
		handler:    NewHandler(properties, interests, users, images),
		users:      users,
		properties: properties,
		interests:  interests,
		images:     images,
	}
}

// router mounts the handler under the real paths with a fixed identity.
func (f *fixture) router(userID string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), userID, false)))
		})
	})
	r.Get("/api/properties", f.handler.List)
	r.Post("/api/properties", f.handler.Create)
	r.Post("/api/properties/{id}/interest", f.handler.Interest)
	r.Get("/api/properties/user/my-properties", f.handler.MyProperties)
	r.Get("/api/properties/user/my-interests", f.handler.MyInterests)
	r.Put("/api/properties/{id}/mark-sold", f.handler.MarkSold)
	r.Get("/api/properties/{id}", f.handler.Get)
	r.Get("/api/images/{key}", f.handler.ServeImage)
	return r
}

func (f *fixture) addUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), name, email, "hash", "+91-1", "Konkan")
	require.NoError(t, err)
	return u
}

func (f *fixture) addProperty(t *testing.T, sellerID string, status models.PropertyStatus) *models.Property {
	t.Helper()
	p, err := f.properties.Insert(context.Background(), &models.Property{
		Title:        "Sea View Villa",
		Description:  "Villa overlooking the Arabian Sea",
		Price:        7500000,
		Location:     "Ratnagiri",
		Area:         2400,
		PropertyType: models.TypeVilla,
		Bedrooms:     3,
		Bathrooms:    2,
		Amenities:    "parking, garden",
		Landmarks:    "near lighthouse",
		SellerID:     sellerID,
		Status:       models.StatusPending,
	})
	require.NoError(t, err)
	if status != models.StatusPending {
		p, err = f.properties.SetStatus(context.Background(), p.ID.Hex(), status)
		require.NoError(t, err)
	}
	return p
}

func do(t *testing.T, h http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListReturnsApprovedOnly(t *testing.T) {
	f := newFixture()
	seller := f.addUser(t, "Baburao", "baburao@example.com")
	f.addProperty(t, seller.ID, models.StatusPending)
	approved := f.addProperty(t, seller.ID, models.StatusApproved)
	f.addProperty(t, seller.ID, models.StatusRejected)

	rec := do(t, f.router(""), http.MethodGet, "/api/properties", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []models.PropertyView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	require.Equal(t, approved.ID, views[0].ID)
	require.NotNil(t, views[0].Seller)
	require.Equal(t, "Baburao", views[0].Seller.Name)
	require.Empty(t, views[0].Seller.Email) // public view hides contact info
}

func TestGetUnknownProperty(t *testing.T) {
	f := newFixture()
	rec := do(t, f.router(""), http.MethodGet, "/api/properties/64f000000000000000000000", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, f.router(""), http.MethodGet, "/api/properties/not-an-id", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartBody(t *testing.T, fields map[string]string, imageNames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, name := range imageNames {
		fw, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func listingFields() map[string]string {
	return map[string]string{
		"title":        "Beach House",
		"description":  "Two minutes from Ganpatipule beach",
		"price":        "4500000",
		"location":     "Ganpatipule",
		"area":         "1600",
		"propertyType": "house",
		"bedrooms":     "2",
		"bathrooms":    "1",
		"amenities":    "well, solar heater",
		"landmarks":    "near temple",
	}
}

func TestCreateProperty(t *testing.T) {
	f := newFixture()
	seller := f.addUser(t, "Baburao", "baburao@example.com")

	body, ct := multipartBody(t, listingFields(), "front.jpg", "back.png")
	rec := do(t, f.router(seller.ID), http.MethodPost, "/api/properties", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)

	var view models.PropertyView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, models.StatusPending, view.Status)
	require.Equal(t, seller.ID, view.SellerID)
	require.Len(t, view.Images, 2)
	require.True(t, strings.HasSuffix(view.Images[0], ".jpg"))
	require.NotNil(t, view.Seller)

	// stored images are servable
	img := do(t, f.router(""), http.MethodGet, "/api/images/"+view.Images[0], nil, "")
	require.Equal(t, http.StatusOK, img.Code)
	require.Equal(t, "fake image bytes", img.Body.String())
}

func TestCreatePropertyMissingField(t *testing.T) {
	f := newFixture()
	seller := f.addUser(t, "Baburao", "baburao@example.com")

	fields := listingFields()
	delete(fields, "location")
	body, ct := multipartBody(t, fields)
	rec := do(t, f.router(seller.ID), http.MethodPost, "/api/properties", body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "All fields are required")
}

func TestCreatePropertyInvalidType(t *testing.T) {
	f := newFixture()
	seller := f.addUser(t, "Baburao", "baburao@example.com")

	fields := listingFields()
	fields["propertyType"] = "castle"
	body, ct := multipartBody(t, fields)
	rec := do(t, f.router(seller.ID), http.MethodPost, "/api/properties", body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePropertyTooManyImages(t *testing.T) {
	f := newFixture()
	seller := f.addUser(t, "Baburao", "baburao@example.com")

	names := make([]string, 11)
	for i := range names {
		names[i] = fmt.Sprintf("img%d.jpg", i)
	}
	body, ct := multipartBody(t, listingFields(), names...)
	rec := do(t, f.router(seller.ID), http.MethodPost, "/api/properties", body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePropertyInsertFailureCleansUpImages(t *testing.T) {
	f := newFixture()
	seller := f.addUser(t, "Baburao", "baburao@example.com")
	f.properties.InsertErr = errors.New("write concern timeout")

	body, ct := multipartBody(t, listingFields(), "front.jpg", "back.png")
	rec := do(t, f.router(seller.ID), http.MethodPost, "/api/properties", body, ct)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, f.images.Keys()) // uploaded objects are not orphaned
}

func TestInterest(t *testing.T) {
	f := newFixture()
	seller := f.addUser(t, "Baburao", "baburao@example.com")
	buyer := f.addUser(t, "Asha", "asha@example.com")
	p := f.addProperty(t, seller.ID, models.StatusApproved)
	path := "/api/properties/" + p.ID.Hex() + "/interest"

	t.Run("unknown property", func(t *testing.T) {
		rec := do(t, f.router(buyer.ID), http.MethodPost, "/api/properties/64f000000000000000000000/interest", nil, "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("first registration succeeds", func(t *testing.T) {
		rec := do(t, f.router(buyer.ID), http.MethodPost, path, strings.NewReader(`{"message":"Is the price negotiable?"}`), "application/json")
		require.Equal(t, http.StatusOK, rec.Code)

		var i models.Interest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &i))
		require.Equal(t, models.InterestPending, i.Status)
		require.Equal(t, "Is the price negotiable?", i.Message)

		fresh, err := f.properties.GetByID(context.Background(), p.ID.Hex())
		require.NoError(t, err)
		require.Equal(t, 1, fresh.InterestCount)
	})

	t.Run("duplicate registration conflicts and counts once", func(t *testing.T) {
		rec := do(t, f.router(buyer.ID), http.MethodPost, path, nil, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "already shown interest")

		fresh, err := f.properties.GetByID(context.Background(), p.ID.Hex())
		require.NoError(t, err)
		require.Equal(t, 1, fresh.InterestCount)
	})

	t.Run("empty message gets default", func(t *testing.T) {
		other := f.addUser(t, "Ravi", "ravi@example.com")
		rec := do(t, f.router(other.ID), http.MethodPost, path, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), models.DefaultInterestMessage)
	})
}

func TestMyInterestsPopulatesProperty(t *testing.T) {
	f := newFixture()
	seller := f.addUser(t, "Baburao", "baburao@example.com")
	buyer := f.addUser(t, "Asha", "asha@example.com")
	p := f.addProperty(t, seller.ID, models.StatusApproved)

	rec := do(t, f.router(buyer.ID), http.MethodPost, "/api/properties/"+p.ID.Hex()+"/interest", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, f.router(buyer.ID), http.MethodGet, "/api/properties/user/my-interests", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []models.InterestView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Property)
	require.Equal(t, p.ID, views[0].Property.ID)
}

func TestMarkSold(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "Baburao", "baburao@example.com")
	stranger := f.addUser(t, "Asha", "asha@example.com")

	t.Run("non-owner forbidden", func(t *testing.T) {
		p := f.addProperty(t, owner.ID, models.StatusApproved)
		rec := do(t, f.router(stranger.ID), http.MethodPut, "/api/properties/"+p.ID.Hex()+"/mark-sold", nil, "")
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("pending rejected as invalid transition", func(t *testing.T) {
		p := f.addProperty(t, owner.ID, models.StatusPending)
		rec := do(t, f.router(owner.ID), http.MethodPut, "/api/properties/"+p.ID.Hex()+"/mark-sold", nil, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "Only approved properties")
	})

	t.Run("approved owner path succeeds", func(t *testing.T) {
		p := f.addProperty(t, owner.ID, models.StatusApproved)
		rec := do(t, f.router(owner.ID), http.MethodPut, "/api/properties/"+p.ID.Hex()+"/mark-sold", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var updated models.Property
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		require.Equal(t, models.StatusSold, updated.Status)
		require.NotNil(t, updated.SoldAt)
	})

	t.Run("unknown property", func(t *testing.T) {
		rec := do(t, f.router(owner.ID), http.MethodPut, "/api/properties/64f000000000000000000000/mark-sold", nil, "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMyProperties(t *testing.T) {
	f := newFixture()
	seller := f.addUser(t, "Baburao", "baburao@example.com")
	other := f.addUser(t, "Asha", "asha@example.com")
	f.addProperty(t, seller.ID, models.StatusPending)
	f.addProperty(t, seller.ID, models.StatusApproved)
	f.addProperty(t, other.ID, models.StatusApproved)

	rec := do(t, f.router(seller.ID), http.MethodGet, "/api/properties/user/my-properties", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var props []models.Property
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &props))
	require.Len(t, props, 2)
	for _, p := range props {
		require.Equal(t, seller.ID, p.SellerID)
	}
}
