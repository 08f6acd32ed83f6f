package wall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"graffiti/models"
)

func newTestRouter(store Store) *httprouter.Router {
	h := NewHandlers(newTestService(store), zap.NewNop())

	router := httprouter.New()
	router.GET("/api/photos", h.ListPhotos)
	router.GET("/api/photo/:id", h.PhotoImage)
	router.GET("/api/stats", h.GetStats)
	router.GET("/api/top_users", h.TopUsers)
	router.POST("/api/like", h.ToggleLike)
	router.POST("/api/delete_photo", h.DeletePhoto)
	router.GET("/api/is_admin/:user_id", h.IsAdmin)
	return router
}

func doJSON(t *testing.T, router *httprouter.Router, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListPhotosEndpoint(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	router := newTestRouter(store)

	p1, _ := svc.SubmitPhoto(context.Background(), 1, "alice", []byte("img1"))
	svc.SubmitPhoto(context.Background(), 2, "bob", []byte("img2"))

	rec := doJSON(t, router, http.MethodGet, "/api/photos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var photos []models.Photo
	if err := json.Unmarshal(rec.Body.Bytes(), &photos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("got %d photos", len(photos))
	}
	if photos[0].ImageURL != "/api/photo/"+p1.ID {
		t.Fatalf("image_url = %q", photos[0].ImageURL)
	}
	if photos[0].LikedBy == nil {
		t.Fatal("liked_by missing from listing")
	}
	if strings.Contains(rec.Body.String(), "img1") {
		t.Fatal("binary payload leaked into the metadata listing")
	}
}

func TestPhotoImageEndpoint(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	router := newTestRouter(store)

	photo, _ := svc.SubmitPhoto(context.Background(), 1, "alice", []byte("jpegbytes"))

	rec := doJSON(t, router, http.MethodGet, "/api/photo/"+photo.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Body.String() != "jpegbytes" {
		t.Fatalf("body %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("content-type %q", ct)
	}
}

func TestPhotoImageEndpointMissingIsEmptyOK(t *testing.T) {
	router := newTestRouter(newMemStore())

	rec := doJSON(t, router, http.MethodGet, "/api/photo/never-created", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want empty 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

func TestLikeEndpointToggles(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	router := newTestRouter(store)

	photo, _ := svc.SubmitPhoto(context.Background(), 1, "alice", []byte("x"))
	body := `{"photo_id":"` + photo.ID + `","user_id":42,"username":"carol"}`

	var resp struct {
		Success  bool  `json:"success"`
		NewLikes int64 `json:"new_likes"`
		Liked    bool  `json:"liked"`
	}

	rec := doJSON(t, router, http.MethodPost, "/api/like", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Success || resp.NewLikes != 1 || !resp.Liked {
		t.Fatalf("first toggle: %+v", resp)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/like", body)
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Success || resp.NewLikes != 0 || resp.Liked {
		t.Fatalf("second toggle: %+v", resp)
	}
}

func TestLikeEndpointValidation(t *testing.T) {
	router := newTestRouter(newMemStore())

	for _, body := range []string{"{not json", `{"photo_id":"","user_id":0}`} {
		rec := doJSON(t, router, http.MethodPost, "/api/like", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status %d", body, rec.Code)
		}
		var resp map[string]any
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["success"] != false {
			t.Fatalf("body %q: success = %v", body, resp["success"])
		}
	}
}

func TestLikeEndpointUnknownPhoto(t *testing.T) {
	router := newTestRouter(newMemStore())

	rec := doJSON(t, router, http.MethodPost, "/api/like", `{"photo_id":"nope","user_id":42}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestDeleteEndpointAuthorization(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	router := newTestRouter(store)

	photo, _ := svc.SubmitPhoto(context.Background(), 1, "alice", []byte("x"))

	rec := doJSON(t, router, http.MethodPost, "/api/delete_photo",
		`{"photo_id":"`+photo.ID+`","user_id":5}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin delete: status %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/delete_photo",
		`{"photo_id":"`+photo.ID+`","user_id":99}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin delete: status %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["success"] != true {
		t.Fatalf("admin delete response: %v", resp)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/delete_photo",
		`{"photo_id":"`+photo.ID+`","user_id":99}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double delete: status %d", rec.Code)
	}
}

func TestIsAdminEndpoint(t *testing.T) {
	router := newTestRouter(newMemStore())

	cases := []struct {
		path string
		code int
		want any
	}{
		{"/api/is_admin/99", http.StatusOK, true},
		{"/api/is_admin/5", http.StatusOK, false},
		{"/api/is_admin/abc", http.StatusBadRequest, nil},
	}
	for _, tc := range cases {
		rec := doJSON(t, router, http.MethodGet, tc.path, "")
		if rec.Code != tc.code {
			t.Fatalf("%s: status %d", tc.path, rec.Code)
		}
		if tc.want == nil {
			continue
		}
		var resp map[string]any
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["is_admin"] != tc.want {
			t.Fatalf("%s: is_admin = %v", tc.path, resp["is_admin"])
		}
	}
}

func TestStatsEndpoint(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	router := newTestRouter(store)

	for _, uid := range []int64{1, 2, 1} {
		svc.SubmitPhoto(context.Background(), uid, "u", []byte("x"))
	}

	rec := doJSON(t, router, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var stats models.Stats
	json.Unmarshal(rec.Body.Bytes(), &stats)
	if stats.TotalPhotos != 3 || stats.TotalUsers != 2 || stats.TotalLikes != 0 {
		t.Fatalf("stats: %+v", stats)
	}
}

func TestTopUsersEndpointLimit(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	router := newTestRouter(store)

	svc.SubmitPhoto(context.Background(), 1, "alice", []byte("x"))
	svc.SubmitPhoto(context.Background(), 2, "bob", []byte("x"))

	rec := doJSON(t, router, http.MethodGet, "/api/top_users?limit=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var users []models.TopUser
	json.Unmarshal(rec.Body.Bytes(), &users)
	if len(users) != 1 {
		t.Fatalf("limit ignored: %d rows", len(users))
	}

	rec = doJSON(t, router, http.MethodGet, "/api/top_users?limit=-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative limit: status %d", rec.Code)
	}
}

func TestStorageFailureSurfacesAsServerError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("mongo down")
	router := newTestRouter(store)

	for _, path := range []string{"/api/photos", "/api/stats", "/api/top_users"} {
		rec := doJSON(t, router, http.MethodGet, path, "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s: status %d, outages must not look like empty results", path, rec.Code)
		}
		var resp map[string]any
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if _, ok := resp["error"]; !ok {
			t.Fatalf("%s: missing error field: %v", path, resp)
		}
	}
}
