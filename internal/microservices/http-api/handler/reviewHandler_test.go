package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"musichub/internal/microservices/http-api/dto"
	"musichub/internal/microservices/http-api/handler"
	"musichub/internal/microservices/http-api/middleware"
	"musichub/internal/microservices/http-api/repository"
	"musichub/internal/microservices/http-api/service"
	"musichub/internal/middleware/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- HELPERS ---

func intPtr(i int) *int          { return &i }
func stringPtr(s string) *string { return &s }

var testCaller = &auth.Caller{ID: "0b4c6b0e-1f7a-4c55-9a38-6d1c2f5b9e01", Username: "alice", Role: "user"}

// mockAuthMiddleware stands in for middleware.Authenticate
func mockAuthMiddleware(caller *auth.Caller) gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller != nil {
			c.Set(middleware.CallerKey, caller)
		}
		c.Next()
	}
}

func newRouter(caller *auth.Caller, register func(*gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	api.Use(mockAuthMiddleware(caller))
	register(api)
	return r
}

func perform(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

// --- MOCK SERVICE ---

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) SubmitReview(ctx context.Context, caller *auth.Caller, in service.SubmitReviewInput) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) UpdateReview(ctx context.Context, caller *auth.Caller, reviewID int64, in service.UpdateReviewInput) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, caller, reviewID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, caller *auth.Caller, reviewID int64) error {
	return m.Called(ctx, caller, reviewID).Error(0)
}

func (m *MockReviewService) GetReview(ctx context.Context, caller *auth.Caller, reviewID int64) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, caller, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) ListReviews(ctx context.Context, caller *auth.Caller, filter repository.ReviewFilter) ([]dto.ReviewResponse, error) {
	args := m.Called(ctx, caller, filter)
	return args.Get(0).([]dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) ListAlbumReviews(ctx context.Context, caller *auth.Caller, albumID int64, ordering string) ([]dto.ReviewResponse, error) {
	args := m.Called(ctx, caller, albumID, ordering)
	return args.Get(0).([]dto.ReviewResponse), args.Error(1)
}

func setupReviewRouter(svc *MockReviewService, caller *auth.Caller) *gin.Engine {
	return newRouter(caller, handler.NewReviewHandler(svc).RegisterRoutes)
}

func sampleReview() *dto.ReviewResponse {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &dto.ReviewResponse{
		ID: 11, User: testCaller.ID, Username: "alice", Album: 3, AlbumTitle: "Blue",
		Rating: 5, ReviewText: "timeless", CreatedAt: now, UpdatedAt: now,
	}
}

// --- TESTS ---

func TestReviewHandler_Create(t *testing.T) {
	t.Run("accepts the album field", func(t *testing.T) {
		svc := new(MockReviewService)
		r := setupReviewRouter(svc, testCaller)
		svc.On("SubmitReview", mock.Anything, testCaller, service.SubmitReviewInput{
			AlbumID: 3, Rating: intPtr(5), ReviewText: "timeless",
		}).Return(sampleReview(), nil)

		w := perform(r, http.MethodPost, "/api/reviews", map[string]interface{}{
			"album": 3, "rating": 5, "review_text": "timeless",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(11), body["id"])
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "Blue", body["album_title"])
		assert.Equal(t, float64(0), body["like_count"])
		assert.Equal(t, false, body["user_liked"])
		svc.AssertExpectations(t)
	})

	t.Run("accepts album_id", func(t *testing.T) {
		svc := new(MockReviewService)
		r := setupReviewRouter(svc, testCaller)
		svc.On("SubmitReview", mock.Anything, testCaller, mock.MatchedBy(func(in service.SubmitReviewInput) bool {
			return in.AlbumID == 8
		})).Return(sampleReview(), nil)

		w := perform(r, http.MethodPost, "/api/reviews", map[string]interface{}{
			"album_id": 8, "rating": 2, "review_text": "meh",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc := new(MockReviewService)
		r := setupReviewRouter(svc, nil)

		w := perform(r, http.MethodPost, "/api/reviews", map[string]interface{}{"album": 3, "rating": 5, "review_text": "x"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		svc.AssertNotCalled(t, "SubmitReview", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := new(MockReviewService)
		r := setupReviewRouter(svc, testCaller)

		w := perform(r, http.MethodPost, "/api/reviews", `{"rating": "five"`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body", errorBody(t, w))
	})

	errorCases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", service.ErrAlbumMissing, http.StatusBadRequest},
		{"conflict", service.ErrAlreadyReviewed, http.StatusBadRequest},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockReviewService)
			r := setupReviewRouter(svc, testCaller)
			svc.On("SubmitReview", mock.Anything, testCaller, mock.Anything).Return(nil, tc.err)

			w := perform(r, http.MethodPost, "/api/reviews", map[string]interface{}{"album": 3, "rating": 5, "review_text": "x"})

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", errorBody(t, w))
			} else {
				assert.Equal(t, tc.err.Error(), errorBody(t, w))
			}
		})
	}
}

func TestReviewHandler_Update(t *testing.T) {
	t.Run("patch sends only supplied fields", func(t *testing.T) {
		svc := new(MockReviewService)
		r := setupReviewRouter(svc, testCaller)
		svc.On("UpdateReview", mock.Anything, testCaller, int64(11), service.UpdateReviewInput{Rating: intPtr(4)}).
			Return(sampleReview(), nil)

		w := perform(r, http.MethodPatch, "/api/reviews/11", map[string]interface{}{"rating": 4})

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("put requires every field", func(t *testing.T) {
		svc := new(MockReviewService)
		r := setupReviewRouter(svc, testCaller)

		w := perform(r, http.MethodPut, "/api/reviews/11", map[string]interface{}{"rating": 4})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Review text is required", errorBody(t, w))
		svc.AssertNotCalled(t, "UpdateReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("put with both fields", func(t *testing.T) {
		svc := new(MockReviewService)
		r := setupReviewRouter(svc, testCaller)
		svc.On("UpdateReview", mock.Anything, testCaller, int64(11), service.UpdateReviewInput{
			Rating: intPtr(3), ReviewText: stringPtr("revised"),
		}).Return(sampleReview(), nil)

		w := perform(r, http.MethodPut, "/api/reviews/11", map[string]interface{}{"rating": 3, "review_text": "revised"})

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	statusCases := []struct {
		name   string
		err    error
		status int
	}{
		{"not owner", service.ErrNotReviewOwner, http.StatusForbidden},
		{"missing", service.ErrReviewNotFound, http.StatusNotFound},
	}
	for _, tc := range statusCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockReviewService)
			r := setupReviewRouter(svc, testCaller)
			svc.On("UpdateReview", mock.Anything, testCaller, int64(11), mock.Anything).Return(nil, tc.err)

			w := perform(r, http.MethodPatch, "/api/reviews/11", map[string]interface{}{"rating": 1})

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.err.Error(), errorBody(t, w))
		})
	}

	t.Run("invalid id", func(t *testing.T) {
		svc := new(MockReviewService)
		r := setupReviewRouter(svc, testCaller)

		w := perform(r, http.MethodPatch, "/api/reviews/abc", map[string]interface{}{"rating": 1})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid review ID", errorBody(t, w))
	})
}

func TestReviewHandler_Delete(t *testing.T) {
	svc := new(MockReviewService)
	r := setupReviewRouter(svc, testCaller)
	svc.On("DeleteReview", mock.Anything, testCaller, int64(11)).Return(nil).Once()
	svc.On("DeleteReview", mock.Anything, testCaller, int64(12)).Return(service.ErrNotReviewOwner).Once()

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodDelete, "/api/reviews/11", nil).Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodDelete, "/api/reviews/12", nil).Code)
	svc.AssertExpectations(t)
}

func TestReviewHandler_List(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		svc := new(MockReviewService)
		r := setupReviewRouter(svc, nil)
		svc.On("ListReviews", mock.Anything, (*auth.Caller)(nil), mock.MatchedBy(func(f repository.ReviewFilter) bool {
			return f.AlbumID != nil && *f.AlbumID == 3 &&
				f.UserID != nil && *f.UserID == testCaller.ID &&
				f.Ordering == "-rating"
		})).Return([]dto.ReviewResponse{*sampleReview()}, nil)

		w := perform(r, http.MethodGet, "/api/reviews?album_id=3&user_id="+testCaller.ID+"&ordering=-rating", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var body []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body, 1)
		svc.AssertExpectations(t)
	})

	t.Run("bad ordering", func(t *testing.T) {
		svc := new(MockReviewService)
		r := setupReviewRouter(svc, nil)
		svc.On("ListReviews", mock.Anything, mock.Anything, mock.Anything).Return([]dto.ReviewResponse(nil), service.ErrInvalidOrdering)

		w := perform(r, http.MethodGet, "/api/reviews?ordering=likes", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad user id", func(t *testing.T) {
		svc := new(MockReviewService)
		r := setupReviewRouter(svc, nil)

		w := perform(r, http.MethodGet, "/api/reviews?user_id=42", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid user ID", errorBody(t, w))
	})

	t.Run("bad album id", func(t *testing.T) {
		svc := new(MockReviewService)
		r := setupReviewRouter(svc, nil)

		w := perform(r, http.MethodGet, "/api/reviews?album_id=x", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid album ID", errorBody(t, w))
	})
}

func TestReviewHandler_GetAndAlbumReviews(t *testing.T) {
	svc := new(MockReviewService)
	r := setupReviewRouter(svc, testCaller)
	svc.On("GetReview", mock.Anything, testCaller, int64(11)).Return(sampleReview(), nil)
	svc.On("GetReview", mock.Anything, testCaller, int64(99)).Return(nil, service.ErrReviewNotFound)
	svc.On("ListAlbumReviews", mock.Anything, testCaller, int64(3), "rating").Return([]dto.ReviewResponse{}, nil)
	svc.On("ListAlbumReviews", mock.Anything, testCaller, int64(4), "").Return([]dto.ReviewResponse(nil), service.ErrAlbumNotFound)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/reviews/11", nil).Code)

	w := perform(r, http.MethodGet, "/api/reviews/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "review not found", errorBody(t, w))

	w = perform(r, http.MethodGet, "/api/albums/3/reviews?ordering=rating", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/api/albums/4/reviews", nil).Code)
	svc.AssertExpectations(t)
}
