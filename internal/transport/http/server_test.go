package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pagecraft/internal/blocks"
	"pagecraft/internal/domain/models"
	pagesvc "pagecraft/internal/services/page_service"
	usersvc "pagecraft/internal/services/user_service"
	appstorage "pagecraft/internal/storage"
	httprouters "pagecraft/internal/transport/http"
	"pagecraft/internal/transport/http/dto"
	"pagecraft/internal/uploader"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, name, email, password string) (uuid.UUID, error) {
	args := m.Called(ctx, name, email, password)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockUserService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockAuthService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockPageService struct {
	mock.Mock
}

func (m *MockPageService) CreatePage(ctx context.Context, scope string, authorID uuid.UUID, req dto.SavePageRequest) (*dto.PageResponse, error) {
	args := m.Called(ctx, scope, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PageResponse), args.Error(1)
}

func (m *MockPageService) UpdatePage(ctx context.Context, scope string, pageID uuid.UUID, req dto.SavePageRequest) (*dto.PageResponse, error) {
	args := m.Called(ctx, scope, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PageResponse), args.Error(1)
}

func (m *MockPageService) GetPage(ctx context.Context, pageID uuid.UUID) (*dto.PageResponse, error) {
	args := m.Called(ctx, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PageResponse), args.Error(1)
}

func (m *MockPageService) ListPages(ctx context.Context, statusFilter string, page, perPage int) (*dto.PageListResponse, error) {
	args := m.Called(ctx, statusFilter, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PageListResponse), args.Error(1)
}

func (m *MockPageService) DeletePage(ctx context.Context, pageID uuid.UUID) error {
	args := m.Called(ctx, pageID)
	return args.Error(0)
}

func (m *MockPageService) AppendTemplateBlock(ctx context.Context, pageID, templateID uuid.UUID) (*dto.PageResponse, error) {
	args := m.Called(ctx, pageID, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PageResponse), args.Error(1)
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) UploadFile(ctx context.Context, in uploader.UploadInput) (models.MediaReference, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.MediaReference), args.Error(1)
}

func (m *MockMediaService) DeleteFile(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMediaService) ListMedia(ctx context.Context, page, limit int, mediaType, search string) (*dto.MediaListResponse, error) {
	args := m.Called(ctx, page, limit, mediaType, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MediaListResponse), args.Error(1)
}

func (m *MockMediaService) DeleteMedia(ctx context.Context, id uuid.UUID, force bool) error {
	args := m.Called(ctx, id, force)
	return args.Error(0)
}

func (m *MockMediaService) BulkDelete(ctx context.Context, ids []uuid.UUID, force bool) (*dto.BulkDeleteResponse, error) {
	args := m.Called(ctx, ids, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BulkDeleteResponse), args.Error(1)
}

type MockUploads struct {
	mock.Mock
}

func (m *MockUploads) Track(ctx context.Context, scope, key string, in uploader.UploadInput) (models.MediaReference, error) {
	args := m.Called(ctx, scope, key, in)
	return args.Get(0).(models.MediaReference), args.Error(1)
}

func (m *MockUploads) Upload(ctx context.Context, scope string, col *blocks.Collection, target uploader.Target, in uploader.UploadInput) (models.MediaReference, error) {
	args := m.Called(ctx, scope, col, target, in)
	return args.Get(0).(models.MediaReference), args.Error(1)
}

func (m *MockUploads) Remove(ctx context.Context, scope string, col *blocks.Collection, target uploader.Target) error {
	args := m.Called(ctx, scope, col, target)
	return args.Error(0)
}

func (m *MockUploads) States(scope string) map[string]uploader.State {
	args := m.Called(scope)
	return args.Get(0).(map[string]uploader.State)
}

func (m *MockUploads) Release(scope string) {
	m.Called(scope)
}

type MockSEOService struct {
	mock.Mock
}

func (m *MockSEOService) AnalyzeSEO(ctx context.Context, req dto.AnalyzeSEORequest) (dto.SEOResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(dto.SEOResult), args.Error(1)
}

func (m *MockSEOService) AnalyzeBlogSEO(ctx context.Context, req dto.AnalyzeBlogSEORequest) (dto.SEOResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dto.SEOResult), args.Error(1)
}

func (m *MockSEOService) AnalyzeSiteSEO(ctx context.Context, req dto.AnalyzeSiteSEORequest) (dto.SEOResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dto.SEOResult), args.Error(1)
}

func (m *MockSEOService) SuggestKeywords(ctx context.Context, req dto.SuggestKeywordsRequest) (dto.SEOResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dto.SEOResult), args.Error(1)
}

// testServer wires a Routers instance into an echo app the way the real
// server does, with the session middleware and an optional authenticated
// operator baked into every request.
func testServer(t *testing.T, routers *httprouters.Routers, userID uuid.UUID, register func(e *echo.Echo)) *echo.Echo {
	t.Helper()

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}
	e.Use(session.Middleware(sessions.NewCookieStore([]byte("test"))))

	if userID != uuid.Nil {
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				sess, _ := session.Get("session", c)
				sess.Values["user_id"] = userID.String()
				return next(c)
			}
		})
	}

	register(e)
	return e
}

func newRouters(page *MockPageService, mediaSvc *MockMediaService, uploads *MockUploads, seo *MockSEOService) *httprouters.Routers {
	return httprouters.NewRouter(slog.Default(), nil, nil, page, mediaSvc, nil, seo, uploads)
}

func TestRegister(t *testing.T) {
	body := `{"name":"Op","email":"op@example.com","password":"secret-pass"}`

	t.Run("created", func(t *testing.T) {
		users := new(MockUserService)
		routers := httprouters.NewRouter(slog.Default(), users, nil, nil, nil, nil, nil, nil)

		userID := uuid.New()
		users.On("Register", mock.Anything, "Op", "op@example.com", "secret-pass").
			Return(userID, nil).Once()

		e := testServer(t, routers, uuid.Nil, func(e *echo.Echo) {
			e.POST("/api/v1/register", routers.Register)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), userID.String())
		users.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := new(MockUserService)
		routers := httprouters.NewRouter(slog.Default(), users, nil, nil, nil, nil, nil, nil)

		users.On("Register", mock.Anything, "Op", "op@example.com", "secret-pass").
			Return(uuid.Nil, fmt.Errorf("user_service.Register: %w", usersvc.ErrUserExists)).Once()

		e := testServer(t, routers, uuid.Nil, func(e *echo.Echo) {
			e.POST("/api/v1/register", routers.Register)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "user_already_exists")
	})
}

func TestRefresh(t *testing.T) {
	t.Run("rotated", func(t *testing.T) {
		auth := new(MockAuthService)
		routers := httprouters.NewRouter(slog.Default(), nil, auth, nil, nil, nil, nil, nil)

		pair := &models.TokenPair{UserID: uuid.New(), AccessToken: "a2", RefreshToken: "r2"}
		auth.On("RefreshTokens", mock.Anything, "r1").Return(pair, nil).Once()

		e := testServer(t, routers, uuid.Nil, func(e *echo.Echo) {
			e.POST("/api/v1/refresh", routers.Refresh)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", strings.NewReader(`{"refresh_token":"r1"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "r2")
		auth.AssertExpectations(t)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		routers := httprouters.NewRouter(slog.Default(), nil, new(MockAuthService), nil, nil, nil, nil, nil)

		e := testServer(t, routers, uuid.Nil, func(e *echo.Echo) {
			e.POST("/api/v1/refresh", routers.Refresh)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestIsAdminPermission(t *testing.T) {
	t.Run("answers with a corrupt session cookie", func(t *testing.T) {
		users := new(MockUserService)
		routers := httprouters.NewRouter(slog.Default(), users, nil, nil, nil, nil, nil, nil)

		userID := uuid.New()
		users.On("IsAdmin", mock.Anything, userID).Return(true, nil).Once()

		e := testServer(t, routers, uuid.Nil, func(e *echo.Echo) {
			e.GET("/api/v1/users/:user_id/is-admin", routers.IsAdminPermission)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+userID.String()+"/is-admin", nil)
		req.Header.Set("Cookie", "session=not-a-valid-session-value")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"is_admin":true`)
	})

	t.Run("answers without a session store", func(t *testing.T) {
		users := new(MockUserService)
		routers := httprouters.NewRouter(slog.Default(), users, nil, nil, nil, nil, nil, nil)

		userID := uuid.New()
		users.On("IsAdmin", mock.Anything, userID).Return(false, nil).Once()

		e := echo.New()
		e.Validator = &testValidator{validate: validator.New()}
		e.GET("/api/v1/users/:user_id/is-admin", routers.IsAdminPermission)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+userID.String()+"/is-admin", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"is_admin":false`)
	})
}

func TestCreatePage(t *testing.T) {
	authorID := uuid.New()
	body := `{"title":"About Us","blocks":[]}`

	t.Run("created", func(t *testing.T) {
		page := new(MockPageService)
		routers := newRouters(page, nil, nil, nil)

		resp := &dto.PageResponse{ID: uuid.New(), Title: "About Us", Slug: "about-us"}
		page.On("CreatePage", mock.Anything, mock.AnythingOfType("string"), authorID,
			mock.MatchedBy(func(req dto.SavePageRequest) bool { return req.Title == "About Us" }),
		).Return(resp, nil).Once()

		e := testServer(t, routers, authorID, func(e *echo.Echo) {
			e.POST("/api/v1/pages", routers.CreatePage)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/pages", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "about-us")
		page.AssertExpectations(t)
	})

	t.Run("uploads in flight", func(t *testing.T) {
		page := new(MockPageService)
		routers := newRouters(page, nil, nil, nil)

		page.On("CreatePage", mock.Anything, mock.Anything, authorID, mock.Anything).
			Return(nil, fmt.Errorf("page_service.CreatePage: %w", pagesvc.ErrUploadsInFlight)).Once()

		e := testServer(t, routers, authorID, func(e *echo.Echo) {
			e.POST("/api/v1/pages", routers.CreatePage)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/pages", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "uploads_in_flight")
	})

	t.Run("slug conflict", func(t *testing.T) {
		page := new(MockPageService)
		routers := newRouters(page, nil, nil, nil)

		page.On("CreatePage", mock.Anything, mock.Anything, authorID, mock.Anything).
			Return(nil, fmt.Errorf("page_service.CreatePage: %w", appstorage.ErrSlugTaken)).Once()

		e := testServer(t, routers, authorID, func(e *echo.Echo) {
			e.POST("/api/v1/pages", routers.CreatePage)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/pages", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "slug_taken")
	})

	t.Run("missing title rejected", func(t *testing.T) {
		routers := newRouters(new(MockPageService), nil, nil, nil)

		e := testServer(t, routers, authorID, func(e *echo.Echo) {
			e.POST("/api/v1/pages", routers.CreatePage)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/pages", strings.NewReader(`{"slug":"x"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no session user", func(t *testing.T) {
		routers := newRouters(new(MockPageService), nil, nil, nil)

		e := testServer(t, routers, uuid.Nil, func(e *echo.Echo) {
			e.POST("/api/v1/pages", routers.CreatePage)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/pages", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetPage(t *testing.T) {
	userID := uuid.New()

	t.Run("not found", func(t *testing.T) {
		page := new(MockPageService)
		routers := newRouters(page, nil, nil, nil)

		pageID := uuid.New()
		page.On("GetPage", mock.Anything, pageID).
			Return(nil, fmt.Errorf("page_service.GetPage: %w", appstorage.ErrPageNotFound)).Once()

		e := testServer(t, routers, userID, func(e *echo.Echo) {
			e.GET("/api/v1/pages/:page_id", routers.GetPage)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/pages/"+pageID.String(), nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "page_not_found")
	})

	t.Run("malformed id", func(t *testing.T) {
		routers := newRouters(new(MockPageService), nil, nil, nil)

		e := testServer(t, routers, userID, func(e *echo.Echo) {
			e.GET("/api/v1/pages/:page_id", routers.GetPage)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/pages/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestUploadFile(t *testing.T) {
	userID := uuid.New()
	ref := models.MediaReference{ID: uuid.New(), URL: "http://localhost:8080/uploads/x.jpg"}

	t.Run("tracked upload with field key", func(t *testing.T) {
		uploads := new(MockUploads)
		routers := newRouters(nil, new(MockMediaService), uploads, nil)

		uploads.On("Track", mock.Anything, mock.AnythingOfType("string"), "0.image",
			mock.MatchedBy(func(in uploader.UploadInput) bool {
				return in.Filename == "photo.jpg" && in.UploaderID == userID && in.AddToLibrary
			}),
		).Return(ref, nil).Once()

		e := testServer(t, routers, userID, func(e *echo.Echo) {
			e.POST("/api/v1/uploadfile", routers.UploadFile)
		})

		body, contentType := multipartBody(t, map[string]string{
			"fieldKey":          "0.image",
			"addToMediaLibrary": "true",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploadfile", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), ref.ID.String())
		uploads.AssertExpectations(t)
	})

	t.Run("untracked upload goes straight to the store", func(t *testing.T) {
		mediaSvc := new(MockMediaService)
		routers := newRouters(nil, mediaSvc, new(MockUploads), nil)

		mediaSvc.On("UploadFile", mock.Anything, mock.AnythingOfType("uploader.UploadInput")).
			Return(ref, nil).Once()

		e := testServer(t, routers, userID, func(e *echo.Echo) {
			e.POST("/api/v1/uploadfile", routers.UploadFile)
		})

		body, contentType := multipartBody(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploadfile", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		mediaSvc.AssertExpectations(t)
	})

	t.Run("oversized file", func(t *testing.T) {
		mediaSvc := new(MockMediaService)
		routers := newRouters(nil, mediaSvc, new(MockUploads), nil)

		mediaSvc.On("UploadFile", mock.Anything, mock.Anything).
			Return(models.MediaReference{}, fmt.Errorf("media_service.Upload: %w", appstorage.ErrFileTooLarge)).Once()

		e := testServer(t, routers, userID, func(e *echo.Echo) {
			e.POST("/api/v1/uploadfile", routers.UploadFile)
		})

		body, contentType := multipartBody(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploadfile", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), "file_too_large")
	})

	t.Run("second upload for the same field", func(t *testing.T) {
		uploads := new(MockUploads)
		routers := newRouters(nil, new(MockMediaService), uploads, nil)

		uploads.On("Track", mock.Anything, mock.Anything, "0.image", mock.Anything).
			Return(models.MediaReference{}, fmt.Errorf("uploader.Coordinator.Track: %w", uploader.ErrUploadInFlight)).Once()

		e := testServer(t, routers, userID, func(e *echo.Echo) {
			e.POST("/api/v1/uploadfile", routers.UploadFile)
		})

		body, contentType := multipartBody(t, map[string]string{"fieldKey": "0.image"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploadfile", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestDeleteMedia(t *testing.T) {
	userID := uuid.New()

	t.Run("in use refused", func(t *testing.T) {
		mediaSvc := new(MockMediaService)
		routers := newRouters(nil, mediaSvc, nil, nil)

		mediaID := uuid.New()
		mediaSvc.On("DeleteMedia", mock.Anything, mediaID, false).
			Return(fmt.Errorf("media_service.DeleteMedia: %w", appstorage.ErrMediaInUse)).Once()

		e := testServer(t, routers, userID, func(e *echo.Echo) {
			e.DELETE("/api/v1/media/:media_id", routers.DeleteMedia)
		})

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/media/"+mediaID.String(), nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "media_in_use")
	})

	t.Run("forced", func(t *testing.T) {
		mediaSvc := new(MockMediaService)
		routers := newRouters(nil, mediaSvc, nil, nil)

		mediaID := uuid.New()
		mediaSvc.On("DeleteMedia", mock.Anything, mediaID, true).Return(nil).Once()

		e := testServer(t, routers, userID, func(e *echo.Echo) {
			e.DELETE("/api/v1/media/:media_id", routers.DeleteMedia)
		})

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/media/"+mediaID.String()+"?force=true", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		mediaSvc.AssertExpectations(t)
	})
}

func TestBulkDeleteMedia(t *testing.T) {
	userID := uuid.New()

	t.Run("empty id list rejected", func(t *testing.T) {
		routers := newRouters(nil, new(MockMediaService), nil, nil)

		e := testServer(t, routers, userID, func(e *echo.Echo) {
			e.POST("/api/v1/media/bulk-delete", routers.BulkDeleteMedia)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/bulk-delete", strings.NewReader(`{"ids":[]}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("skipped entries reported", func(t *testing.T) {
		mediaSvc := new(MockMediaService)
		routers := newRouters(nil, mediaSvc, nil, nil)

		ids := []uuid.UUID{uuid.New(), uuid.New()}
		mediaSvc.On("BulkDelete", mock.Anything, ids, false).
			Return(&dto.BulkDeleteResponse{Deleted: 1, Skipped: ids[1:]}, nil).Once()

		e := testServer(t, routers, userID, func(e *echo.Echo) {
			e.POST("/api/v1/media/bulk-delete", routers.BulkDeleteMedia)
		})

		payload, err := json.Marshal(dto.BulkDeleteRequest{IDs: ids})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/bulk-delete", bytes.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), ids[1].String())
	})
}

func TestUploadStates(t *testing.T) {
	userID := uuid.New()
	uploads := new(MockUploads)
	routers := newRouters(nil, nil, uploads, nil)

	uploads.On("States", mock.AnythingOfType("string")).Return(map[string]uploader.State{
		"0.image": {Loading: true},
	}).Once()

	e := testServer(t, routers, userID, func(e *echo.Echo) {
		e.GET("/api/v1/pages/upload-states", routers.UploadStates)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pages/upload-states", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loading":true`)
}

func TestAnalyzeSEO(t *testing.T) {
	userID := uuid.New()

	t.Run("result passed through", func(t *testing.T) {
		seo := new(MockSEOService)
		routers := newRouters(nil, nil, nil, seo)

		seo.On("AnalyzeSEO", mock.Anything, dto.AnalyzeSEORequest{Content: "hello", Keyword: "greeting"}).
			Return(dto.SEOResult{"score": 80.0}, nil).Once()

		e := testServer(t, routers, userID, func(e *echo.Echo) {
			e.POST("/api/v1/seo/analyze", routers.AnalyzeSEO)
		})

		body := `{"content":"hello","keyword":"greeting"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/seo/analyze", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"score":80`)
	})

	t.Run("analyzer unreachable", func(t *testing.T) {
		seo := new(MockSEOService)
		routers := newRouters(nil, nil, nil, seo)

		seo.On("AnalyzeSEO", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("seo_service.AnalyzeSEO: connection refused")).Once()

		e := testServer(t, routers, userID, func(e *echo.Echo) {
			e.POST("/api/v1/seo/analyze", routers.AnalyzeSEO)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/seo/analyze", strings.NewReader(`{"content":"hello"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "seo_unavailable")
	})
}
