package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"pagecraft/internal/blocks"
	"pagecraft/internal/domain/models"
	"pagecraft/internal/lib/logger/sl"
	"pagecraft/internal/metrics"
	pagesvc "pagecraft/internal/services/page_service"
	usersvc "pagecraft/internal/services/user_service"
	appstorage "pagecraft/internal/storage"
	"pagecraft/internal/transport/http/dto"
	"pagecraft/internal/transport/http/dto/response"
	"pagecraft/internal/uploader"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	_ "pagecraft/docs"
)

type UserService interface {
	Register(ctx context.Context, name, email, password string) (uuid.UUID, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type AuthService interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

type PageService interface {
	CreatePage(ctx context.Context, scope string, authorID uuid.UUID, req dto.SavePageRequest) (*dto.PageResponse, error)
	UpdatePage(ctx context.Context, scope string, pageID uuid.UUID, req dto.SavePageRequest) (*dto.PageResponse, error)
	GetPage(ctx context.Context, pageID uuid.UUID) (*dto.PageResponse, error)
	ListPages(ctx context.Context, statusFilter string, page, perPage int) (*dto.PageListResponse, error)
	DeletePage(ctx context.Context, pageID uuid.UUID) error
	AppendTemplateBlock(ctx context.Context, pageID, templateID uuid.UUID) (*dto.PageResponse, error)
}

type MediaService interface {
	UploadFile(ctx context.Context, in uploader.UploadInput) (models.MediaReference, error)
	DeleteFile(ctx context.Context, id string) error
	ListMedia(ctx context.Context, page, limit int, mediaType, search string) (*dto.MediaListResponse, error)
	DeleteMedia(ctx context.Context, id uuid.UUID, force bool) error
	BulkDelete(ctx context.Context, ids []uuid.UUID, force bool) (*dto.BulkDeleteResponse, error)
}

type TemplateService interface {
	GetBlockTemplates(ctx context.Context) ([]dto.TemplateResponse, error)
	CreateTemplate(ctx context.Context, req dto.CreateTemplateRequest) (*dto.TemplateResponse, error)
	BuilderConfig() []dto.BuilderBlockType
}

type SEOService interface {
	AnalyzeSEO(ctx context.Context, req dto.AnalyzeSEORequest) (dto.SEOResult, error)
	AnalyzeBlogSEO(ctx context.Context, req dto.AnalyzeBlogSEORequest) (dto.SEOResult, error)
	AnalyzeSiteSEO(ctx context.Context, req dto.AnalyzeSiteSEORequest) (dto.SEOResult, error)
	SuggestKeywords(ctx context.Context, req dto.SuggestKeywordsRequest) (dto.SEOResult, error)
}

// UploadCoordinator tracks per-field upload states of an editor session
// and writes finished references into block content.
type UploadCoordinator interface {
	Track(ctx context.Context, scope, key string, in uploader.UploadInput) (models.MediaReference, error)
	Upload(ctx context.Context, scope string, col *blocks.Collection, target uploader.Target, in uploader.UploadInput) (models.MediaReference, error)
	Remove(ctx context.Context, scope string, col *blocks.Collection, target uploader.Target) error
	States(scope string) map[string]uploader.State
	Release(scope string)
}

type Routers struct {
	log             *slog.Logger
	UserService     UserService
	AuthService     AuthService
	PageService     PageService
	MediaService    MediaService
	TemplateService TemplateService
	SEOService      SEOService
	Uploads         UploadCoordinator
}

func NewRouter(
	log *slog.Logger,
	userService UserService,
	authService AuthService,
	pageService PageService,
	mediaService MediaService,
	templateService TemplateService,
	seoService SEOService,
	uploads UploadCoordinator,
) *Routers {
	return &Routers{
		log:             log,
		UserService:     userService,
		AuthService:     authService,
		PageService:     pageService,
		MediaService:    mediaService,
		TemplateService: templateService,
		SEOService:      seoService,
		Uploads:         uploads,
	}
}

// Login godoc
// @Summary Operator login
// @Description Exchanges email and password for a token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} response.Response{data=dto.TokenResponse}
// @Failure 400 {object} response.ErrorResponse "Invalid request format"
// @Failure 401 {object} response.ErrorResponse "Authentication failed"
// @Router /api/v1/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", slog.String("email", req.Email))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	pair, err := r.UserService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("login refused", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	if sess, err := session.Get("session", c); err == nil {
		sess.Values["user_id"] = pair.UserID.String()
		sess.Save(c.Request(), c.Response())
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.TokenResponse{
		UserID:       pair.UserID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}))
}

// Register godoc
// @Summary Register a new operator
// @Description Creates an account and returns its id.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration data"
// @Success 201 {object} response.Response{data=object{user_id=string}}
// @Failure 400 {object} response.ErrorResponse "Invalid request format"
// @Failure 409 {object} response.ErrorResponse "User already exists"
// @Router /api/v1/register [post]
func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.RegisterRequest

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRegisterRequest)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRegisterRequest)
	}

	userID, err := r.UserService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usersvc.ErrUserExists) {
			log.Warn("user already exists", slog.String("email", req.Email))
			return c.JSON(http.StatusConflict, response.ErrUserAlreadyExists)
		}

		log.Error("registration failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	log.Info("user registered", slog.String("user_id", userID.String()))

	return c.JSON(http.StatusCreated, response.Response{
		Status: "success",
		Data: map[string]uuid.UUID{
			"user_id": userID,
		},
	})
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} response.Response{data=dto.TokenResponse}
// @Failure 401 {object} response.ErrorResponse "Invalid refresh token"
// @Router /api/v1/refresh [post]
func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.RefreshRequest

	if err := c.Bind(&req); err != nil {
		log.Error("validation bind", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	pair, err := r.AuthService.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		log.Warn("refresh refused", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.TokenResponse{
		UserID:       pair.UserID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}))
}

func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	log := r.log.With(
		slog.String("op", op),
	)

	sess, err := session.Get("session", c)
	if err != nil {
		return c.NoContent(http.StatusNoContent)
	}

	if rawID, ok := sess.Values["user_id"].(string); ok {
		if userID, err := uuid.Parse(rawID); err == nil {
			if err := r.AuthService.RevokeAll(c.Request().Context(), userID); err != nil {
				log.Warn("failed to revoke tokens", sl.Err(err))
			}
		}
	}

	if scope, ok := sess.Values["editor_scope"].(string); ok && scope != "" {
		r.Uploads.Release(scope)
	}

	sess.Options.MaxAge = -1
	sess.Save(c.Request(), c.Response())

	return c.NoContent(http.StatusNoContent)
}

// IsAdminPermission godoc
// @Summary Check administrative status
// @Tags users
// @Produce json
// @Param user_id path string true "User UUID" format(uuid)
// @Success 200 {object} map[string]bool
// @Failure 400 {object} response.ErrorResponse "Invalid UUID"
// @Security ApiKeyAuth
// @Router /api/v1/users/{user_id}/is-admin [get]
func (r *Routers) IsAdminPermission(c echo.Context) error {
	const op = "http.routers.IsAdminPermission"

	log := r.log.With(
		slog.String("op", op),
	)

	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		log.Error("error parse uuid", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_uuid", "invalid user ID format"))
	}

	isAdmin, err := r.UserService.IsAdmin(c.Request().Context(), userID)
	if err != nil {
		log.Error("failed to check admin status", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	if sess, err := session.Get("session", c); err == nil {
		sess.Values["user_id"] = userID.String()
		sess.Save(c.Request(), c.Response())
	}

	return c.JSON(http.StatusOK, map[string]bool{
		"is_admin": isAdmin,
	})
}

// CreatePage godoc
// @Summary Save a new page
// @Description Persists a whole page document submitted by the editor.
// @Tags pages
// @Accept json
// @Produce json
// @Param request body dto.SavePageRequest true "Page document"
// @Success 201 {object} response.Response{data=dto.PageResponse}
// @Failure 400 {object} response.ErrorResponse "Invalid request format"
// @Failure 409 {object} response.ErrorResponse "Slug taken or uploads in flight"
// @Security ApiKeyAuth
// @Router /api/v1/pages [post]
func (r *Routers) CreatePage(c echo.Context) error {
	const op = "http.routers.CreatePage"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.SavePageRequest

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	authorID, err := sessionUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	page, err := r.PageService.CreatePage(c.Request().Context(), editorScope(c), authorID, req)
	if err != nil {
		return r.pageError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(page))
}

// UpdatePage godoc
// @Summary Save an existing page
// @Description Replaces the stored document with the submitted one.
// @Tags pages
// @Accept json
// @Produce json
// @Param page_id path string true "Page UUID" format(uuid)
// @Param request body dto.SavePageRequest true "Page document"
// @Success 200 {object} response.Response{data=dto.PageResponse}
// @Failure 404 {object} response.ErrorResponse "Page not found"
// @Failure 409 {object} response.ErrorResponse "Slug taken or uploads in flight"
// @Security ApiKeyAuth
// @Router /api/v1/pages/{page_id} [put]
func (r *Routers) UpdatePage(c echo.Context) error {
	const op = "http.routers.UpdatePage"

	log := r.log.With(
		slog.String("op", op),
	)

	pageID, err := uuid.Parse(c.Param("page_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_uuid", "invalid page ID format"))
	}

	var req dto.SavePageRequest

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	page, err := r.PageService.UpdatePage(c.Request().Context(), editorScope(c), pageID, req)
	if err != nil {
		return r.pageError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(page))
}

// GetPage godoc
// @Summary Load one page for editing
// @Tags pages
// @Produce json
// @Param page_id path string true "Page UUID" format(uuid)
// @Success 200 {object} response.Response{data=dto.PageResponse}
// @Failure 404 {object} response.ErrorResponse "Page not found"
// @Security ApiKeyAuth
// @Router /api/v1/pages/{page_id} [get]
func (r *Routers) GetPage(c echo.Context) error {
	const op = "http.routers.GetPage"

	log := r.log.With(
		slog.String("op", op),
	)

	pageID, err := uuid.Parse(c.Param("page_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_uuid", "invalid page ID format"))
	}

	page, err := r.PageService.GetPage(c.Request().Context(), pageID)
	if err != nil {
		return r.pageError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(page))
}

// ListPages godoc
// @Summary List pages
// @Tags pages
// @Produce json
// @Param status query string false "Filter by status" Enums(draft, published)
// @Param page query integer false "Page number"
// @Param per_page query integer false "Page size"
// @Success 200 {object} response.Response{data=dto.PageListResponse}
// @Security ApiKeyAuth
// @Router /api/v1/pages [get]
func (r *Routers) ListPages(c echo.Context) error {
	const op = "http.routers.ListPages"

	log := r.log.With(
		slog.String("op", op),
	)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	list, err := r.PageService.ListPages(c.Request().Context(), c.QueryParam("status"), page, perPage)
	if err != nil {
		log.Error("failed to list pages", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(list))
}

// DeletePage godoc
// @Summary Delete a page
// @Description Removes the document and releases every file it referenced.
// @Tags pages
// @Param page_id path string true "Page UUID" format(uuid)
// @Success 204 "Deleted"
// @Failure 404 {object} response.ErrorResponse "Page not found"
// @Security ApiKeyAuth
// @Router /api/v1/pages/{page_id} [delete]
func (r *Routers) DeletePage(c echo.Context) error {
	const op = "http.routers.DeletePage"

	log := r.log.With(
		slog.String("op", op),
	)

	pageID, err := uuid.Parse(c.Param("page_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_uuid", "invalid page ID format"))
	}

	if err := r.PageService.DeletePage(c.Request().Context(), pageID); err != nil {
		return r.pageError(c, log, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AppendTemplateBlock godoc
// @Summary Append a template block to a page
// @Tags pages
// @Produce json
// @Param page_id path string true "Page UUID" format(uuid)
// @Param template_id path string true "Template UUID" format(uuid)
// @Success 200 {object} response.Response{data=dto.PageResponse}
// @Failure 404 {object} response.ErrorResponse "Page or template not found"
// @Security ApiKeyAuth
// @Router /api/v1/pages/{page_id}/templates/{template_id} [post]
func (r *Routers) AppendTemplateBlock(c echo.Context) error {
	const op = "http.routers.AppendTemplateBlock"

	log := r.log.With(
		slog.String("op", op),
	)

	pageID, err := uuid.Parse(c.Param("page_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_uuid", "invalid page ID format"))
	}

	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_uuid", "invalid template ID format"))
	}

	page, err := r.PageService.AppendTemplateBlock(c.Request().Context(), pageID, templateID)
	if err != nil {
		return r.pageError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(page))
}

// UploadBlockFile godoc
// @Summary Upload a file into a block content slot
// @Description Stores the file and writes its reference into the targeted
// @Description slot of the page, then saves the page.
// @Tags pages
// @Accept multipart/form-data
// @Produce json
// @Param page_id path string true "Page UUID" format(uuid)
// @Param file formData file true "File to upload"
// @Param block formData integer true "Block index"
// @Param field formData string true "Content field"
// @Param item formData integer false "List item index"
// @Param itemField formData string false "List item field"
// @Success 200 {object} response.Response{data=object{reference=models.MediaReference,page=dto.PageResponse}}
// @Failure 409 {object} response.ErrorResponse "Upload already running for this field"
// @Failure 413 {object} response.ErrorResponse "File too large"
// @Security ApiKeyAuth
// @Router /api/v1/pages/{page_id}/blocks/upload [post]
func (r *Routers) UploadBlockFile(c echo.Context) error {
	const op = "http.routers.UploadBlockFile"

	log := r.log.With(
		slog.String("op", op),
	)

	pageID, err := uuid.Parse(c.Param("page_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_uuid", "invalid page ID format"))
	}

	var req dto.BlockUploadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "file is required"))
	}

	uploaderID, err := sessionUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	page, err := r.PageService.GetPage(c.Request().Context(), pageID)
	if err != nil {
		return r.pageError(c, log, err)
	}

	src, err := file.Open()
	if err != nil {
		log.Error("failed to open uploaded file", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}
	defer src.Close()

	scope := editorScope(c)
	col := blocks.New(page.Blocks)
	target := uploader.Target{
		Block:     req.Block,
		Field:     req.Field,
		Item:      req.Item,
		ItemField: req.ItemField,
	}

	ref, err := r.Uploads.Upload(c.Request().Context(), scope, col, target, uploader.UploadInput{
		UploaderID: uploaderID,
		Filename:   file.Filename,
		MimeType:   file.Header.Get("Content-Type"),
		Reader:     src,
		Size:       file.Size,
		SetAsInUse: true,
	})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("failure").Inc()
		return r.uploadError(c, log, err)
	}
	metrics.UploadsTotal.WithLabelValues("success").Inc()

	updated, err := r.PageService.UpdatePage(c.Request().Context(), scope, pageID, savePageRequestFrom(page, col.Blocks()))
	if err != nil {
		return r.pageError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]any{
		"reference": ref,
		"page":      updated,
	}))
}

// RemoveBlockFile godoc
// @Summary Remove a file from a block content slot
// @Description Nulls the slot, releases the stored file and saves the page.
// @Tags pages
// @Accept json
// @Produce json
// @Param page_id path string true "Page UUID" format(uuid)
// @Param request body dto.BlockRemoveRequest true "Target slot"
// @Success 200 {object} response.Response{data=dto.PageResponse}
// @Failure 404 {object} response.ErrorResponse "Page not found"
// @Security ApiKeyAuth
// @Router /api/v1/pages/{page_id}/blocks/remove [post]
func (r *Routers) RemoveBlockFile(c echo.Context) error {
	const op = "http.routers.RemoveBlockFile"

	log := r.log.With(
		slog.String("op", op),
	)

	pageID, err := uuid.Parse(c.Param("page_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_uuid", "invalid page ID format"))
	}

	var req dto.BlockRemoveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	page, err := r.PageService.GetPage(c.Request().Context(), pageID)
	if err != nil {
		return r.pageError(c, log, err)
	}

	scope := editorScope(c)
	col := blocks.New(page.Blocks)
	target := uploader.Target{
		Block:     req.Block,
		Field:     req.Field,
		Item:      req.Item,
		ItemField: req.ItemField,
	}

	if err := r.Uploads.Remove(c.Request().Context(), scope, col, target); err != nil {
		if errors.Is(err, blocks.ErrIndexOutOfRange) {
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
		}
		log.Error("failed to remove file", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	updated, err := r.PageService.UpdatePage(c.Request().Context(), scope, pageID, savePageRequestFrom(page, col.Blocks()))
	if err != nil {
		return r.pageError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(updated))
}

func (r *Routers) UploadStates(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse(r.Uploads.States(editorScope(c))))
}

// UploadFile godoc
// @Summary Upload a file
// @Description Stores a file and returns its public reference. With
// @Description fieldKey set the transfer is tracked as an in-flight editor
// @Description field and blocks page saves until it finishes.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param addToMediaLibrary formData boolean false "List the file in the media library"
// @Param setAsInUse formData boolean false "Mark the file as referenced"
// @Param fieldKey formData string false "Editor field the upload belongs to"
// @Success 201 {object} response.Response{data=models.MediaReference}
// @Failure 409 {object} response.ErrorResponse "Upload already running for this field"
// @Failure 413 {object} response.ErrorResponse "File too large"
// @Security ApiKeyAuth
// @Router /api/v1/uploadfile [post]
func (r *Routers) UploadFile(c echo.Context) error {
	const op = "http.routers.UploadFile"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.FileUploadInput

	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind upload form", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("empty file in request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "file is required"))
	}

	uploaderID, err := sessionUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	file := req.File

	src, err := file.Open()
	if err != nil {
		log.Error("failed to open uploaded file", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}
	defer src.Close()

	in := uploader.UploadInput{
		UploaderID:   uploaderID,
		Filename:     file.Filename,
		MimeType:     file.Header.Get("Content-Type"),
		Reader:       src,
		Size:         file.Size,
		AddToLibrary: req.AddToMediaLibrary,
		SetAsInUse:   req.SetAsInUse,
	}

	var ref models.MediaReference
	if req.FieldKey != "" {
		ref, err = r.Uploads.Track(c.Request().Context(), editorScope(c), req.FieldKey, in)
	} else {
		ref, err = r.MediaService.UploadFile(c.Request().Context(), in)
	}
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("failure").Inc()
		return r.uploadError(c, log, err)
	}
	metrics.UploadsTotal.WithLabelValues("success").Inc()

	log.Info("file uploaded",
		slog.String("media_id", ref.ID.String()),
		slog.String("filename", file.Filename),
		slog.Int64("size", file.Size),
	)

	return c.JSON(http.StatusCreated, response.SuccessResponse(ref))
}

// DeleteFile godoc
// @Summary Delete a stored file
// @Tags media
// @Param fileName query string true "Media UUID" format(uuid)
// @Success 204 "Deleted"
// @Failure 400 {object} response.ErrorResponse "Missing or malformed id"
// @Security ApiKeyAuth
// @Router /api/v1/deletefile [delete]
func (r *Routers) DeleteFile(c echo.Context) error {
	const op = "http.routers.DeleteFile"

	log := r.log.With(
		slog.String("op", op),
	)

	fileName := c.QueryParam("fileName")
	if fileName == "" {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "fileName is required"))
	}

	if err := r.MediaService.DeleteFile(c.Request().Context(), fileName); err != nil {
		log.Error("failed to delete file", slog.String("file", fileName), sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "malformed file id"))
	}

	return c.NoContent(http.StatusNoContent)
}

// ListMedia godoc
// @Summary Browse the media library
// @Tags media
// @Produce json
// @Param page query integer false "Page number"
// @Param limit query integer false "Page size"
// @Param type query string false "Filter by media type" Enums(image, video, document)
// @Param search query string false "Filename substring filter"
// @Success 200 {object} response.Response{data=dto.MediaListResponse}
// @Security ApiKeyAuth
// @Router /api/v1/media [get]
func (r *Routers) ListMedia(c echo.Context) error {
	const op = "http.routers.ListMedia"

	log := r.log.With(
		slog.String("op", op),
	)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	list, err := r.MediaService.ListMedia(c.Request().Context(), page, limit, c.QueryParam("type"), c.QueryParam("search"))
	if err != nil {
		log.Error("failed to list media", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(list))
}

// DeleteMedia godoc
// @Summary Delete a media library entry
// @Description Refuses to delete a file still referenced by a page unless
// @Description force=true.
// @Tags media
// @Param media_id path string true "Media UUID" format(uuid)
// @Param force query boolean false "Delete even when referenced"
// @Success 204 "Deleted"
// @Failure 404 {object} response.ErrorResponse "Media not found"
// @Failure 409 {object} response.ErrorResponse "Media still referenced"
// @Security ApiKeyAuth
// @Router /api/v1/media/{media_id} [delete]
func (r *Routers) DeleteMedia(c echo.Context) error {
	const op = "http.routers.DeleteMedia"

	log := r.log.With(
		slog.String("op", op),
	)

	mediaID, err := uuid.Parse(c.Param("media_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_uuid", "invalid media ID format"))
	}

	force, _ := strconv.ParseBool(c.QueryParam("force"))

	if err := r.MediaService.DeleteMedia(c.Request().Context(), mediaID, force); err != nil {
		switch {
		case errors.Is(err, appstorage.ErrMediaNotFound):
			return c.JSON(http.StatusNotFound, response.ErrMediaNotFound)
		case errors.Is(err, appstorage.ErrMediaInUse):
			return c.JSON(http.StatusConflict, response.ErrMediaInUse)
		}
		log.Error("failed to delete media", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.NoContent(http.StatusNoContent)
}

// BulkDeleteMedia godoc
// @Summary Delete several media library entries
// @Description In-use and missing entries are skipped and reported back.
// @Tags media
// @Accept json
// @Produce json
// @Param request body dto.BulkDeleteRequest true "Entry ids"
// @Param force query boolean false "Delete even when referenced"
// @Success 200 {object} response.Response{data=dto.BulkDeleteResponse}
// @Security ApiKeyAuth
// @Router /api/v1/media/bulk-delete [post]
func (r *Routers) BulkDeleteMedia(c echo.Context) error {
	const op = "http.routers.BulkDeleteMedia"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.BulkDeleteRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	force, _ := strconv.ParseBool(c.QueryParam("force"))

	result, err := r.MediaService.BulkDelete(c.Request().Context(), req.IDs, force)
	if err != nil {
		log.Error("bulk delete failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(result))
}

// ListTemplates godoc
// @Summary List block templates
// @Tags templates
// @Produce json
// @Success 200 {object} response.Response{data=[]dto.TemplateResponse}
// @Security ApiKeyAuth
// @Router /api/v1/templates [get]
func (r *Routers) ListTemplates(c echo.Context) error {
	const op = "http.routers.ListTemplates"

	log := r.log.With(
		slog.String("op", op),
	)

	templates, err := r.TemplateService.GetBlockTemplates(c.Request().Context())
	if err != nil {
		log.Error("failed to list templates", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(templates))
}

// CreateTemplate godoc
// @Summary Create a block template
// @Tags templates
// @Accept json
// @Produce json
// @Param request body dto.CreateTemplateRequest true "Template"
// @Success 201 {object} response.Response{data=dto.TemplateResponse}
// @Failure 400 {object} response.ErrorResponse "Invalid request format"
// @Security ApiKeyAuth
// @Router /api/v1/templates [post]
func (r *Routers) CreateTemplate(c echo.Context) error {
	const op = "http.routers.CreateTemplate"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CreateTemplateRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	tpl, err := r.TemplateService.CreateTemplate(c.Request().Context(), req)
	if err != nil {
		log.Error("failed to create template", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(tpl))
}

// BuilderConfig godoc
// @Summary Addable block types for the editor
// @Tags templates
// @Produce json
// @Success 200 {object} response.Response{data=[]dto.BuilderBlockType}
// @Security ApiKeyAuth
// @Router /api/v1/builder-config [get]
func (r *Routers) BuilderConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse(r.TemplateService.BuilderConfig()))
}

// AnalyzeSEO godoc
// @Summary Analyze page content
// @Tags seo
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeSEORequest true "Content to analyze"
// @Success 200 {object} response.Response{data=dto.SEOResult}
// @Failure 502 {object} response.ErrorResponse "Analyzer unreachable"
// @Security ApiKeyAuth
// @Router /api/v1/seo/analyze [post]
func (r *Routers) AnalyzeSEO(c echo.Context) error {
	const op = "http.routers.AnalyzeSEO"

	var req dto.AnalyzeSEORequest
	return r.seoCall(c, op, &req, func(ctx context.Context) (dto.SEOResult, error) {
		return r.SEOService.AnalyzeSEO(ctx, req)
	})
}

// AnalyzeBlogSEO godoc
// @Summary Analyze blog post content
// @Tags seo
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeBlogSEORequest true "Post to analyze"
// @Success 200 {object} response.Response{data=dto.SEOResult}
// @Failure 502 {object} response.ErrorResponse "Analyzer unreachable"
// @Security ApiKeyAuth
// @Router /api/v1/seo/analyze-blog [post]
func (r *Routers) AnalyzeBlogSEO(c echo.Context) error {
	const op = "http.routers.AnalyzeBlogSEO"

	var req dto.AnalyzeBlogSEORequest
	return r.seoCall(c, op, &req, func(ctx context.Context) (dto.SEOResult, error) {
		return r.SEOService.AnalyzeBlogSEO(ctx, req)
	})
}

// AnalyzeSiteSEO godoc
// @Summary Analyze a live site URL
// @Tags seo
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeSiteSEORequest true "URL to analyze"
// @Success 200 {object} response.Response{data=dto.SEOResult}
// @Failure 502 {object} response.ErrorResponse "Analyzer unreachable"
// @Security ApiKeyAuth
// @Router /api/v1/seo/analyze-site [post]
func (r *Routers) AnalyzeSiteSEO(c echo.Context) error {
	const op = "http.routers.AnalyzeSiteSEO"

	var req dto.AnalyzeSiteSEORequest
	return r.seoCall(c, op, &req, func(ctx context.Context) (dto.SEOResult, error) {
		return r.SEOService.AnalyzeSiteSEO(ctx, req)
	})
}

// SuggestKeywords godoc
// @Summary Suggest keywords for a topic
// @Tags seo
// @Accept json
// @Produce json
// @Param request body dto.SuggestKeywordsRequest true "Topic"
// @Success 200 {object} response.Response{data=dto.SEOResult}
// @Failure 502 {object} response.ErrorResponse "Analyzer unreachable"
// @Security ApiKeyAuth
// @Router /api/v1/seo/suggest-keywords [post]
func (r *Routers) SuggestKeywords(c echo.Context) error {
	const op = "http.routers.SuggestKeywords"

	var req dto.SuggestKeywordsRequest
	return r.seoCall(c, op, &req, func(ctx context.Context) (dto.SEOResult, error) {
		return r.SEOService.SuggestKeywords(ctx, req)
	})
}

func (r *Routers) seoCall(c echo.Context, op string, req any, call func(ctx context.Context) (dto.SEOResult, error)) error {
	log := r.log.With(
		slog.String("op", op),
	)

	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	result, err := call(c.Request().Context())
	if err != nil {
		log.Error("analyzer call failed", sl.Err(err))
		return c.JSON(http.StatusBadGateway, response.ErrorResponseWithDetails("seo_unavailable", "SEO analyzer is unreachable"))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(result))
}

// pageError maps page service failures to API responses.
func (r *Routers) pageError(c echo.Context, log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, pagesvc.ErrUploadsInFlight):
		return c.JSON(http.StatusConflict, response.ErrUploadsInFlight)
	case errors.Is(err, appstorage.ErrSlugTaken):
		return c.JSON(http.StatusConflict, response.ErrSlugTaken)
	case errors.Is(err, appstorage.ErrPageNotFound):
		return c.JSON(http.StatusNotFound, response.ErrPageNotFound)
	case errors.Is(err, appstorage.ErrTemplateNotFound):
		return c.JSON(http.StatusNotFound, response.ErrorResponseWithDetails("template_not_found", "Block template does not exist"))
	}

	log.Error("page operation failed", sl.Err(err))
	return c.JSON(http.StatusInternalServerError, response.ErrInternal)
}

func (r *Routers) uploadError(c echo.Context, log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, uploader.ErrUploadInFlight):
		return c.JSON(http.StatusConflict, response.ErrorResponseWithDetails("upload_in_flight", "An upload is already running for this field"))
	case errors.Is(err, appstorage.ErrFileTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, blocks.ErrIndexOutOfRange):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	log.Error("upload failed", sl.Err(err))
	return c.JSON(http.StatusInternalServerError, response.ErrInternal)
}

// sessionUserID reads the authenticated operator from the session cookie.
func sessionUserID(c echo.Context) (uuid.UUID, error) {
	sess, err := session.Get("session", c)
	if err != nil {
		return uuid.Nil, err
	}

	raw, ok := sess.Values["user_id"].(string)
	if !ok || raw == "" {
		return uuid.Nil, errors.New("no authenticated user in session")
	}

	return uuid.Parse(raw)
}

// editorScope identifies the editor session upload states belong to. The
// scope survives across requests of one browser session and is minted on
// first use.
func editorScope(c echo.Context) string {
	sess, err := session.Get("session", c)
	if err != nil {
		return "anonymous"
	}

	if scope, ok := sess.Values["editor_scope"].(string); ok && scope != "" {
		return scope
	}

	scope := uuid.NewString()
	sess.Values["editor_scope"] = scope
	sess.Save(c.Request(), c.Response())

	return scope
}

// savePageRequestFrom rebuilds the save payload from a loaded page so a
// block-level mutation can be persisted through the ordinary save path.
func savePageRequestFrom(page *dto.PageResponse, list models.BlockList) dto.SavePageRequest {
	return dto.SavePageRequest{
		Title:        page.Title,
		Slug:         page.Slug,
		Description:  page.Description,
		MetaTitle:    page.MetaTitle,
		MetaKeywords: page.MetaKeywords,
		OGImage:      page.OGImage,
		Status:       string(page.Status),
		Blocks:       list,
	}
}
