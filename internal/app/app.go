package app

import (
	"context"
	"fmt"
	"log/slog"

	httpapp "pagecraft/internal/app/http"
	"pagecraft/internal/config"
	"pagecraft/internal/notifier"
	"pagecraft/internal/repository"
	mediasvc "pagecraft/internal/services/media_service"
	pagesvc "pagecraft/internal/services/page_service"
	seosvc "pagecraft/internal/services/seo_service"
	templatesvc "pagecraft/internal/services/template_service"
	tokensvc "pagecraft/internal/services/token_service"
	usersvc "pagecraft/internal/services/user_service"
	filestorage "pagecraft/internal/storage/filestorage"
	redisapp "pagecraft/internal/storage/redis"
	httprouters "pagecraft/internal/transport/http"
	"pagecraft/internal/uploader"
)

type App struct {
	HTTPServer *httpapp.Server
	repo       *repository.Repository
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	repo, err := repository.NewRepository(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisClient := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
	tokenRepo := repository.NewRedisTokenRepo(redisClient)

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL, cfg.FileStorage.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	notify := notifier.NewSlog(log)

	mediaService := mediasvc.NewMediaService(log, repo.Media, fileStorage)
	uploads := uploader.New(mediaService, notify, log)

	tokenService := tokensvc.NewTokenService(tokenRepo, cfg.TokenSecret)
	userService := usersvc.NewUserService(log, repo.User, tokenService)
	pageService := pagesvc.NewPageService(log, repo.Page, repo.Template, uploads, mediaService, notify)
	templateService := templatesvc.NewTemplateService(log, repo.Template, cfg.TemplateCacheTTL)
	seoService := seosvc.NewSEOService(log, cfg.SEO.BaseURL, cfg.SEO.APIKey, cfg.SEO.Timeout, cfg.SEO.CacheTTL, notify)

	routers := httprouters.NewRouter(
		log,
		userService,
		tokenService,
		pageService,
		mediaService,
		templateService,
		seoService,
		uploads,
	)

	server := httpapp.New(
		log,
		cfg.TokenSecret,
		cfg.SessionKey,
		cfg.HTTP.Host,
		cfg.HTTP.Port,
		cfg.FileStorage.BaseDir,
		routers,
	)

	return &App{
		HTTPServer: server,
		repo:       repo,
	}, nil
}

func (a *App) Stop() error {
	if err := a.HTTPServer.Stop(); err != nil {
		return err
	}
	a.repo.Close()
	return nil
}
