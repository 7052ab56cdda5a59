package app

import (
	"context"
	"log/slog"

	httpapp "blogforge/internal/app/http"
	"blogforge/internal/config"
	"blogforge/internal/repository"
	blogsvc "blogforge/internal/services/blog_service"
	"blogforge/internal/services/identity"
	mediasvc "blogforge/internal/services/media_service"
	templatesvc "blogforge/internal/services/template_service"
	filestorage "blogforge/internal/storage/filestorage"
	"blogforge/internal/storage/postgresql"
	redisapp "blogforge/internal/storage/redis"
	s3storage "blogforge/internal/storage/s3"
	httprouters "blogforge/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	Storage    *postgresql.Storage
	Redis      *redisapp.Client

	log *slog.Logger
}

func New(log *slog.Logger, cfg *config.Config) *App {
	ctx := context.Background()

	storage, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		panic(err)
	}

	redisClient := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	blobStorage, err := buildBlobStorage(ctx, cfg)
	if err != nil {
		panic(err)
	}

	repos := repository.NewRepository(storage.Pool(), redisClient)

	identityService := identity.New(log, repos.Sessions, cfg.TokenSecret, cfg.TokenTTL)
	mediaService := mediasvc.NewMediaService(log, blobStorage)

	blogService := blogsvc.NewBlogService(
		log,
		repos.Blogs,
		repos.Blocks,
		repos.Assets,
		repos.Relations,
		repos.Templates,
		identityService,
		mediaService,
	)

	templateService := templatesvc.NewTemplateService(log, repos.Templates, identityService)

	routers := httprouters.NewRouter(log, blogService, templateService)

	server := httpapp.New(log, cfg.TokenSecret, cfg.HTTP.Host, cfg.HTTP.Port, routers)
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		Storage:    storage,
		Redis:      redisClient,
		log:        log,
	}
}

// buildBlobStorage выбирает бекенд для медиа: S3 при заданном bucket,
// иначе локальная директория.
func buildBlobStorage(ctx context.Context, cfg *config.Config) (filestorage.BlobStorage, error) {
	if cfg.S3.Bucket != "" {
		return s3storage.New(ctx, s3storage.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Endpoint:        cfg.S3.Endpoint,
			UsePathStyle:    cfg.S3.UsePathStyle,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
		})
	}

	return filestorage.NewLocalBlobStorage(
		cfg.FileStorage.BaseDir,
		cfg.FileStorage.BaseURL,
		cfg.FileStorage.MaxSize,
	)
}

// Stop закрывает внешние соединения после остановки HTTP-сервера.
func (a *App) Stop() {
	a.Storage.Stop()

	if err := a.Redis.Close(); err != nil {
		a.log.Warn("failed to close redis client", slog.Any("err", err))
	}
}
