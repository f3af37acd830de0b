package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"offersmonkey/internal/admin"
	"offersmonkey/internal/assistant"
	"offersmonkey/internal/auth"
	"offersmonkey/internal/cache"
	"offersmonkey/internal/categories"
	"offersmonkey/internal/changefeed"
	"offersmonkey/internal/feed"
	"offersmonkey/internal/notify"
	"offersmonkey/internal/offers"
	"offersmonkey/internal/pipeline"
	"offersmonkey/internal/prefs"
	"offersmonkey/internal/reviews"
	"offersmonkey/internal/saved"
	"offersmonkey/pkg/config"
	"offersmonkey/pkg/database"
)

func buildCache(cfg config.CacheConfig) *cache.Cache {
	if cfg.RedisAddr != "" {
		store, err := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisDB, cfg.TTL)
		if err == nil {
			log.Printf("cache: redis at %s", cfg.RedisAddr)
			return cache.New(store, cfg.TTL)
		}
		log.Printf("cache: redis unavailable (%v), falling back to files", err)
	}

	store, err := cache.NewFileStore(cfg.Dir)
	if err != nil {
		log.Fatalf("cache dir failed: %v", err)
	}
	return cache.New(store, cfg.TTL)
}

func buildSources(cfg config.FeedConfig) []feed.Source {
	var sources []feed.Source
	if cfg.URL != "" && cfg.APIKey != "" {
		sources = append(sources, feed.NewLinkMyDeals(cfg.URL, cfg.APIKey))
	}
	if cfg.MirrorURL != "" {
		sources = append(sources, feed.NewMirror(cfg.MirrorURL))
	}
	return sources
}

func main() {
	cfg := config.MustLoad()

	db := database.MustOpen(database.Config{Path: cfg.Database.Path})
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	catRepo := categories.NewRepo(db)
	if err := catRepo.Seed(context.Background()); err != nil {
		log.Fatalf("category seed failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// change feed first so binding errors show up early
	hub := changefeed.NewHub()
	router.GET("/ws", changefeed.WSHandler(hub))
	tcpSrv := changefeed.NewServer(cfg.Server.TCPAddr, hub)

	registry := notify.NewRegistry()
	pushSrv := notify.NewServer(cfg.Server.UDPAddr, registry, log.Default())

	appCache := buildCache(cfg.Cache)

	offerRepo := offers.NewRepo(db)
	prefRepo := prefs.NewRepo(db)

	engine := pipeline.NewEngine(pipeline.Deps{
		Cache:      appCache,
		Offers:     offerRepo,
		Prefs:      prefRepo,
		Categories: catRepo,
	})

	syncer := feed.NewSyncer(db, buildSources(cfg.Feed)...)
	syncer.Hub = hub
	syncer.Push = pushSrv

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Database.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Offers and reviews (public)
	offers.NewHandler(offerRepo).RegisterRoutes(router.Group("/offers"))
	reviewRepo := reviews.NewRepo(db)
	reviewHandler := reviews.NewHandler(reviewRepo)
	reviewHandler.RegisterPublicRoutes(router.Group("/"))

	// Categories (public)
	router.GET("/categories", func(c *gin.Context) {
		cats, err := catRepo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": cats})
	})

	router.GET("/categories/dynamic", func(c *gin.Context) {
		known, err := catRepo.List(c.Request.Context())
		if err != nil || len(known) == 0 {
			known = categories.Defaults()
		}
		all, err := offerRepo.All(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load offers"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories.DeriveDynamic(all, known)})
	})

	// Auth
	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTTTL,
	}
	authRepo := auth.NewRepo(db)
	auth.NewHandler(authRepo, tokenSvc).RegisterRoutes(router.Group("/auth"))

	// Protected routes
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	protected.GET("/users/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
			"is_admin": claims.IsAdmin,
		})
	})

	prefHandler := prefs.NewHandler(prefRepo, hub)
	prefHandler.OnChange = engine.InvalidateUser
	prefHandler.RegisterRoutes(protected)

	pipeline.NewHandler(engine).RegisterRoutes(protected)
	saved.NewHandler(saved.NewRepo(db), offerRepo).RegisterRoutes(protected)
	reviewHandler.RegisterProtectedRoutes(protected)

	aiClient := assistant.NewClient(cfg.Assistant.Endpoint, cfg.Assistant.APIKey, cfg.Assistant.Model, offerRepo)
	assistant.NewHandler(aiClient).RegisterRoutes(protected)

	// Admin
	adminGroup := router.Group("/")
	adminGroup.Use(auth.AuthMiddleware(tokenSvc, authRepo), auth.RequireAdmin())
	admin.NewHandler(offerRepo, syncer, syncer.Quota, hub, engine).RegisterRoutes(adminGroup)

	// Optional in-process daily sync
	var scheduler *cron.Cron
	if cfg.Feed.Cron != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Feed.Cron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := syncer.Run(ctx, false); err != nil && !errors.Is(err, feed.ErrQuotaExhausted) {
				log.Printf("scheduled sync failed: %v", err)
			} else {
				engine.InvalidateAll()
			}
		})
		if err != nil {
			log.Fatalf("invalid feed cron %q: %v", cfg.Feed.Cron, err)
		}
		scheduler.Start()
		log.Printf("feed sync scheduled: %s", cfg.Feed.Cron)
	}

	httpSrv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := pushSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}
	pushSrv.Close()

	wg.Wait()
	log.Println("servers stopped")
}
