package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Dev-Ole007/Ipaps/handlers"
	"github.com/Dev-Ole007/Ipaps/internal/config"
	"github.com/Dev-Ole007/Ipaps/internal/database"
	"github.com/Dev-Ole007/Ipaps/internal/entities"
	"github.com/Dev-Ole007/Ipaps/internal/oidc"
	"github.com/Dev-Ole007/Ipaps/internal/resource"
	"github.com/Dev-Ole007/Ipaps/internal/store"
	"github.com/Dev-Ole007/Ipaps/pkg/logger"
	"github.com/Dev-Ole007/Ipaps/pkg/metrics"
	"github.com/Dev-Ole007/Ipaps/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	r := gin.New()
	r.Use(middleware.CORS(cfg.CORS.Origins))
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	ctx := context.Background()

	// Token verifier against the Firebase identity provider. The project id
	// comes from FIREBASE_PROJECT_ID or, failing that, the credentials file.
	var verifier middleware.Verifier
	projectID := cfg.Auth.ProjectID
	if projectID == "" && cfg.Auth.CredentialsFile != "" {
		pid, err := oidc.ProjectIDFromCredentials(cfg.Auth.CredentialsFile)
		if err != nil {
			logger.Warnf("could not read provider credentials: %v", err)
		} else {
			projectID = pid
		}
	}
	if projectID != "" {
		ver, err := oidc.NewVerifier(ctx, oidc.FirebaseIssuer(projectID), projectID)
		if err != nil {
			logger.Warnf("failed to initialize token verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil && strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warnf("enabling insecure token verifier (integration mode)")
		verifier = oidc.NewInsecureVerifier()
	}

	// Retry/backoff when connecting to MongoDB to tolerate startup races
	const maxAttempts = 5
	backoff := time.Second
	var client *mongo.Client
	var errConn error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if errConn == nil {
			break
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	if errConn != nil {
		logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
	}
	defer func() { _ = client.Disconnect(ctx) }()
	db := client.Database(cfg.MongoDB.Database)

	// The bearer gate on mutating routes is an explicit deployment decision.
	var guard []gin.HandlerFunc
	if cfg.Auth.RequireWrites {
		if verifier == nil {
			logger.Fatalf("AUTH_REQUIRE_WRITES is set but no token verifier is configured")
		}
		guard = append(guard, middleware.AuthMiddleware(verifier))
	}

	api := r.Group("/api")
	api.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Ipaporanga Hub API", "status": "online"})
	})

	mount := func(opts resource.Options, routes resource.Routes) {
		opts.Collection = store.NewMongo(db.Collection(opts.Name))
		opts.Timeout = cfg.MongoDB.Timeout
		resource.NewHandler(opts).Register(api, routes, guard...)
	}

	mount(resource.Options{
		Name: "stores", Label: "Store",
		New:     func() resource.Entity { return &entities.Store{} },
		OrderBy: "createdAt", Descending: true,
	}, resource.Routes{Get: true, Update: true})

	mount(resource.Options{
		Name: "products", Label: "Product",
		New:     func() resource.Entity { return &entities.Product{} },
		OrderBy: "createdAt", Descending: true,
		FilterParam: "storeId",
	}, resource.Routes{})

	mount(resource.Options{
		Name: "news", Label: "News",
		New:     func() resource.Entity { return &entities.News{} },
		OrderBy: "createdAt", Descending: true,
	}, resource.Routes{})

	mount(resource.Options{
		Name: "professionals", Label: "Professional",
		New:     func() resource.Entity { return &entities.Professional{} },
		OrderBy: "createdAt", Descending: true,
	}, resource.Routes{})

	mount(resource.Options{
		Name: "trips", Label: "Trip",
		New:     func() resource.Entity { return &entities.Trip{} },
		OrderBy: "time",
	}, resource.Routes{})

	// readiness endpoint — 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		pctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := client.Ping(pctx, nil); err != nil {
			deps["mongodb"] = false
			ready = false
		} else {
			deps["mongodb"] = true
		}

		deps["auth"] = verifier != nil || !cfg.Auth.RequireWrites
		if !deps["auth"] {
			ready = false
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("config summary: mongo=%v auth_project=%v require_writes=%v origins=%v",
		cfg.MongoDB.URI != "", projectID != "", cfg.Auth.RequireWrites, cfg.CORS.Origins)
	logger.Infof("starting hub API on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
