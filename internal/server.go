package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"

	"github.com/2beens/zenith/internal/ai"
	"github.com/2beens/zenith/internal/auth"
	"github.com/2beens/zenith/internal/coach"
	"github.com/2beens/zenith/internal/config"
	"github.com/2beens/zenith/internal/db"
	"github.com/2beens/zenith/internal/docstore"
	"github.com/2beens/zenith/internal/insights"
	insightsmcp "github.com/2beens/zenith/internal/insights/mcp"
	"github.com/2beens/zenith/internal/middleware"
	"github.com/2beens/zenith/internal/misc"
	"github.com/2beens/zenith/internal/nutrition"
	"github.com/2beens/zenith/internal/onboarding"
	"github.com/2beens/zenith/internal/persist"
	"github.com/2beens/zenith/internal/profile"
	"github.com/2beens/zenith/internal/telemetry/metrics"
	"github.com/2beens/zenith/internal/telemetry/tracing"
	"github.com/2beens/zenith/internal/training"
)

// aiClient is everything the domain services need from the model backend.
type aiClient interface {
	GeneratePlan(ctx context.Context, p profile.UserProfile) ([]training.WorkoutSession, error)
	AnalyzeFoodImage(ctx context.Context, mimeType string, image []byte) (nutrition.Analysis, error)
	GenerateFoodImage(ctx context.Context, mealName string) (string, error)
	StreamCoachReply(ctx context.Context, prompt coach.Prompt, chunks chan<- string) error
}

type authService interface {
	Register(ctx context.Context, creds auth.Credentials) error
	Login(ctx context.Context, creds auth.Credentials, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (string, bool, error)
	ScanAndClean(ctx context.Context)
}

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	rateLimiter middleware.RequestRateLimiter

	loginChecker auth.Checker
	authService  authService

	store  docstore.Store
	queue  *persist.Queue
	images *nutrition.ImageStore
	ai     aiClient
	health map[string]misc.Pinger

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
	stopJanitor    context.CancelFunc
}

type NewServerParams struct {
	Config      *config.Config
	Secrets     config.Secrets
	VersionInfo string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	if params.Secrets.JWTSecret == "" {
		return nil, errors.New("jwt secret not set")
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDB,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.Secrets.DBPassword,
		TracingEnabled: cfg.OtelEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDB},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("zenith", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.Secrets.RedisPass,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(cfg.OtelEnabled, cfg.ServiceName, rdb)
	if err != nil {
		return nil, err
	}

	store := docstore.NewPostgresStore(dbPool)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure docstore schema: %w", err)
	}

	images, err := nutrition.NewImageStore(cfg.MealImagesPath)
	if err != nil {
		return nil, fmt.Errorf("new meal image store: %w", err)
	}

	geminiClient, err := ai.NewClient(ai.ClientParams{
		BaseURL:    cfg.GeminiBaseURL,
		APIKey:     params.Secrets.GeminiAPIKey,
		TextModel:  cfg.GeminiTextModel,
		ImageModel: cfg.GeminiImageModel,
		Timeout:    cfg.GeminiTimeout,
		CacheSize:  cfg.FoodImageCacheSize,
		Metrics:    metricsManager,
	})
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}

	authService := auth.NewAuthService(
		auth.NewUsersRepo(dbPool),
		params.Secrets.JWTSecret,
		cfg.AuthSessionTTL,
		rdb,
	)

	s := &Server{
		config:      cfg,
		versionInfo: params.VersionInfo,
		dbPool:      dbPool,
		redisClient: rdb,
		rateLimiter: redis_rate.NewLimiter(rdb),

		authService:  authService,
		loginChecker: auth.NewLoginChecker(cfg.AuthSessionTTL, params.Secrets.JWTSecret, rdb),

		store: store,
		queue: persist.NewQueue(persist.QueueParams{
			Workers:    cfg.PersistWorkers,
			JobTimeout: cfg.PersistJobTimeout,
			Metrics:    metricsManager,
		}),
		images: images,
		ai:     geminiClient,
		health: map[string]misc.Pinger{
			"postgres": dbPool,
			"redis": misc.PingerFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}),
		},

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	return s, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	profileService := profile.NewService(profile.NewRepo(s.store), s.queue)
	trainingService := training.NewService(training.NewRepo(s.store), s.queue, s.metricsManager)
	nutritionService := nutrition.NewService(nutrition.NewRepo(s.store), s.queue, s.images, s.ai, s.metricsManager)
	coachService := coach.NewService(coach.NewRepo(s.store), s.queue, profileService, s.ai, s.metricsManager)
	onboardingService := onboarding.NewService(profileService, trainingService, nutritionService, s.ai, coachService)
	insightsService := insights.NewService(trainingService, profileService, nutritionService)

	// AI backed routes are limited per identity
	aiLimited := middleware.RateLimit(s.rateLimiter, "ai", s.config.RequestsPerMinute, s.metricsManager)

	misc.NewHandler(s.versionInfo, s.health).SetupRoutes(r)

	authHandler := auth.NewHandler(s.authService, onboardingService)
	authRouter := r.PathPrefix("/a").Subrouter()
	authRouter.HandleFunc("/register", authHandler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	authRouter.HandleFunc("/login", authHandler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	authRouter.HandleFunc("/logout", authHandler.HandleLogout).Methods("GET", "OPTIONS").Name("logout")
	// rate limit the auth endpoints to prevent abuse
	authRouter.Use(middleware.RateLimit(s.rateLimiter, "auth", 15, s.metricsManager))

	onboardingHandler := onboarding.NewHandler(onboardingService)
	r.HandleFunc("/me", onboardingHandler.HandleMe).Methods("GET", "OPTIONS").Name("me")
	r.Handle("/onboarding", aiLimited(http.HandlerFunc(onboardingHandler.HandleComplete))).Methods("POST", "OPTIONS").Name("onboarding")

	planHandler := training.NewHandler(trainingService)
	r.HandleFunc("/plan", planHandler.HandleGetPlan).Methods("GET", "OPTIONS").Name("get-plan")
	r.HandleFunc("/plan/day/{day:[0-9]+}/start", planHandler.HandleStartDay).Methods("POST", "OPTIONS").Name("start-day")
	r.HandleFunc("/plan/day/{day:[0-9]+}/exercise/{exid}/set/{idx:[0-9]+}", planHandler.HandleUpdateSet).Methods("PUT", "OPTIONS").Name("update-set")
	r.HandleFunc("/plan/day/{day:[0-9]+}/finish", planHandler.HandleFinishDay).Methods("POST", "OPTIONS").Name("finish-day")

	nutritionHandler := nutrition.NewHandler(nutritionService, s.ai)
	r.HandleFunc("/nutrition", nutritionHandler.HandleList).Methods("GET", "OPTIONS").Name("list-nutrition")
	r.HandleFunc("/nutrition/tally/{day}", nutritionHandler.HandleTally).Methods("GET", "OPTIONS").Name("nutrition-tally")
	r.Handle("/nutrition", aiLimited(http.HandlerFunc(nutritionHandler.HandleAdd))).Methods("POST", "OPTIONS").Name("add-nutrition")
	r.Handle("/nutrition/analyze", aiLimited(http.HandlerFunc(nutritionHandler.HandleAnalyze))).Methods("POST", "OPTIONS").Name("analyze-food")
	r.HandleFunc("/nutrition/image/{id}", nutritionHandler.HandleImage).Methods("GET", "OPTIONS").Name("meal-image")

	coachHandler := coach.NewHandler(coachService)
	r.HandleFunc("/coach/sessions", coachHandler.HandleListSessions).Methods("GET", "OPTIONS").Name("list-chat-sessions")
	r.HandleFunc("/coach/sessions", coachHandler.HandleNewSession).Methods("POST", "OPTIONS").Name("new-chat-session")
	r.Handle("/coach/sessions/{id}/messages", aiLimited(http.HandlerFunc(coachHandler.HandleSendMessage))).Methods("POST", "OPTIONS").Name("send-chat-message")

	insightsHandler := insights.NewHandler(insightsService)
	r.HandleFunc("/dashboard", insightsHandler.HandleDashboard).Methods("GET", "OPTIONS").Name("dashboard")
	r.HandleFunc("/analytics/volume", insightsHandler.HandleVolume).Methods("GET", "OPTIONS").Name("muscle-volume")

	r.PathPrefix("/mcp").Handler(insightsmcp.NewHTTPHandler(insightsService)).Name("mcp")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	// coach replies are streamed, the AI client timeout bounds them
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		ReadTimeout:  time.Minute,
		WriteTimeout: 2 * s.config.GeminiTimeout,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	janitorCtx, stop := context.WithCancel(ctx)
	s.stopJanitor = stop
	go s.runSessionsJanitor(janitorCtx, s.config.SessionsCleanupEvery)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// runSessionsJanitor drops expired auth sessions until ctx is done.
func (s *Server) runSessionsJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.authService.ScanAndClean(ctx)
		}
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.stopJanitor != nil {
		s.stopJanitor()
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var shutdownErr error
	if s.httpServer != nil {
		shutdownErr = multierr.Append(shutdownErr, s.httpServer.Shutdown(ctx))
		log.Warnln("server shut down")
	}

	// pending writes still need the db pool
	log.Debugln("draining persist queue ...")
	s.queue.Close()

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		shutdownErr = multierr.Append(shutdownErr, s.redisClient.Close())
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		shutdownErr = multierr.Append(shutdownErr, s.metricsHttpServer.Shutdown(ctx))
		log.Warnln("metrics server shut down")
	}

	for _, err := range multierr.Errors(shutdownErr) {
		log.Errorf(" >>> graceful shutdown: %s", err)
	}
}
