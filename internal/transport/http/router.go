package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sparkmeet/sparkmeet-api/internal/application/profile"
	"github.com/sparkmeet/sparkmeet-api/internal/application/verification"
	"github.com/sparkmeet/sparkmeet-api/internal/config"
	"github.com/sparkmeet/sparkmeet-api/internal/pkg/code"
	"github.com/sparkmeet/sparkmeet-api/internal/transport/http/handler"
	appmiddleware "github.com/sparkmeet/sparkmeet-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	verifySvc := verification.NewService(verification.ServiceDeps{
		Cache:         deps.Cache,
		Directory:     deps.UserRepo,
		SMS:           deps.SMSSender,
		Tokens:        deps.JWTProvider,
		Codes:         code.New(6),
		CodeKeyPrefix: cfg.CodeKeyPrefix,
		CodeTTL:       cfg.CodeTTL,
		SessionTTL:    cfg.SessionTTL,
	})
	profileSvc := profile.NewService(profile.ServiceDeps{
		Profiles: deps.ProfileRepo,
		Objects:  deps.S3Store,
		Faces:    deps.FaceDetector,
	})

	healthH := handler.NewHealthHandler()
	loginH := handler.NewLoginHandler(verifySvc)
	userH := handler.NewUserHandler(deps.UserRepo)
	profileH := handler.NewProfileHandler(profileSvc)

	// 5 requests/second with a burst of 10 on the SMS-sending endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	r.Get("/health-check/{action}", healthH.Ping)
	r.Post("/health-check/{action}", healthH.Ping)
	r.Get("/test", healthH.Test)
	r.Post("/test", healthH.Test)

	r.Route("/user", func(r chi.Router) {
		// ── Public routes (no session) ───────────────────────────────────────
		r.With(sensitiveRL.Limit).Post("/login", loginH.SendCode)
		r.With(sensitiveRL.Limit).Post("/loginVerification", loginH.Verify)
		r.Get("/findUser", userH.FindUser)
		r.Post("/saveUser", userH.SaveUser)

		// ── Session-authenticated routes ─────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.SessionAuth(verifySvc))

			r.Post("/loginReginfo", profileH.Save)
			r.Post("/loginReginfo/head", profileH.UploadAvatar)
			r.Get("/profile", profileH.Get)
		})
	})

	return r
}
