package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/app"
	"github.com/upb/schoolms-api/docs"
	"github.com/upb/schoolms-api/handlers"
	"github.com/upb/schoolms-api/internal/observability"
	"github.com/upb/schoolms-api/middleware"
	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/services/activity"
)

var (
	schoolStaff = []models.UserRole{
		models.RoleSchoolAdmin,
		models.RoleClassTeacher,
		models.RoleSubjectTeacher,
		models.RoleSuperAdmin,
	}
	schoolAdmins = []models.UserRole{models.RoleSchoolAdmin, models.RoleSuperAdmin}
	superAdmins  = []models.UserRole{models.RoleSuperAdmin}

	// portals maps each portal prefix to the only role allowed in it
	portals = map[string]models.UserRole{
		"student-portal":         models.RoleStudent,
		"parent-portal":          models.RoleParent,
		"class-teacher-portal":   models.RoleClassTeacher,
		"subject-teacher-portal": models.RoleSubjectTeacher,
	}
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(activity.CaptureClient)
	r.Use(observability.RequestLogger(deps.Logger))
	r.Use(observability.HTTPMetricsMiddleware(deps.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(deps.Config.Server.RequestTimeout))

	// CORS answers preflights before the security pipeline sees them
	corsCfg := deps.Config.CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   corsCfg.AllowedMethods,
		AllowedHeaders:   corsCfg.AllowedHeaders,
		ExposedHeaders:   corsCfg.ExposedHeaders,
		AllowCredentials: corsCfg.AllowCredentials,
		MaxAge:           corsCfg.MaxAge,
	}))

	// Security pipeline
	r.Use(deps.Authenticator.Authenticate)
	r.Use(deps.AccessPolicy.Handler)

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	guards := deps.Guards
	logger := deps.Logger

	health := handlers.NewHealthHandler(deps.DB, logger)
	auth := handlers.NewAuthHandler(deps.Auth, logger)
	resets := handlers.NewPasswordResetHandler(deps.PasswordResets, logger)
	onboarding := handlers.NewOnboardingHandler(deps.Onboarding, logger)
	webhooks := handlers.NewPaymentWebhookHandler(deps.Webhooks, logger)
	students := handlers.NewStudentHandler(deps.Students, logger)
	schools := handlers.NewSchoolHandler(deps.Schools, logger)
	profiles := handlers.NewProfileHandler(deps.Profiles, logger)
	activityLogs := handlers.NewActivityHandler(deps.Activity, logger)

	// API documentation
	r.Get("/v3/api-docs", apiDocs(logger))
	r.Get("/swagger-ui.html", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger-ui/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger-ui/*", httpSwagger.Handler(httpSwagger.URL("/v3/api-docs")))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.HandleHealth)
		r.Get("/health/ready", health.HandleReadiness)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/validate-school", auth.HandleValidateSchool)
			r.Post("/login", auth.HandleLogin)
			r.Post("/register", auth.HandleRegister)
			r.Get("/me", auth.HandleMe)
		})

		r.Route("/password-reset", func(r chi.Router) {
			r.Post("/request", resets.HandleRequest)
			r.Post("/verify", resets.HandleVerify)
			r.Post("/reset", resets.HandleReset)
		})

		r.Route("/self-service", func(r chi.Router) {
			r.Post("/register-school", onboarding.HandleRegisterSchool)
			r.Get("/check-email", onboarding.HandleCheckEmail)
		})

		r.Post("/payments/webhook", webhooks.HandleWebhook)

		r.Route("/students", func(r chi.Router) {
			r.Method(http.MethodPost, "/", guards.Protect(middleware.OperationRules{
				Roles:  schoolAdmins,
				School: &middleware.SchoolScope{AllowSuperAdmin: true},
			}, students.HandleCreate))
			r.Method(http.MethodGet, "/{id}", guards.Protect(middleware.OperationRules{
				Roles: schoolStaff,
			}, students.HandleGet))
			r.Method(http.MethodGet, "/school/{schoolId}", guards.Protect(middleware.OperationRules{
				Roles:  schoolStaff,
				School: &middleware.SchoolScope{AllowSuperAdmin: true},
			}, students.HandleListBySchool))
		})

		r.Route("/schools/{schoolId}", func(r chi.Router) {
			r.Method(http.MethodGet, "/", guards.Protect(middleware.OperationRules{
				School: &middleware.SchoolScope{AllowSuperAdmin: true},
			}, schools.HandleGet))
			r.Method(http.MethodGet, "/settings", guards.Protect(middleware.OperationRules{
				Roles:  schoolAdmins,
				School: &middleware.SchoolScope{AllowSuperAdmin: true},
			}, schools.HandleSettings))
		})

		r.Method(http.MethodGet, "/platform-admin/schools", guards.Protect(middleware.OperationRules{
			Roles: superAdmins,
		}, schools.HandleList))

		r.Method(http.MethodGet, "/activity-logs/school/{schoolId}", guards.Protect(middleware.OperationRules{
			Roles:  schoolAdmins,
			School: &middleware.SchoolScope{AllowSuperAdmin: true},
		}, activityLogs.HandleListBySchool))

		for prefix, role := range portals {
			r.Method(http.MethodGet, "/"+prefix+"/profile", guards.Protect(middleware.OperationRules{
				Roles: []models.UserRole{role},
			}, profiles.HandleProfile))
		}
	})

	return r
}

// apiDocs serves the registered OpenAPI document
func apiDocs(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			logger.Error("failed to read API document", zap.Error(err))
			http.Error(w, "API document unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	}
}
