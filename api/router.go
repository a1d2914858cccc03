package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"safemail/internal/config"
	"safemail/internal/service"
)

// Services bundles every application-layer handle the router wires into handlers.
type Services struct {
	Users    *service.UserService
	Sessions *service.SessionMachine
	Stamps   *service.StampEngine
	Messages *service.MessageAdmitter
}

// NewRouter builds the full chi router for SafeMail's HTTP surface.
func NewRouter(svc Services) http.Handler {
	router := chi.NewRouter()
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(chimw.RequestID)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{config.CORSAllowedOrigin()},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/user", func(r chi.Router) {
		r.Get("/{username}", GetUserHandler(svc.Users))
		r.Post("/register", RegisterHandler(svc.Users))
		r.Post("/login", LoginHandler(svc.Sessions))
		r.Post("/login/confirm", LoginConfirmHandler(svc.Sessions))

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(svc.Sessions))
			r.Post("/whoami", WhoAmIHandler())
			r.Post("/logout", LogoutHandler(svc.Sessions))
		})
	})

	router.Route("/stamp", func(r chi.Router) {
		r.Use(RequireSession(svc.Sessions))
		r.Post("/request_system_issue", RequestSystemIssueHandler(svc.Stamps))
		r.Post("/system_issue", SystemIssueHandler(svc.Stamps))
	})

	router.Route("/message", func(r chi.Router) {
		r.Use(RequireSession(svc.Sessions))
		r.Post("/send_onetime", SendOnetimeHandler(svc.Messages))
		r.Post("/send_periodic", SendPeriodicHandler(svc.Messages))
		r.Get("/get_all", ListMessagesHandler(svc.Messages))
		r.Get("/{id}", GetMessageHandler(svc.Messages))
		r.Patch("/{id}/metadata", UpdateMessageMetadataHandler(svc.Messages))
		r.Delete("/{id}", DeleteMessageHandler(svc.Messages))
	})

	return router
}
