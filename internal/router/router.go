package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mealmafia/mealmafia-go/internal/handler"
	"github.com/mealmafia/mealmafia-go/internal/middleware"
	"github.com/mealmafia/mealmafia-go/internal/service"
)

// Deps are the services the routes are built from.
type Deps struct {
	Users       *service.UserService
	Meals       *service.MealService
	Sessions    *service.SessionService
	Production  bool
	CORSOrigins []string
}

// New builds the HTTP route table.
func New(d Deps) http.Handler {
	userHandler := handler.NewUserHandler(d.Users)
	mealHandler := handler.NewMealHandler(d.Meals)
	sessionHandler := handler.NewSessionHandler(d.Sessions, d.Production)

	verifyToken := middleware.VerifyToken(d.Sessions)
	requireAdmin := middleware.RequireAdmin(d.Users)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(10 * time.Second))
	r.Use(middleware.CORS(d.CORSOrigins))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Meal Mafia server is running"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/jwt", sessionHandler.HandleIssue)
	r.Post("/logout", sessionHandler.HandleLogout)

	r.Put("/user", userHandler.HandleUpsert)
	r.Get("/meals", mealHandler.HandleList)
	r.Get("/meals/{id}", mealHandler.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(verifyToken)
		r.Get("/user/role/{email}", userHandler.HandleRole)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/users", userHandler.HandleList)
			r.Patch("/user/{id}", userHandler.HandleSetRole)
			r.Post("/meals", mealHandler.HandleCreate)
			r.Delete("/meal/{id}", mealHandler.HandleDelete)
		})
	})

	return r
}
