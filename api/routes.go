package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)

	// public surface
	r.Get("/events", app.SearchPublicEvents)
	r.Get("/events/{eventId}", app.GetPublicEvent)

	// initiator surface
	r.Route("/users/{userId}", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/", app.CreateEvent)
			r.Get("/", app.ListUserEvents)
			r.Get("/{eventId}", app.GetUserEvent)
			r.Patch("/{eventId}", app.UpdateEventByUser)
			r.Get("/{eventId}/requests", app.ListEventRequests)
			r.Patch("/{eventId}/requests", app.ModerateRequests)
		})
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", app.CreateRequest)
			r.Get("/", app.ListUserRequests)
			r.Patch("/{requestId}/cancel", app.CancelRequest)
		})
	})

	// admin surface
	r.Route("/admin", func(r chi.Router) {
		r.Get("/events", app.AdminSearchEvents)
		r.Patch("/events/{eventId}", app.UpdateEventByAdmin)
		r.Post("/users", app.CreateUser)
		r.Delete("/users/{userId}", app.DeleteUser)
		r.Post("/categories", app.CreateCategory)
		r.Delete("/categories/{catId}", app.DeleteCategory)
	})

	return r
}
