package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Polls  *PollHandler
	Votes  *VoteHandler
	Events *EventsHandler
	Auth   *AuthHandler
	Users  *UserHandler
}

func NewHandler(h Handlers, jwtSecret []byte, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	requireAuth := RequireAuth(jwtSecret)

	r.Route("/api", func(r chi.Router) {
		r.Route("/polls", func(r chi.Router) {
			r.Get("/", h.Polls.ListPolls)
			r.With(requireAuth).Post("/", h.Polls.CreatePoll)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Polls.GetPoll)
				r.Get("/results", h.Polls.GetResults)
				r.Get("/events", h.Events.Stream)
				r.With(requireAuth).Patch("/", h.Polls.UpdatePoll)
				r.With(requireAuth).Delete("/", h.Polls.DeletePoll)
				r.With(requireAuth).Post("/close", h.Polls.ClosePoll)

				r.With(requireAuth).Post("/votes", h.Votes.CastVote)
				r.With(requireAuth).Delete("/votes/{optionID}", h.Votes.RetractVote)
				r.With(requireAuth).Get("/my-votes", h.Votes.MyVotes)
			})
		})

		r.With(requireAuth).Get("/users/me", h.Users.GetMe)
	})

	if h.Auth != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/google/callback", h.Auth.GoogleCallback)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)
		})
	}

	return r
}
