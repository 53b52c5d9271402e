package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter mounts the workspace API under /api and the play socket under /ws/play.
func NewRouter(api *Handler, play *WSHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws/play", play.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(requestLogger)

		r.Get("/state", api.GetState)
		r.Post("/wizard", api.OpenWizard)
		r.Post("/generate", api.Generate)
		r.Post("/back", api.Back)

		r.Route("/session", func(r chi.Router) {
			r.Patch("/", api.UpdateSession)
			r.Post("/move", api.MoveQuestion)
			r.Post("/questions", api.AddQuestion)
			r.Put("/questions/{qid}", api.UpdateQuestion)
			r.Delete("/questions/{qid}", api.DeleteQuestion)
			r.Post("/questions/{qid}/options", api.AddOption)
			r.Delete("/questions/{qid}/options/{idx}", api.RemoveOption)
			r.Post("/questions/{qid}/image", api.GenerateImage)

			r.Post("/draft", api.SaveDraft)
			r.Post("/launch", api.Launch)
			r.Post("/schedule", api.Schedule)
			r.Post("/preview", api.Preview)
			r.Post("/exit-preview", api.ExitPreview)
			r.Post("/start", api.Start)
			r.Post("/finish", api.Finish)
		})

		r.Get("/sessions", api.ListSessions)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Post("/open", api.OpenSession)
			r.Patch("/", api.RenameSession)
			r.Delete("/", api.DeleteSession)
			r.Get("/link", api.JoinLink)
			r.Get("/export.pdf", api.ExportPDF)
		})
	})
	return r
}
