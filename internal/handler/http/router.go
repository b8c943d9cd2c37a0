package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

func NewRouter(appName, env string, allowedOrigins []string, attendanceHandler AttendanceHandler, directoryHandler DirectoryHandler, reportHandler ReportHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/import", attendanceHandler.Import)
			r.Get("/", attendanceHandler.List)
			r.Get("/months", attendanceHandler.Months)
			r.Get("/export", attendanceHandler.Export)

			r.Route("/files", func(r chi.Router) {
				r.Get("/", attendanceHandler.Files)
				r.Delete("/{name}", attendanceHandler.RemoveFile)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", attendanceHandler.Settings)
				r.Put("/", attendanceHandler.UpdateSettings)
			})

			r.Route("/{code}", func(r chi.Router) {
				r.Patch("/", attendanceHandler.UpdateRecord)
				r.Patch("/days/{day}", attendanceHandler.EditDay)
			})
		})

		r.Route("/directory", func(r chi.Router) {
			r.Get("/", directoryHandler.List)
			r.Post("/", directoryHandler.Create)
			r.Post("/import", directoryHandler.Import)
			r.Get("/export", directoryHandler.Export)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", directoryHandler.GetByID)
				r.Put("/", directoryHandler.Update)
				r.Delete("/", directoryHandler.Delete)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", reportHandler.Summary)
		})
	})
	return r
}
