package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/planilla-hr/planilla-backend-go/internal/config"
	appHTTP "github.com/planilla-hr/planilla-backend-go/internal/handler/http"
	"github.com/planilla-hr/planilla-backend-go/internal/pkg/database"
	"github.com/planilla-hr/planilla-backend-go/internal/repository/postgresql"
	attendanceService "github.com/planilla-hr/planilla-backend-go/internal/service/attendance"
	directoryService "github.com/planilla-hr/planilla-backend-go/internal/service/directory"
	exportService "github.com/planilla-hr/planilla-backend-go/internal/service/export"
	reportService "github.com/planilla-hr/planilla-backend-go/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.App.LogLevel),
	})).With(slog.String("app", cfg.App.Name))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	directoryRepo := postgresql.NewDirectoryRepository(db)

	directorySvc := directoryService.NewService(directoryRepo, db, logger)
	attendanceSvc := attendanceService.NewService(directorySvc, logger, cfg.Lookup.Timeout)
	exportSvc := exportService.NewService(attendanceSvc, logger)
	reportSvc := reportService.NewService(attendanceSvc, logger)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, exportSvc)
	directoryHandler := appHTTP.NewDirectoryHandler(directorySvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(cfg.App.Name, cfg.App.Env, cfg.App.AllowedOrigins,
		attendanceHandler, directoryHandler, reportHandler)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("server listening", slog.String("addr", addr), slog.String("env", cfg.App.Env))
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
