package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/crimi5361/IIPEA-BACKEND/config"
	"github.com/crimi5361/IIPEA-BACKEND/internal/handlers"
	"github.com/crimi5361/IIPEA-BACKEND/internal/middleware"
	"github.com/crimi5361/IIPEA-BACKEND/internal/routes"
	"github.com/crimi5361/IIPEA-BACKEND/internal/services"
	"github.com/crimi5361/IIPEA-BACKEND/models"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.ProgramCategory{},
		&models.Program{},
		&models.Level{},
		&models.Curriculum{},
		&models.AcademicYear{},
		&models.Class{},
		&models.Group{},
		&models.TuitionLedger{},
		&models.Student{},
		&models.Receipt{},
		&models.Payment{},
		&models.FeeWaiver{},
		&models.User{},
		&models.Role{},
		&models.Permission{},
	); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	rdb := config.ConnectRedis(cfg)

	paymentService := services.NewPaymentService(db, cfg)
	waiverService := services.NewWaiverService(db)

	h := &routes.Handlers{
		Students:    handlers.NewStudentHandler(db),
		Payments:    handlers.NewPaymentHandler(db, paymentService),
		Waivers:     handlers.NewWaiverHandler(db, waiverService),
		Classes:     handlers.NewClassHandler(db),
		Years:       handlers.NewAcademicYearHandler(db),
		Catalog:     handlers.NewCatalogHandler(db),
		Users:       handlers.NewUserHandler(db, rdb),
		Roles:       handlers.NewRoleHandler(db, rdb),
		Permissions: handlers.NewPermissionHandler(db),
	}
	auth := middleware.NewAuth(db, rdb, cfg.JWTKey)

	r := gin.Default()
	routes.SetupRoutes(r, auth, h)

	slog.Info("Server starting", "addr", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
