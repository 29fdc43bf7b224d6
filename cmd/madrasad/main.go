package main

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/handler"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/middleware"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/store"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/config"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/database"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/jwtutil"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/logger"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("madrasad")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting madrasa administration service...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.Jamia{},
		&model.User{},
		&model.Student{},
		&model.Admission{},
		&model.AttendanceRecord{},
		&model.FeeStructure{},
		&model.Invoice{},
		&model.Book{},
		&model.BookIssue{},
		&model.HostelRoom{},
		&model.HostelAllocation{},
		&model.ExamResult{},
		&model.Notice{},
	); err != nil {
		log.Fatal("Failed to migrate models", zap.Error(err))
	}
	log.Info("Database migrations applied")

	// Initialize Prometheus metrics
	prometheus.InitMetrics()
	log.Info("Prometheus metrics initialized")

	// Wire stores, the tenant access guard and the JWT utility
	stores := store.New(db)

	policy := authz.Policy{
		LegacyUnscopedReadable: cfg.Authz.LegacyUnscopedReadable,
		MissingModuleEnabled:   cfg.Authz.MissingModuleEnabled,
		StrictModuleNames:      !cfg.IsProduction(),
	}
	guard := authz.NewAuthorizer(stores.Jamias, policy, log)

	jwtUtil := jwtutil.NewJWTUtil(&cfg.JWT)
	validate := validator.New()

	authHandler := handler.NewAuthHandler(stores.Users, stores.Jamias, jwtUtil, validate)
	jamiaHandler := handler.NewJamiaHandler(stores.Jamias, validate)
	userHandler := handler.NewUserHandler(stores.Users, guard, validate)
	studentHandler := handler.NewStudentHandler(stores.Students, guard, validate)
	admissionHandler := handler.NewAdmissionHandler(stores.Admissions, stores.Students, guard, validate)
	attendanceHandler := handler.NewAttendanceHandler(stores.Attendance, stores.Students, guard, validate, cfg.Attendance.EditWindow)
	feeHandler := handler.NewFeeHandler(stores.Fees, stores.Students, guard, validate)
	libraryHandler := handler.NewLibraryHandler(stores.Library, stores.Students, guard, validate)
	hostelHandler := handler.NewHostelHandler(stores.Hostel, stores.Students, guard, validate)
	examHandler := handler.NewExamHandler(stores.Exams, stores.Students, guard, validate)
	noticeHandler := handler.NewNoticeHandler(stores.Notices, guard, validate)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(middleware.MetricsMiddleware)

	// Public routes - no authentication required
	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtUtil, stores.Users))

	api.GET("/me", authHandler.Me)

	// Jamia administration - super admin only (enforced in the handler)
	jamias := api.Group("/jamias")
	jamias.POST("", jamiaHandler.Create)
	jamias.GET("", jamiaHandler.List)
	jamias.GET("/:id", jamiaHandler.Get)
	jamias.PATCH("/:id", jamiaHandler.Update)
	jamias.PATCH("/:id/modules", jamiaHandler.ToggleModule)
	jamias.DELETE("/:id", jamiaHandler.Delete)

	users := api.Group("/users")
	users.POST("", userHandler.Create)
	users.GET("", userHandler.List)

	students := api.Group("/students")
	students.POST("", studentHandler.Create)
	students.GET("", studentHandler.List)
	students.GET("/:id", studentHandler.Get)
	students.PATCH("/:id", studentHandler.Update)
	students.DELETE("/:id", studentHandler.Delete)

	admissions := api.Group("/admissions")
	admissions.POST("", admissionHandler.Create)
	admissions.GET("", admissionHandler.List)
	admissions.POST("/:id/decide", admissionHandler.Decide)

	attendance := api.Group("/attendance")
	attendance.POST("", attendanceHandler.Mark)
	attendance.GET("", attendanceHandler.ListByDate)
	attendance.GET("/students/:student_id", attendanceHandler.ListByStudent)

	fees := api.Group("/fees")
	fees.POST("/structures", feeHandler.CreateStructure)
	fees.GET("/structures", feeHandler.ListStructures)
	fees.PATCH("/structures/:id", feeHandler.UpdateStructure)
	fees.DELETE("/structures/:id", feeHandler.DeleteStructure)
	fees.POST("/structures/:id/invoices", feeHandler.GenerateInvoices)
	fees.GET("/invoices", feeHandler.ListInvoices)
	fees.POST("/invoices/:id/payments", feeHandler.RecordPayment)

	library := api.Group("/library")
	library.POST("/books", libraryHandler.CreateBook)
	library.GET("/books", libraryHandler.ListBooks)
	library.PATCH("/books/:id", libraryHandler.UpdateBook)
	library.DELETE("/books/:id", libraryHandler.DeleteBook)
	library.POST("/issues", libraryHandler.IssueBook)
	library.POST("/issues/:id/return", libraryHandler.ReturnBook)
	library.GET("/issues", libraryHandler.ListIssues)

	hostel := api.Group("/hostel")
	hostel.POST("/rooms", hostelHandler.CreateRoom)
	hostel.GET("/rooms", hostelHandler.ListRooms)
	hostel.PATCH("/rooms/:id", hostelHandler.UpdateRoom)
	hostel.DELETE("/rooms/:id", hostelHandler.DeleteRoom)
	hostel.POST("/allocations", hostelHandler.Allocate)
	hostel.POST("/allocations/:id/vacate", hostelHandler.Vacate)
	hostel.GET("/allocations", hostelHandler.ListAllocations)

	exams := api.Group("/exams")
	exams.POST("/results", examHandler.RecordResult)
	exams.GET("/results", examHandler.ListResults)

	notices := api.Group("/notices")
	notices.POST("", noticeHandler.Create)
	notices.GET("", noticeHandler.List)
	notices.PATCH("/:id", noticeHandler.Update)
	notices.DELETE("/:id", noticeHandler.Delete)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
