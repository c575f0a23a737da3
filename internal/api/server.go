package api

import (
	"context"
	"math/rand"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gytx-dev/tombola-api/docs"
	v1 "github.com/gytx-dev/tombola-api/internal/api/handler/v1"
	"github.com/gytx-dev/tombola-api/internal/api/middleware"
	"github.com/gytx-dev/tombola-api/internal/config"
	"github.com/gytx-dev/tombola-api/internal/payment"
	"github.com/gytx-dev/tombola-api/internal/pkg/randutil"
	"github.com/gytx-dev/tombola-api/internal/repository"
	"github.com/gytx-dev/tombola-api/internal/repository/dao"
	"github.com/gytx-dev/tombola-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	rng := randutil.NewLocked()

	authHandler := s.initAuthHandler(db)
	tombolaHandler := s.initTombolaHandler(db)
	couponHandler := s.initCouponHandler(db, rng)
	commissionHandler := s.initCommissionHandler(db, rng)
	participationHandler := s.initParticipationHandler(db, rng)
	drawHandler := s.initDrawHandler(db, rng)
	s.MountHandlers(authHandler, tombolaHandler, couponHandler, commissionHandler, participationHandler, drawHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	repo := repository.NewSettingsRepository(dao.NewSettingsDAO(db))
	svc := service.NewAuthService(repo)

	if err := svc.Bootstrap(context.Background(), s.Config.API.AdminPassword); err != nil {
		zap.L().Error("failed to seed admin password", zap.Error(err))
	}

	return v1.NewAuthHandler(s.Config.API, svc)
}

func (s *Server) initTombolaHandler(db *gorm.DB) *v1.TombolaHandler {
	repo := repository.NewTombolaRepository(dao.NewTombolaDAO(db))
	participantRepo := repository.NewParticipantRepository(dao.NewParticipantDAO(db))
	couponRepo := repository.NewCouponRepository(dao.NewCouponDAO(db))
	svc := service.NewTombolaService(repo, participantRepo, couponRepo)

	return v1.NewTombolaHandler(svc)
}

func (s *Server) initCouponHandler(db *gorm.DB, rng *rand.Rand) *v1.CouponHandler {
	repo := repository.NewCouponRepository(dao.NewCouponDAO(db))
	commissionRepo := repository.NewCommissionRepository(dao.NewCommissionDAO(db))
	svc := service.NewCouponService(repo, commissionRepo, rng)

	return v1.NewCouponHandler(svc)
}

func (s *Server) initCommissionHandler(db *gorm.DB, rng *rand.Rand) *v1.CommissionHandler {
	repo := repository.NewCommissionRepository(dao.NewCommissionDAO(db))
	couponRepo := repository.NewCouponRepository(dao.NewCouponDAO(db))
	tombolaRepo := repository.NewTombolaRepository(dao.NewTombolaDAO(db))
	svc := service.NewCommissionService(repo, couponRepo, tombolaRepo, rng)

	return v1.NewCommissionHandler(svc)
}

func (s *Server) initParticipationHandler(db *gorm.DB, rng *rand.Rand) *v1.ParticipationHandler {
	repo := repository.NewParticipantRepository(dao.NewParticipantDAO(db))
	tombolaRepo := repository.NewTombolaRepository(dao.NewTombolaDAO(db))
	couponRepo := repository.NewCouponRepository(dao.NewCouponDAO(db))
	commissionRepo := repository.NewCommissionRepository(dao.NewCommissionDAO(db))
	couponSvc := service.NewCouponService(couponRepo, commissionRepo, rng)
	gateway := payment.NewClient(s.Config.Payment)
	svc := service.NewParticipationService(repo, tombolaRepo, couponSvc, gateway, rng)

	return v1.NewParticipationHandler(svc)
}

func (s *Server) initDrawHandler(db *gorm.DB, rng *rand.Rand) *v1.DrawHandler {
	tombolaRepo := repository.NewTombolaRepository(dao.NewTombolaDAO(db))
	participantRepo := repository.NewParticipantRepository(dao.NewParticipantDAO(db))
	couponRepo := repository.NewCouponRepository(dao.NewCouponDAO(db))
	winnerRepo := repository.NewWinnerRepository(dao.NewWinnerDAO(db))
	svc := service.NewDrawService(tombolaRepo, participantRepo, couponRepo, winnerRepo, rng)

	return v1.NewDrawHandler(svc)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, tombolaHandler *v1.TombolaHandler, couponHandler *v1.CouponHandler, commissionHandler *v1.CommissionHandler, participationHandler *v1.ParticipationHandler, drawHandler *v1.DrawHandler) {
	const basePath = "/api/v1"

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/login", authHandler.HandleLogin)

		public.GET("/tombolas/current", tombolaHandler.HandleGetCurrentTombola)
		public.GET("/tombolas/:tombolaID/winners", drawHandler.HandleGetTombolaWinners)
		public.GET("/winners", drawHandler.HandleGetWinners)

		public.POST("/participations", participationHandler.HandleParticipate)
		public.GET("/participants/:participantID/ticket", participationHandler.HandleGetTicket)

		public.POST("/coupons/validate", couponHandler.HandleValidateCoupon)
		public.GET("/sponsors/:phone/coupons", couponHandler.HandleSponsorDashboard)
	}

	admin := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		admin.PUT("/auth/password", authHandler.HandleChangePassword)

		admin.GET("/stats", tombolaHandler.HandleGetGlobalStats)
		admin.GET("/tombolas", tombolaHandler.HandleGetTombolas)
		admin.POST("/tombolas", tombolaHandler.HandleCreateTombola)
		admin.GET("/tombolas/:tombolaID", tombolaHandler.HandleGetTombola)
		admin.PUT("/tombolas/:tombolaID", tombolaHandler.HandleUpdateTombola)
		admin.DELETE("/tombolas/:tombolaID", tombolaHandler.HandleDeleteTombola)
		admin.POST("/tombolas/:tombolaID/cancel", tombolaHandler.HandleCancelTombola)

		admin.GET("/participants", participationHandler.HandleGetParticipants)
		admin.GET("/tombolas/:tombolaID/participants", participationHandler.HandleGetTombolaParticipants)

		admin.POST("/coupons", couponHandler.HandleCreateCoupon)
		admin.GET("/tombolas/:tombolaID/coupons", couponHandler.HandleGetCoupons)
		admin.PUT("/coupons/:couponID/discount", couponHandler.HandleUpdateCouponDiscount)
		admin.DELETE("/coupons/:couponID", couponHandler.HandleDeleteCoupon)
		admin.POST("/coupons/:couponID/archive", couponHandler.HandleArchiveCoupon)
		admin.POST("/coupons/:couponID/parrain-contacted", couponHandler.HandleSetParrainContacted)

		admin.GET("/tombolas/:tombolaID/commission-tiers", commissionHandler.HandleGetTiers)
		admin.PUT("/tombolas/:tombolaID/commission-tiers", commissionHandler.HandleReplaceTiers)
		admin.GET("/tombolas/:tombolaID/commissions", commissionHandler.HandleGetCommissionSummary)
		admin.POST("/tombolas/:tombolaID/commissions/recompute", commissionHandler.HandleRecomputeCommissions)
		admin.GET("/tombolas/:tombolaID/sponsor-payments", commissionHandler.HandleGetPayments)
		admin.GET("/coupons/:couponID/commission", commissionHandler.HandleGetCommissionBreakdown)
		admin.POST("/coupons/:couponID/pay", commissionHandler.HandlePaySponsor)
		admin.GET("/coupons/:couponID/receipt", commissionHandler.HandleGetReceipt)

		admin.POST("/tombolas/:tombolaID/draw", drawHandler.HandlePerformDraw)
		admin.POST("/winners/:winnerID/photo", drawHandler.HandleAttachWinnerPhoto)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Tombola API"
	docs.SwaggerInfo.Description = "Digital tombola with sponsor coupons, tiered commissions and mobile-money payments."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
