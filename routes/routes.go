package routes

import (
	"github.com/gin-gonic/gin"
	supa "github.com/supabase-community/supabase-go"

	"github.com/sevispass/sevispass-backend/config"
	"github.com/sevispass/sevispass-backend/handlers"
	"github.com/sevispass/sevispass-backend/middleware"
	"github.com/sevispass/sevispass-backend/repository"
	"github.com/sevispass/sevispass-backend/services"
)

// SetupRoutes wires repositories, services and handlers onto the router.
// It returns the code service so main can run the cleanup sweep.
func SetupRoutes(router *gin.Engine, supabaseClient *supa.Client, cfg *config.Config) *services.CodeService {
	codeStore := repository.NewSupabaseCodeStore(supabaseClient)
	userStore := repository.NewSupabaseUserStore(supabaseClient)
	appointmentStore := repository.NewSupabaseAppointmentStore(supabaseClient)
	slotStore := repository.NewSupabaseSlotStore(supabaseClient)
	locationStore := repository.NewSupabaseLocationStore(supabaseClient)

	notifier := services.NewNotifier(cfg)
	codeService := services.NewCodeService(codeStore, userStore, notifier, cfg.AllowInsecureBypass)
	schedulingService := services.NewSchedulingService(appointmentStore, slotStore, locationStore, userStore, notifier)

	authHandler := handlers.NewAuthHandler(codeService, userStore, cfg)
	twoFactorHandler := handlers.NewTwoFactorHandler(codeService, userStore, cfg)
	biometricHandler := handlers.NewBiometricHandler(schedulingService)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"success": true,
			"message": "Server is running",
		})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/send-verification-code", authHandler.SendVerificationCode)
			auth.POST("/verify-code", authHandler.VerifyCode)
			auth.GET("/verify-code", authHandler.CodeStatus)
			auth.POST("/send-activation-email", authHandler.SendActivationEmail)
			auth.POST("/activate-account", authHandler.ActivateAccount)
			auth.POST("/send-2fa-code", twoFactorHandler.SendTwoFactorCode)
			auth.POST("/verify-2fa-code", twoFactorHandler.VerifyTwoFactorCode)
			auth.POST("/complete-2fa-login", twoFactorHandler.CompleteTwoFactorLogin)
		}

		// Public reference data
		api.GET("/biometric/locations", biometricHandler.GetLocations)
		api.POST("/biometric/availability", biometricHandler.Availability)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/auth/me", authHandler.GetMe)
			protected.PUT("/auth/me", authHandler.UpdateProfile)

			biometric := protected.Group("/biometric")
			{
				biometric.POST("/book", biometricHandler.Book)
				biometric.POST("/reschedule", biometricHandler.Reschedule)
				biometric.POST("/cancel", biometricHandler.Cancel)
				biometric.POST("/user-appointment", biometricHandler.UserAppointment)
			}
		}
	}

	return codeService
}
