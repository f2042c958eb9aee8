package routes

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/controllers"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.Default()

	store := cookie.NewStore([]byte("cruiselink-session-key"))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 24, // 1 day
		Path:     "/",
		Secure:   false, // Set to true in production with HTTPS
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("cruiselink", store))

	api := router.Group("/v1")
	{
		// Public onboarding and login
		api.POST("/affiliates/apply", controllers.ApplyProfile)
		api.POST("/affiliates/login", controllers.AffiliateLogin)

		initAffiliateRoutes(api)
		initAdminRoutes(api)
	}

	return router
}
