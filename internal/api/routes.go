package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachplan/scheduling-app/internal/domain"
	"coachplan/scheduling-app/internal/metrics"
	"coachplan/scheduling-app/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	coachService service.CoachService,
	clientService service.ClientService,
) {

	authHandler := NewAuthHandler(authService)
	coachHandler := NewCoachHandler(coachService)
	clientHandler := NewClientHandler(clientService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", metrics.Handler())

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Coach Routes ---
		// Require authentication AND the 'coach' role.
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			// Roster
			coachGroup.POST("/clients", coachHandler.AddClientByEmail)
			coachGroup.GET("/clients", coachHandler.GetManagedClients)

			// Training plans
			coachGroup.POST("/clients/:clientId/plans", coachHandler.CreateTrainingPlan)
			coachGroup.GET("/clients/:clientId/plans", coachHandler.GetTrainingPlansForClient)

			// Initial program placement onto the calendar
			coachGroup.POST("/plans/:planId/schedule", coachHandler.ScheduleProgram)
			coachGroup.GET("/clients/:clientId/sessions", coachHandler.GetClientSessions)

			// Blocked dates
			coachGroup.POST("/block-rules", coachHandler.CreateBlockRule)
			coachGroup.GET("/block-rules", coachHandler.GetBlockRules)
			coachGroup.DELETE("/block-rules/:id", coachHandler.DeleteBlockRule)
		}

		// --- Client Routes ---
		clientGroup := protected.Group("/client")
		clientGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientGroup.GET("/sessions", clientHandler.GetMySessions)
			clientGroup.POST("/sessions/:id/complete", clientHandler.CompleteSession)
		}
	}
}
