package app

import (
	"github.com/osvaldoandrade/pitchflow/internal/controllers"
	"github.com/osvaldoandrade/pitchflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupMappings(app *Application) {
	app.Engine.GET("/healthz", controllers.Healthz)
	app.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ttl := app.Sessions.TTL()
	client := app.Engine.Group("", middleware.ClientSessionMiddleware(app.Sessions, ttl, !app.Config.IsDev()))
	submitLimit := middleware.RateLimitSubmit(app.RateLimiter)

	submit := controllers.NewSubmitController(app.Clients)
	reset := controllers.NewResetController(app.Clients)
	{
		client.GET("/", controllers.NewPageController(app.Clients).Handle)
		client.POST("/submit", submitLimit, submit.HandleForm)
		client.POST("/reset", reset.HandleForm)
		client.POST("/draft", controllers.NewDraftController(app.Clients).Handle)
		client.GET("/result", controllers.NewResultController(app.Clients).Handle)
		client.GET("/ws", controllers.NewStreamController(app.Clients).Handle)

		api := client.Group("/api")
		api.GET("/state", controllers.NewStateController(app.Clients).Handle)
		api.POST("/submissions", submitLimit, submit.HandleAPI)
		api.POST("/reset", reset.HandleAPI)
	}
}
