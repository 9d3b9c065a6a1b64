package routes

import (
	"aboutsettings/internal/controllers"
	"aboutsettings/internal/middleware"
	"aboutsettings/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAboutRoutes registers the About panel API. Routes exposing
// identifiers require a bearer token when auth is non-nil.
func RegisterAboutRoutes(r *gin.Engine, about *controllers.AboutController, auth *services.AuthService) {
	group := r.Group("/about")
	{
		group.GET("/", middleware.BearerAuth(auth), about.GetAbout)
		group.GET("/disk", about.GetDiskSpace)
		group.GET("/disk/usage", about.GetDiskUsage)
		group.GET("/network", about.GetNetwork)
		group.GET("/version", about.GetVersions)
		group.GET("/identifiers", middleware.BearerAuth(auth), about.GetIdentifiers)
	}
}

// RegisterSystemRoutes registers health and metrics endpoints
func RegisterSystemRoutes(r *gin.Engine) {
	r.GET("/healthz", controllers.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
