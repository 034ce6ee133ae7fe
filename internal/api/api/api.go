package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"rsvpservice/cmd/middleware"
	"rsvpservice/internal/service"
)

type Routers struct {
	Service service.Service
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())
	apiGroup := app.Group("/api")

	apiGroup.POST("/rsvp", r.Service.CreateRsvp)
	apiGroup.PUT("/rsvp", r.Service.UpdateRsvp)
	apiGroup.GET("/rsvps", r.Service.ListRsvps)
	apiGroup.DELETE("/rsvp/:id", r.Service.CancelRsvp)
	apiGroup.POST("/events", r.Service.CreateEvent)
	apiGroup.GET("/rsvp-counts", r.Service.GetRsvpCounts)

	return app
}
