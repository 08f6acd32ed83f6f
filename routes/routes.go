package routes

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"graffiti/wall"
)

func AddWallRoutes(router *httprouter.Router, h *wall.Handlers) {
	router.GET("/api/photos", h.ListPhotos)
	router.GET("/api/photo/:id", h.PhotoImage)
	router.GET("/api/stats", h.GetStats)
	router.GET("/api/top_users", h.TopUsers)
	router.POST("/api/like", h.ToggleLike)
	router.POST("/api/delete_photo", h.DeletePhoto)
	router.GET("/api/is_admin/:user_id", h.IsAdmin)
}

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/webapp/*filepath", http.Dir("static/webapp"))
}
