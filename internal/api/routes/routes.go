package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/speaksharp/speaksharp/internal/api/handlers"
	"github.com/speaksharp/speaksharp/internal/api/middleware"
)

type Deps struct {
	Score    *handlers.ScoreHandler
	Session  *handlers.SessionHandler
	Content  *handlers.ContentHandler
	Progress *handlers.ProgressHandler
	WS       *handlers.WSHandler

	// VendorConfigured reports whether a real assessment vendor is wired
	// in, as opposed to the deterministic stand-in.
	VendorConfigured bool

	Entitlements middleware.Entitlements
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":            "ok",
			"vendor_configured": d.VendorConfigured,
			"time":              time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Public demo flow: one-shot scoring with the built-in items.
	r.GET("/api/demo/items", d.Score.DemoItems)
	r.POST("/api/score", d.Score.Score)

	// Protected routes (Supabase JWT)
	auth := r.Group("/api")
	auth.Use(middleware.JWTAuth())

	auth.POST("/sessions", d.Session.Start)
	auth.GET("/sessions", d.Session.History)
	auth.GET("/sessions/:session_id", d.Session.Get)
	auth.POST("/sessions/:session_id/record", d.Session.BeginRecording)
	auth.POST("/sessions/:session_id/attempt", d.Session.SubmitAttempt)
	auth.POST("/sessions/:session_id/advance", d.Session.Advance)
	auth.POST("/sessions/:session_id/abandon", d.Session.Abandon)

	auth.GET("/learn/path", d.Content.LearningPath)
	auth.GET("/learn/lessons/:lesson_id/items", d.Content.LessonItems)

	auth.GET("/progress", d.Progress.Get)
	auth.POST("/progress/lessons/complete", d.Progress.CompleteLesson)

	// Heart refills are a paid perk.
	pro := auth.Group("/")
	pro.Use(middleware.RequirePro(d.Entitlements))
	pro.POST("/progress/hearts/refill", d.Progress.RefillHearts)

	// Live practice over websocket
	auth.GET("/ws/sessions/:session_id", d.WS.SessionWS)
}
