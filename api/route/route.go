package route

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamaepingo/voice-eval/api/controller"
	"github.com/mamaepingo/voice-eval/api/middleware"
	"github.com/mamaepingo/voice-eval/bootstrap"
	"github.com/mamaepingo/voice-eval/domain"
	"github.com/mamaepingo/voice-eval/mongo"
	"github.com/mamaepingo/voice-eval/repository"
	"github.com/mamaepingo/voice-eval/usecase"
)

// Setup wires repositories, usecases and controllers onto the engine.
func Setup(app *bootstrap.Application, engine *gin.Engine) {
	env := app.Env
	timeout := time.Duration(env.ContextTimeout) * time.Second
	db := app.Mongo.Database(env.MongoDatabase)

	storage := repository.NewObjectStorage(app.S3, app.S3Presign, env.AWSRegion)
	catalog := usecase.NewCatalogUsecase(
		storage,
		env.S3Bucket, env.S3Prefix,
		time.Duration(env.CatalogCacheMinutes)*time.Minute,
		time.Duration(env.SignedURLTTLMinutes)*time.Minute,
		timeout,
		app.Logger,
	)
	tokens := middleware.NewTokenManager(env.SessionSecret, time.Duration(env.SessionTTLHours)*time.Hour)

	public := engine.Group("/api")
	protected := engine.Group("/api")
	protected.Use(middleware.SessionRequired(tokens))

	NewSessionRouter(env, timeout, db, catalog, tokens, app, public, protected)
	NewAnalyticsRouter(env, timeout, db, catalog, public)
	NewHealthRouter(db, repository.NewEvaluationRepository(db, env.EvaluationCollection), engine)
}

func NewSessionRouter(
	env *bootstrap.Env,
	timeout time.Duration,
	db mongo.Database,
	catalog domain.CatalogUsecase,
	tokens *middleware.TokenManager,
	app *bootstrap.Application,
	public, protected *gin.RouterGroup,
) {
	evalRepo := repository.NewEvaluationRepository(db, env.EvaluationCollection)
	recorder := usecase.NewEvaluationUsecase(evalRepo, timeout)
	sessionRepo := repository.NewSessionRepository(time.Duration(env.SessionTTLHours) * time.Hour)
	sessions := usecase.NewSessionUsecase(sessionRepo, catalog, recorder, timeout, app.Logger)

	sessionCtrl := controller.NewSessionController(sessions, catalog, tokens)
	audioCtrl := controller.NewAudioController(sessions, catalog)

	public.POST("/sessions", sessionCtrl.Start)

	sessionGroup := protected.Group("/sessions")
	{
		sessionGroup.GET("/current", sessionCtrl.Current)
		sessionGroup.GET("/progress", sessionCtrl.Progress)
		sessionGroup.POST("/submit", sessionCtrl.Submit)
		sessionGroup.POST("/skip", sessionCtrl.Skip)
		sessionGroup.POST("/previous", sessionCtrl.Previous)
		sessionGroup.POST("/next", sessionCtrl.Next)
		sessionGroup.POST("/reset", sessionCtrl.Reset)
	}
	protected.GET("/audio/stream", audioCtrl.Stream)
}

func NewAnalyticsRouter(
	env *bootstrap.Env,
	timeout time.Duration,
	db mongo.Database,
	catalog domain.CatalogUsecase,
	group *gin.RouterGroup,
) {
	evalRepo := repository.NewEvaluationRepository(db, env.EvaluationCollection)
	analytics := usecase.NewAnalyticsUsecase(
		evalRepo,
		time.Duration(env.AnalyticsCacheSeconds)*time.Second,
		timeout,
		env.FileDisplayPrefix,
	)
	ctrl := controller.NewAnalyticsController(analytics, catalog)

	analyticsGroup := group.Group("/analytics")
	{
		analyticsGroup.GET("/summary", ctrl.Summary)
		analyticsGroup.GET("/export/csv", ctrl.ExportCSV)
		analyticsGroup.GET("/export/report", ctrl.ExportReport)
		analyticsGroup.POST("/refresh", ctrl.Refresh)
	}
}

func NewHealthRouter(db mongo.Database, evaluations domain.EvaluationRepository, engine *gin.Engine) {
	engine.GET("/healthz", func(c *gin.Context) {
		if err := db.Client().Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		count, err := evaluations.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "evaluations": count})
	})
}
