package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamaepingo/voice-eval/domain"
)

type AnalyticsController struct {
	Analytics domain.AnalyticsUsecase
	Catalog   domain.CatalogUsecase
}

func NewAnalyticsController(analytics domain.AnalyticsUsecase, catalog domain.CatalogUsecase) *AnalyticsController {
	return &AnalyticsController{
		Analytics: analytics,
		Catalog:   catalog,
	}
}

func (ctrl *AnalyticsController) Summary(c *gin.Context) {
	summary, err := ctrl.Analytics.Summarize(c.Request.Context())
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, "summary", summary)
}

func (ctrl *AnalyticsController) ExportCSV(c *gin.Context) {
	payload, err := ctrl.Analytics.ExportCSV(c.Request.Context())
	if err != nil {
		FailWith(c, err)
		return
	}
	filename := fmt.Sprintf("evaluations_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

func (ctrl *AnalyticsController) ExportReport(c *gin.Context) {
	payload, err := ctrl.Analytics.ExportReport(c.Request.Context())
	if err != nil {
		FailWith(c, err)
		return
	}
	filename := fmt.Sprintf("summary_%s.txt", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", payload)
}

// Refresh clears every read cache: the evaluation window, the catalog
// window, and the signed-URL window.
func (ctrl *AnalyticsController) Refresh(c *gin.Context) {
	ctrl.Analytics.Refresh()
	ctrl.Catalog.Invalidate()
	SuccessResponse(c, "refreshed", true)
}
