package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamaepingo/voice-eval/api/middleware"
	"github.com/mamaepingo/voice-eval/domain"
)

type AudioController struct {
	Sessions domain.SessionUsecase
	Catalog  domain.CatalogUsecase
}

func NewAudioController(sessions domain.SessionUsecase, catalog domain.CatalogUsecase) *AudioController {
	return &AudioController{
		Sessions: sessions,
		Catalog:  catalog,
	}
}

// Stream proxies the clip bytes for one item of the caller's own catalog.
// Lookup goes through the session so a rater can only reach clips they were
// dealt, by anonymous id only.
func (ctrl *AudioController) Stream(c *gin.Context) {
	anonymousID := c.Query("id")
	if anonymousID == "" {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "missing id parameter")
		return
	}

	state, err := ctrl.Sessions.Get(c.Request.Context(), c.GetString(middleware.SessionIDKey))
	if err != nil {
		FailWith(c, err)
		return
	}

	item, ok := state.FindItem(anonymousID)
	if !ok {
		FailWith(c, domain.ErrItemNotFound)
		return
	}

	data, err := ctrl.Catalog.FetchAudio(c.Request.Context(), item)
	if err != nil {
		FailWith(c, err)
		return
	}
	c.Data(http.StatusOK, item.ContentType, data)
}
