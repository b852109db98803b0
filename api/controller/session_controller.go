package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/mamaepingo/voice-eval/api/middleware"
	"github.com/mamaepingo/voice-eval/domain"
)

type SessionController struct {
	Sessions domain.SessionUsecase
	Catalog  domain.CatalogUsecase
	Tokens   *middleware.TokenManager
}

func NewSessionController(sessions domain.SessionUsecase, catalog domain.CatalogUsecase, tokens *middleware.TokenManager) *SessionController {
	return &SessionController{
		Sessions: sessions,
		Catalog:  catalog,
		Tokens:   tokens,
	}
}

type sessionEnvelope struct {
	Token      string `json:"token"`
	SessionID  string `json:"session_id"`
	TotalItems int    `json:"total_items"`
	Empty      bool   `json:"empty"`
	Message    string `json:"message,omitempty"`
}

func (ctrl *SessionController) Start(c *gin.Context) {
	state, err := ctrl.Sessions.Start(c.Request.Context())
	if err != nil {
		FailWith(c, err)
		return
	}

	token, err := ctrl.Tokens.Issue(state.ID)
	if err != nil {
		FailWith(c, err)
		return
	}

	envelope := sessionEnvelope{
		Token:      token,
		SessionID:  state.ID,
		TotalItems: len(state.Catalog),
		Empty:      len(state.Catalog) == 0,
	}
	// an empty catalog is a valid, explicitly messaged state, not a failure
	if envelope.Empty {
		envelope.Message = "no audio files available for evaluation"
	}
	SuccessResponse(c, "session", envelope)
}

type currentItemView struct {
	Complete     bool                  `json:"complete"`
	Index        int                   `json:"index"`
	Total        int                   `json:"total"`
	Evaluated    int                   `json:"evaluated"`
	AnonymousID  string                `json:"anonymous_id,omitempty"`
	Category     string                `json:"category,omitempty"`
	Duration     domain.DurationBucket `json:"duration,omitempty"`
	ContentType  string                `json:"content_type,omitempty"`
	AudioURL     string                `json:"audio_url,omitempty"`
	CurrentScore int                   `json:"current_score,omitempty"`
}

func (ctrl *SessionController) Current(c *gin.Context) {
	state, err := ctrl.Sessions.Get(c.Request.Context(), c.GetString(middleware.SessionIDKey))
	if err != nil {
		FailWith(c, err)
		return
	}

	view := currentItemView{
		Complete:  state.Complete(),
		Index:     state.CurrentIndex,
		Total:     len(state.Catalog),
		Evaluated: len(state.Evaluations),
	}
	if item, ok := state.Current(); ok {
		url, err := ctrl.Catalog.StreamURL(c.Request.Context(), item)
		if err != nil {
			FailWith(c, err)
			return
		}
		view.AnonymousID = item.AnonymousID
		view.Category = item.Category
		view.Duration = item.Duration
		view.ContentType = item.ContentType
		view.AudioURL = url
		view.CurrentScore = state.Evaluations[item.AnonymousID]
	}
	SuccessResponse(c, "current", view)
}

type progressView struct {
	Index     int  `json:"index"`
	Total     int  `json:"total"`
	Evaluated int  `json:"evaluated"`
	Complete  bool `json:"complete"`
}

func progressOf(state *domain.SessionState) progressView {
	return progressView{
		Index:     state.CurrentIndex,
		Total:     len(state.Catalog),
		Evaluated: len(state.Evaluations),
		Complete:  state.Complete(),
	}
}

func (ctrl *SessionController) Progress(c *gin.Context) {
	state, err := ctrl.Sessions.Get(c.Request.Context(), c.GetString(middleware.SessionIDKey))
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, "progress", progressOf(state))
}

func (ctrl *SessionController) Submit(c *gin.Context) {
	var req struct {
		Score int `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, 400, "INVALID_REQUEST", err.Error())
		return
	}

	state, err := ctrl.Sessions.Submit(
		c.Request.Context(),
		c.GetString(middleware.SessionIDKey),
		req.Score,
		c.Request.UserAgent(),
	)
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, "progress", progressOf(state))
}

func (ctrl *SessionController) Skip(c *gin.Context) {
	state, err := ctrl.Sessions.Skip(c.Request.Context(), c.GetString(middleware.SessionIDKey))
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, "progress", progressOf(state))
}

func (ctrl *SessionController) Previous(c *gin.Context) {
	state, err := ctrl.Sessions.Previous(c.Request.Context(), c.GetString(middleware.SessionIDKey))
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, "progress", progressOf(state))
}

func (ctrl *SessionController) Next(c *gin.Context) {
	state, err := ctrl.Sessions.Next(c.Request.Context(), c.GetString(middleware.SessionIDKey))
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, "progress", progressOf(state))
}

func (ctrl *SessionController) Reset(c *gin.Context) {
	state, err := ctrl.Sessions.Reset(c.Request.Context(), c.GetString(middleware.SessionIDKey))
	if err != nil {
		FailWith(c, err)
		return
	}

	token, err := ctrl.Tokens.Issue(state.ID)
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, "session", sessionEnvelope{
		Token:      token,
		SessionID:  state.ID,
		TotalItems: len(state.Catalog),
		Empty:      len(state.Catalog) == 0,
	})
}
