package api

import (
	"github.com/burenotti/nutrition_counselling/internal/app/card"
	sessionapp "github.com/burenotti/nutrition_counselling/internal/app/session"
	"github.com/burenotti/nutrition_counselling/internal/app/unitofwork"
	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"github.com/burenotti/nutrition_counselling/internal/domain/session"
	"github.com/labstack/echo/v4"
	"github.com/mileusna/useragent"
	"net/http"
)

func (s *Server) MountSessions() {
	g := s.handler.Group("/sessions")
	g.POST("", s.OpenSession)
	g.GET("/:session_id", s.GetSession)
	g.DELETE("/:session_id", s.CloseSession)
	g.POST("/:session_id/reload", s.ReloadSession)
	g.POST("/:session_id/activity", s.ChangeActivity)
	g.POST("/:session_id/gender", s.ChangeGender)
	g.POST("/:session_id/weight", s.EditWeight)
	g.PUT("/:session_id/notes", s.SaveNotes)
}

func (s *Server) getSessionUoW() *sessionapp.UoW {
	return unitofwork.New[*sessionapp.AtomicContext](
		sessionapp.NewAtomicContext(s.sessions),
		s.msgBus,
		s.logger,
	)
}

type OpenSessionRequest struct {
	CounsellingID string `json:"counselling_id" validate:"max=64"`
	ClientName    string `json:"client_name" validate:"max=200"`
	ReadOnly      bool   `json:"read_only"`
}

type OpenSessionResponse struct {
	SessionID string `json:"session_id"`
}

func (s *Server) OpenSession(c echo.Context) error {
	var req OpenSessionRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	agent := useragent.Parse(c.Request().UserAgent())

	sess, err := s.sessionService.Open(c.Request().Context(), s.getSessionUoW(), req.CounsellingID, req.ClientName, !req.ReadOnly)
	if err != nil {
		return DomainError(c, err)
	}

	s.logger.Info("card session opened",
		"session_id", sess.SessionID,
		"counselling_id", req.CounsellingID,
		"browser", agent.Name,
		"os", agent.OS,
		"device", agent.Device,
	)
	return c.JSON(http.StatusAccepted, OpenSessionResponse{SessionID: sess.SessionID})
}

type SessionRequest struct {
	SessionID string `param:"session_id" validate:"required"`
}

type CardResponse struct {
	SessionID     string    `json:"session_id"`
	CounsellingID string    `json:"counselling_id"`
	Committed     bool      `json:"committed,omitempty"`
	Card          card.Card `json:"card"`
}

func (s *Server) cardResponse(sess *session.Session) CardResponse {
	return CardResponse{
		SessionID:     sess.SessionID,
		CounsellingID: sess.CounsellingID,
		Card:          s.sessionService.Render(sess),
	}
}

func (s *Server) GetSession(c echo.Context) error {
	var req SessionRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	sess, err := s.sessionService.Get(c.Request().Context(), s.getSessionUoW(), req.SessionID)
	if err != nil {
		return DomainError(c, err)
	}
	return c.JSON(http.StatusOK, s.cardResponse(sess))
}

func (s *Server) CloseSession(c echo.Context) error {
	var req SessionRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	if err := s.sessionService.Close(c.Request().Context(), s.getSessionUoW(), req.SessionID); err != nil {
		return DomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) ReloadSession(c echo.Context) error {
	var req SessionRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	if err := s.sessionService.Reload(c.Request().Context(), s.getSessionUoW(), req.SessionID); err != nil {
		return DomainError(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

type ChangeActivityRequest struct {
	SessionID     string `param:"session_id" validate:"required"`
	ActivityLevel *int   `json:"activity_level" validate:"required"`
}

func (s *Server) ChangeActivity(c echo.Context) error {
	var req ChangeActivityRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	level, err := metabolic.ParseActivityLevel(*req.ActivityLevel)
	if err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	sess, err := s.sessionService.ChangeActivity(c.Request().Context(), s.getSessionUoW(), req.SessionID, level)
	if err != nil {
		return DomainError(c, err)
	}
	return c.JSON(http.StatusOK, s.cardResponse(sess))
}

type ChangeGenderRequest struct {
	SessionID string `param:"session_id" validate:"required"`
	Gender    *int   `json:"gender" validate:"required"`
}

func (s *Server) ChangeGender(c echo.Context) error {
	var req ChangeGenderRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	gender, err := metabolic.ParseGender(*req.Gender)
	if err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	sess, err := s.sessionService.ChangeGender(c.Request().Context(), s.getSessionUoW(), req.SessionID, gender)
	if err != nil {
		return DomainError(c, err)
	}
	return c.JSON(http.StatusOK, s.cardResponse(sess))
}

type EditWeightRequest struct {
	SessionID string `param:"session_id" validate:"required"`
	Input     string `json:"input" validate:"required,oneof=click type blur enter escape"`
	Text      string `json:"text" validate:"max=32"`
}

func (s *Server) EditWeight(c echo.Context) error {
	var req EditWeightRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	sess, committed, err := s.sessionService.EditWeight(
		c.Request().Context(),
		s.getSessionUoW(),
		req.SessionID,
		session.EditInput(req.Input),
		req.Text,
	)
	if err != nil {
		return DomainError(c, err)
	}

	resp := s.cardResponse(sess)
	resp.Committed = committed
	return c.JSON(http.StatusOK, resp)
}

type SaveNotesRequest struct {
	SessionID string `param:"session_id" validate:"required"`
	Nutrition string `json:"nutrition" validate:"max=4000"`
	Exercise  string `json:"exercise" validate:"max=4000"`
	Goals     string `json:"goals" validate:"max=2000"`
}

func (s *Server) SaveNotes(c echo.Context) error {
	var req SaveNotesRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	sess, err := s.sessionService.SaveNotes(c.Request().Context(), s.getSessionUoW(), req.SessionID, session.Notes{
		Nutrition: req.Nutrition,
		Exercise:  req.Exercise,
		Goals:     req.Goals,
	})
	if err != nil {
		return DomainError(c, err)
	}
	return c.JSON(http.StatusOK, s.cardResponse(sess))
}
