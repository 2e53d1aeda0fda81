package api

import (
	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"github.com/labstack/echo/v4"
	"net/http"
)

func (s *Server) MountCounsellings() {
	s.handler.GET("/counsellings/:counselling_id/metabolic", s.GetMetabolicData)
}

type GetMetabolicDataRequest struct {
	CounsellingID string `param:"counselling_id" validate:"required,max=64"`
}

type GetMetabolicDataResponse struct {
	CounsellingID string            `json:"counselling_id"`
	Complete      bool              `json:"complete"`
	Warning       string            `json:"warning,omitempty"`
	Record        *metabolic.Record `json:"record"`
}

func (s *Server) GetMetabolicData(c echo.Context) error {
	var req GetMetabolicDataRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	rec, err := s.metabolicService.FetchMetabolicData(c.Request().Context(), req.CounsellingID)
	if err != nil {
		return DomainError(c, err)
	}

	resp := GetMetabolicDataResponse{
		CounsellingID: req.CounsellingID,
		Complete:      s.metabolicService.IsDataComplete(rec),
		Record:        rec,
	}
	if err := rec.Validate(); err != nil {
		resp.Warning = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}
