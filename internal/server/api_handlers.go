package server

import (
	"net/http"

	"DietWallah/internal/dietplan"
	"github.com/labstack/echo/v4"
)

// UpdateFieldRequest is the body of PUT /api/plan/fields/:name.
type UpdateFieldRequest struct {
	Value string `json:"value"`
}

// PlanResponse is the JSON view of a session's form.
type PlanResponse struct {
	Inputs dietplan.FormInputs `json:"inputs"`
	State  dietplan.State      `json:"state"`
	Plan   *dietplan.Plan      `json:"plan,omitempty"`
}

func newPlanResponse(snap dietplan.Snapshot) PlanResponse {
	res := PlanResponse{Inputs: snap.Inputs, State: snap.State}
	if plan, ok := snap.Plan(); ok {
		res.Plan = &plan
	}
	return res
}

func controllerErrorJSON(c echo.Context, err error) error {
	return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
}

// getPlanHandler handles GET /api/plan
func (s *Server) getPlanHandler(c echo.Context) error {
	_, ctrl, err := s.store.Lookup(c.Response(), c.Request())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPlanResponse(ctrl.Snapshot()))
}

// updatePlanFieldHandler handles PUT /api/plan/fields/:name
func (s *Server) updatePlanFieldHandler(c echo.Context) error {
	_, ctrl, err := s.store.Lookup(c.Response(), c.Request())
	if err != nil {
		return err
	}

	var req UpdateFieldRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := ctrl.UpdateField(c.Param("name"), req.Value); err != nil {
		return controllerErrorJSON(c, err)
	}
	return c.JSON(http.StatusOK, newPlanResponse(ctrl.Snapshot()))
}

// submitPlanHandler handles POST /api/plan/submit. It holds the request open
// until the model answers, the timeout fires, or the client goes away.
func (s *Server) submitPlanHandler(c echo.Context) error {
	id, ctrl, err := s.store.Lookup(c.Response(), c.Request())
	if err != nil {
		return err
	}
	if _, err := ctrl.Submit(c.Request().Context()); err != nil {
		return controllerErrorJSON(c, err)
	}
	requestLogger(c).Info().Str("session_id", id).Msg("Diet plan request finished")
	return c.JSON(http.StatusOK, newPlanResponse(ctrl.Snapshot()))
}

// resetPlanHandler handles POST /api/plan/reset
func (s *Server) resetPlanHandler(c echo.Context) error {
	_, ctrl, err := s.store.Lookup(c.Response(), c.Request())
	if err != nil {
		return err
	}
	if err := ctrl.Reset(); err != nil {
		return controllerErrorJSON(c, err)
	}
	return c.JSON(http.StatusOK, newPlanResponse(ctrl.Snapshot()))
}
