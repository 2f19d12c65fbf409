package server

import (
	"errors"
	"net/http"

	"DietWallah/internal/dietplan"
	"DietWallah/internal/utility"
	"github.com/labstack/echo/v4"
)

const pageTitle = "Diet Wallah"

type fieldView struct {
	dietplan.FieldSpec
	Value string
}

// pageData is what index.html renders. Exactly one of the form, the spinner
// or the result pane is drawn, chosen by Phase.
type pageData struct {
	Title   string
	Phase   string
	Fields  []fieldView
	Plan    dietplan.Plan
	HasPlan bool
	Failed  bool
	Message string
}

func newPageData(snap dietplan.Snapshot) pageData {
	data := pageData{
		Title:   pageTitle,
		Phase:   snap.State.Phase.String(),
		Failed:  snap.State.Phase == dietplan.Failed,
		Message: snap.State.Message,
	}
	data.Plan, data.HasPlan = snap.Plan()

	if snap.State.Phase == dietplan.Idle {
		data.Fields = make([]fieldView, 0, len(dietplan.Fields))
		for _, spec := range dietplan.Fields {
			value, _ := snap.Inputs.Get(spec.Key)
			data.Fields = append(data.Fields, fieldView{FieldSpec: spec, Value: value})
		}
	}
	return data
}

// renderFormHandler serves the single page in whatever state the session is in.
func (s *Server) renderFormHandler(c echo.Context) error {
	_, ctrl, err := s.store.Lookup(c.Response(), c.Request())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Render(http.StatusOK, "index.html", newPageData(ctrl.Snapshot()))
}

// updateFieldHandler handles POST /field/:name, sent as the user edits a control.
func (s *Server) updateFieldHandler(c echo.Context) error {
	_, ctrl, err := s.store.Lookup(c.Response(), c.Request())
	if err != nil {
		return err
	}
	if err := ctrl.UpdateField(c.Param("name"), c.FormValue("value")); err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// submitFormHandler applies every posted field, starts the request and sends
// the browser back to the page, which now shows the spinner.
func (s *Server) submitFormHandler(c echo.Context) error {
	id, ctrl, err := s.store.Lookup(c.Response(), c.Request())
	if err != nil {
		return err
	}
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form body")
	}

	logger := requestLogger(c).With().Str("session_id", id).Str("ip", utility.GetRealIP(c)).Logger()

	err = applyFields(ctrl, form)
	if err == nil {
		err = ctrl.Start()
	}
	switch {
	case err == nil:
		logger.Info().Msg("Diet plan submitted")
	case errors.Is(err, dietplan.ErrFormLocked), errors.Is(err, dietplan.ErrNotIdle):
		// Another tab got there first; the page shows whatever is running.
		logger.Debug().Err(err).Msg("Ignoring submit outside the form")
	default:
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// resetFormHandler handles the "Generate Another Plan" button.
func (s *Server) resetFormHandler(c echo.Context) error {
	_, ctrl, err := s.store.Lookup(c.Response(), c.Request())
	if err != nil {
		return err
	}
	if err := ctrl.Reset(); err != nil {
		requestLogger(c).Debug().Err(err).Msg("Nothing to reset")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// applyFields copies the known fields present in form into the controller.
// Absent fields keep their current value.
func applyFields(ctrl *dietplan.Controller, form map[string][]string) error {
	for _, spec := range dietplan.Fields {
		values, ok := form[spec.Key]
		if !ok || len(values) == 0 {
			continue
		}
		if err := ctrl.UpdateField(spec.Key, values[0]); err != nil {
			return err
		}
	}
	return nil
}

// statusFor maps controller errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dietplan.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, dietplan.ErrFormLocked),
		errors.Is(err, dietplan.ErrNotIdle),
		errors.Is(err, dietplan.ErrNoResponse):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
