package server

import (
	"net/http"

	"DietWallah/internal/dietplan"
	"DietWallah/internal/utility"
	"github.com/labstack/echo/v4"
)

// refreshSocketHandler keeps a socket open for a page waiting on its plan.
// It never creates a session: without one there is nothing to wait for.
func (s *Server) refreshSocketHandler(c echo.Context) error {
	id, ok := s.store.SessionID(c.Request())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "No session"})
	}
	ctrl, ok := s.store.Peek(id)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Session expired"})
	}

	ws, err := utility.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	s.hub.Register(id, ws)
	defer s.hub.Unregister(id, ws)

	// The plan may have landed between the page render and this upgrade.
	if ctrl.Snapshot().State.Phase != dietplan.Loading {
		s.hub.Notify(id)
	}

	// We don't expect messages from the client, but we must read to notice the close.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	return nil
}
