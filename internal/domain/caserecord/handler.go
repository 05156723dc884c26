package caserecord

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rullypratama/sms-backend/internal/platform/auth"
	"github.com/rullypratama/sms-backend/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/case-information-list/", h.ListAll)
	e.POST("/case-information-list/", h.Submit)
	e.GET("/case-information-list/:id", h.Get)
	e.POST("/case-information-list/:id", h.Forward)
	e.PUT("/case-information-list/:id", h.Edit)
	e.GET("/received-case-list/", h.ListReceived)
	e.GET("/sent-case-list/", h.ListSent)
}

func caseHref(id uuid.UUID) string {
	return "/case-information-list/" + id.String()
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	return id, nil
}

func (h *Handler) respondErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateRoute):
		return echo.NewHTTPError(http.StatusConflict, "case already routed to that facility")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

// Submit creates a case report and routes it from the reporter's facility.
func (h *Handler) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var in SubmitInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.svc.SubmitCase(ctx, userID, in)
	if err != nil {
		return h.respondErr(err)
	}

	c.Response().Header().Set(echo.HeaderLocation, caseHref(id))
	return c.JSON(http.StatusCreated, map[string]string{
		"id":   id.String(),
		"href": caseHref(id),
	})
}

// Get serves the full case detail. Open access: field teams follow the
// href from a notification without a session.
func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ci, err := h.svc.GetCase(c.Request().Context(), id)
	if err != nil {
		return h.respondErr(err)
	}
	return c.JSON(http.StatusOK, ci)
}

// Forward routes an existing case up the actor's facility chain.
func (h *Handler) Forward(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	routeID, err := h.svc.ForwardCase(ctx, id, userID)
	if err != nil {
		return h.respondErr(err)
	}
	c.Response().Header().Set(echo.HeaderLocation, caseHref(id))
	return c.JSON(http.StatusCreated, map[string]string{
		"id":       id.String(),
		"route_id": routeID.String(),
		"href":     caseHref(id),
	})
}

// Edit replaces the case's report fields.
func (h *Handler) Edit(c echo.Context) error {
	ctx := c.Request().Context()
	if _, ok := auth.UserIDFromContext(ctx); !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in SubmitInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.EditCase(ctx, id, in); err != nil {
		return h.respondErr(err)
	}
	ci, err := h.svc.GetCase(ctx, id)
	if err != nil {
		return h.respondErr(err)
	}
	return c.JSON(http.StatusOK, ci)
}

// list runs one of the feed projections scoped to the caller's facility.
func (h *Handler) list(c echo.Context, fn func(ctx echo.Context, facilityID uuid.UUID, limit int) ([]*RouteView, error)) error {
	ctx := c.Request().Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	f, err := h.svc.ReporterFacility(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "resolve facility failed")
	}
	if f == nil {
		return c.JSON(http.StatusOK, []*RouteView{})
	}

	pg := pagination.FromContext(c)
	items, err := fn(c, f.ID, pg.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list cases failed")
	}
	if items == nil {
		items = []*RouteView{}
	}
	for _, it := range items {
		it.Href = caseHref(it.CaseID)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListReceived(c echo.Context) error {
	return h.list(c, func(c echo.Context, facilityID uuid.UUID, limit int) ([]*RouteView, error) {
		return h.svc.ListInbox(c.Request().Context(), facilityID, limit)
	})
}

func (h *Handler) ListSent(c echo.Context) error {
	return h.list(c, func(c echo.Context, facilityID uuid.UUID, limit int) ([]*RouteView, error) {
		return h.svc.ListSentbox(c.Request().Context(), facilityID, limit)
	})
}

func (h *Handler) ListAll(c echo.Context) error {
	return h.list(c, func(c echo.Context, facilityID uuid.UUID, limit int) ([]*RouteView, error) {
		return h.svc.ListAll(c.Request().Context(), facilityID, limit)
	})
}
