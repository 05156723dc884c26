package facility

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rullypratama/sms-backend/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health-facility-list/", h.List)
	e.POST("/health-facility-list/", h.Create)
}

type facilityView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	Level   string `json:"level"`
	Address string `json:"address"`
	Linked  string `json:"linked"`
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, err := h.svc.List(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list facilities failed")
	}

	views := make([]facilityView, 0, len(items))
	for _, f := range items {
		v := facilityView{
			ID:    f.ID.String(),
			Name:  f.Name,
			Code:  f.Code,
			Level: LevelLabel(f.FacilityLevel),
		}
		if f.Address != nil {
			v.Address = *f.Address
		}
		if f.LinkedFacilityID != nil {
			if linked, err := h.svc.Get(ctx, *f.LinkedFacilityID); err == nil {
				v.Linked = linked.Name
			}
		}
		views = append(views, v)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) Create(c echo.Context) error {
	var f HealthFacility
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &f); err != nil {
		if errors.Is(err, ErrLinkCycle) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, f)
}
