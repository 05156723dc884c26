package masterdata

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
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
	e.GET("/province-list/", h.ListProvinces)
	e.GET("/city-list/", h.ListCities)
	e.GET("/district-list/", h.ListDistricts)
	e.GET("/sub-district-list/", h.ListSubDistricts)

	e.POST("/province-list/", h.CreateProvince)
	e.POST("/city-list/", h.CreateCity)
	e.POST("/district-list/", h.CreateDistrict)
	e.POST("/sub-district-list/", h.CreateSubDistrict)
}

// parentID reads an optional parent filter from the named query param.
func parentID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &id, nil
}

func respondErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func (h *Handler) ListProvinces(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, err := h.svc.ListProvinces(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list provinces failed")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateProvince(c echo.Context) error {
	var p Province
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateProvince(c.Request().Context(), &p); err != nil {
		return respondErr(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListCities(c echo.Context) error {
	provinceID, err := parentID(c, "province")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, err := h.svc.ListCities(c.Request().Context(), provinceID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list cities failed")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateCity(c echo.Context) error {
	var city City
	if err := c.Bind(&city); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateCity(c.Request().Context(), &city); err != nil {
		return respondErr(err)
	}
	return c.JSON(http.StatusCreated, city)
}

func (h *Handler) ListDistricts(c echo.Context) error {
	cityID, err := parentID(c, "city")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, err := h.svc.ListDistricts(c.Request().Context(), cityID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list districts failed")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateDistrict(c echo.Context) error {
	var d District
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateDistrict(c.Request().Context(), &d); err != nil {
		return respondErr(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) ListSubDistricts(c echo.Context) error {
	districtID, err := parentID(c, "district")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, err := h.svc.ListSubDistricts(c.Request().Context(), districtID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list sub-districts failed")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateSubDistrict(c echo.Context) error {
	var sd SubDistrict
	if err := c.Bind(&sd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateSubDistrict(c.Request().Context(), &sd); err != nil {
		return respondErr(err)
	}
	return c.JSON(http.StatusCreated, sd)
}
