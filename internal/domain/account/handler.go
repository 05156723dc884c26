package account

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rullypratama/sms-backend/internal/domain/facility"
	"github.com/rullypratama/sms-backend/internal/platform/auth"
)

type Handler struct {
	svc        *Service
	facilities *facility.Service
	issuer     *auth.Issuer
}

func NewHandler(svc *Service, facilities *facility.Service, issuer *auth.Issuer) *Handler {
	return &Handler{svc: svc, facilities: facilities, issuer: issuer}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/", h.Login)
	e.GET("/user-detail/", h.UserDetail)
	e.POST("/user-register/", h.Register)
}

type loginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	token, err := h.issuer.Sign(u.ID, u.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	if name := h.issuer.CookieName(); name != "" {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    token,
			Expires:  time.Now().Add(h.issuer.TTL()),
			HttpOnly: true,
			Path:     "/",
		})
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token})
}

type userDetailView struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	PhoneNumber        string `json:"phone_number"`
	Email              string `json:"email"`
	HealthFacilityName string `json:"health_facility_name"`
	Address            string `json:"address"`
}

func (h *Handler) UserDetail(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization")
	}

	u, err := h.svc.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "unknown account")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "fetch user failed")
	}

	view := userDetailView{
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
	}
	if u.FirstName != nil {
		view.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		view.LastName = *u.LastName
	}
	if u.HealthFacilityID != nil {
		if f, err := h.facilities.Get(ctx, *u.HealthFacilityID); err == nil {
			view.HealthFacilityName = f.Name
			if f.Address != nil {
				view.Address = *f.Address
			}
		}
	}

	return c.JSON(http.StatusOK, view)
}

type registerRequest struct {
	Email            string         `json:"email"`
	Password         string         `json:"password"`
	PhoneNumber      string         `json:"phone_number"`
	FirstName        *string        `json:"first_name"`
	LastName         *string        `json:"last_name"`
	Properties       map[string]any `json:"properties"`
	HealthFacilityID *string        `json:"health_facility_id"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	in := UpsertInput{
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Properties:  req.Properties,
	}
	if req.HealthFacilityID != nil {
		id, err := uuid.Parse(*req.HealthFacilityID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid health_facility_id")
		}
		if _, err := h.facilities.Get(c.Request().Context(), id); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown health_facility_id")
		}
		in.HealthFacilityID = &id
	}

	u, err := h.svc.Upsert(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}
