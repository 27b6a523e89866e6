package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vergon/rgr-api/internal/model"
	"github.com/vergon/rgr-api/internal/repository"
	"github.com/vergon/rgr-api/internal/utils"
)

// CompanyHandler serves tenant management endpoints.
type CompanyHandler struct {
	repo *repository.CompanyRepo
}

func NewCompanyHandler(repo *repository.CompanyRepo) *CompanyHandler {
	return &CompanyHandler{repo: repo}
}

type companyRequest struct {
	Name      string `json:"name"`
	TradeName string `json:"tradeName"`
	CNPJ      string `json:"cnpj"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type companyUpdateRequest struct {
	Name      *string `json:"name"`
	TradeName *string `json:"tradeName"`
	CNPJ      *string `json:"cnpj"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	IsActive  *bool   `json:"isActive"`
}

type companyPayload struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TradeName string    `json:"tradeName,omitempty"`
	CNPJ      string    `json:"cnpj"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toCompanyPayload(c model.Company) companyPayload {
	return companyPayload{
		ID:        c.ID,
		Name:      c.Name,
		TradeName: c.TradeName,
		CNPJ:      c.CNPJ,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// List returns one page of companies, optionally filtered by search text
// and active flag.
func (h *CompanyHandler) List(c echo.Context) error {
	page, limit := pageParams(c)
	filter := repository.CompanyFilter{
		ActiveOnly: c.QueryParam("active") == "true",
		Search:     strings.TrimSpace(c.QueryParam("search")),
		SortBy:     c.QueryParam("sortBy"),
		SortOrder:  c.QueryParam("sortOrder"),
	}

	companies, total, err := h.repo.List(c.Request().Context(), page, limit, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to list companies"))
	}

	items := make([]companyPayload, 0, len(companies))
	for _, co := range companies {
		items = append(items, toCompanyPayload(co))
	}
	return c.JSON(http.StatusOK, utils.Paginated("Companies retrieved", items, utils.NewPagination(page, limit, total)))
}

// Get fetches a single company by id.
func (h *CompanyHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid company id"))
	}

	company, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, utils.Error("Company not found"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to fetch company"))
	}
	return c.JSON(http.StatusOK, utils.OK("Company retrieved", toCompanyPayload(company)))
}

// Create registers a new company. The CNPJ must pass check-digit
// validation and be unique.
func (h *CompanyHandler) Create(c echo.Context) error {
	var req companyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid request body"))
	}

	var errs []string
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	}
	if !utils.ValidateCNPJ(req.CNPJ) {
		errs = append(errs, "cnpj is invalid")
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, utils.Error("Validation failed", errs...))
	}

	id, err := h.repo.Create(c.Request().Context(), model.Company{
		Name:      strings.TrimSpace(req.Name),
		TradeName: strings.TrimSpace(req.TradeName),
		CNPJ:      req.CNPJ,
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		IsActive:  true,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, utils.Error("A company with this CNPJ already exists"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to create company"))
	}

	company, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusCreated, utils.OK("Company created", map[string]any{"id": id}))
	}
	return c.JSON(http.StatusCreated, utils.OK("Company created", toCompanyPayload(company)))
}

// Update applies a partial update. A CNPJ in the body is re-validated.
func (h *CompanyHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid company id"))
	}

	var req companyUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid request body"))
	}
	if req.CNPJ != nil && !utils.ValidateCNPJ(*req.CNPJ) {
		return c.JSON(http.StatusBadRequest, utils.Error("Validation failed", "cnpj is invalid"))
	}

	err := h.repo.Update(c.Request().Context(), id, repository.CompanyUpdate{
		Name:      req.Name,
		TradeName: req.TradeName,
		CNPJ:      req.CNPJ,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		IsActive:  req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, utils.Error("Company not found"))
		case errors.Is(err, repository.ErrDuplicate):
			return c.JSON(http.StatusConflict, utils.Error("A company with this CNPJ already exists"))
		default:
			return c.JSON(http.StatusInternalServerError, utils.Error("Failed to update company"))
		}
	}

	company, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusOK, utils.OK("Company updated", nil))
	}
	return c.JSON(http.StatusOK, utils.OK("Company updated", toCompanyPayload(company)))
}

// Delete removes a company and, through foreign keys, everything scoped
// to it.
func (h *CompanyHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid company id"))
	}

	if err := h.repo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, utils.Error("Company not found"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to delete company"))
	}
	return c.JSON(http.StatusOK, utils.OK("Company deleted", nil))
}

// Activate re-enables a deactivated company.
func (h *CompanyHandler) Activate(c echo.Context) error {
	return h.setActive(c, true)
}

// Deactivate suspends a company without deleting its data.
func (h *CompanyHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *CompanyHandler) setActive(c echo.Context, active bool) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid company id"))
	}

	var err error
	if active {
		err = h.repo.Activate(c.Request().Context(), id)
	} else {
		err = h.repo.Deactivate(c.Request().Context(), id)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, utils.Error("Company not found"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to update company"))
	}
	if active {
		return c.JSON(http.StatusOK, utils.OK("Company activated", nil))
	}
	return c.JSON(http.StatusOK, utils.OK("Company deactivated", nil))
}
