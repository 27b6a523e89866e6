package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vergon/rgr-api/internal/auth"
	"github.com/vergon/rgr-api/internal/middleware"
	"github.com/vergon/rgr-api/internal/model"
	"github.com/vergon/rgr-api/internal/repository"
	"github.com/vergon/rgr-api/internal/utils"
)

// PersonHandler serves person (customer/supplier) endpoints. Every
// operation is scoped to the authenticated user's company; a person id
// from another tenant behaves exactly like a missing one.
type PersonHandler struct {
	repo *repository.PersonRepo
}

func NewPersonHandler(repo *repository.PersonRepo) *PersonHandler {
	return &PersonHandler{repo: repo}
}

type personRequest struct {
	Kind         string `json:"kind"`
	Name         string `json:"name"`
	CPF          string `json:"cpf"`
	CNPJ         string `json:"cnpj"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Mobile       string `json:"mobile"`
	ZipCode      string `json:"zipCode"`
	Street       string `json:"street"`
	StreetNumber string `json:"streetNumber"`
	Complement   string `json:"complement"`
	District     string `json:"district"`
	City         string `json:"city"`
	State        string `json:"state"`
	BirthDate    string `json:"birthDate"`
	ContactName  string `json:"contactName"`
	Notes        string `json:"notes"`
}

type personUpdateRequest struct {
	Kind         *string `json:"kind"`
	Name         *string `json:"name"`
	CPF          *string `json:"cpf"`
	CNPJ         *string `json:"cnpj"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Mobile       *string `json:"mobile"`
	ZipCode      *string `json:"zipCode"`
	Street       *string `json:"street"`
	StreetNumber *string `json:"streetNumber"`
	Complement   *string `json:"complement"`
	District     *string `json:"district"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	ContactName  *string `json:"contactName"`
	Notes        *string `json:"notes"`
	Status       *int    `json:"status"`
}

type personPayload struct {
	ID           int64      `json:"id"`
	Kind         string     `json:"kind"`
	Name         string     `json:"name"`
	CPF          string     `json:"cpf,omitempty"`
	CNPJ         string     `json:"cnpj,omitempty"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Mobile       string     `json:"mobile,omitempty"`
	ZipCode      string     `json:"zipCode,omitempty"`
	Street       string     `json:"street,omitempty"`
	StreetNumber string     `json:"streetNumber,omitempty"`
	Complement   string     `json:"complement,omitempty"`
	District     string     `json:"district,omitempty"`
	City         string     `json:"city,omitempty"`
	State        string     `json:"state,omitempty"`
	BirthDate    *time.Time `json:"birthDate,omitempty"`
	ContactName  string     `json:"contactName,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Status       int        `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func toPersonPayload(p model.Person) personPayload {
	return personPayload{
		ID:           p.ID,
		Kind:         p.Kind,
		Name:         p.Name,
		CPF:          p.CPF,
		CNPJ:         p.CNPJ,
		Email:        p.Email,
		Phone:        p.Phone,
		Mobile:       p.Mobile,
		ZipCode:      p.ZipCode,
		Street:       p.Street,
		StreetNumber: p.StreetNumber,
		Complement:   p.Complement,
		District:     p.District,
		City:         p.City,
		State:        p.State,
		BirthDate:    p.BirthDate,
		ContactName:  p.ContactName,
		Notes:        p.Notes,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// validatePersonDocs enforces the kind discipline: individuals carry a
// valid CPF and no CNPJ, legal entities the other way around.
func validatePersonDocs(kind, cpf, cnpj string) []string {
	var errs []string
	switch kind {
	case model.PersonIndividual:
		if !utils.ValidateCPF(cpf) {
			errs = append(errs, "cpf is invalid")
		}
		if cnpj != "" {
			errs = append(errs, "an individual cannot have a cnpj")
		}
	case model.PersonLegalEntity:
		if !utils.ValidateCNPJ(cnpj) {
			errs = append(errs, "cnpj is invalid")
		}
		if cpf != "" {
			errs = append(errs, "a legal entity cannot have a cpf")
		}
	default:
		errs = append(errs, "kind must be 1 (individual) or 2 (legal entity)")
	}
	return errs
}

func tenantOf(c echo.Context) (auth.Identity, bool) {
	return middleware.CurrentIdentity(c)
}

// List returns one page of the company's persons with optional filters.
func (h *PersonHandler) List(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}

	page, limit := pageParams(c)
	status, _ := strconv.Atoi(c.QueryParam("status"))
	filter := repository.PersonFilter{
		Search:    strings.TrimSpace(c.QueryParam("search")),
		Kind:      c.QueryParam("kind"),
		Status:    status,
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}

	persons, total, err := h.repo.List(c.Request().Context(), id.TenantID, page, limit, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to list persons"))
	}

	items := make([]personPayload, 0, len(persons))
	for _, p := range persons {
		items = append(items, toPersonPayload(p))
	}
	return c.JSON(http.StatusOK, utils.Paginated("Persons retrieved", items, utils.NewPagination(page, limit, total)))
}

// Search finds persons by name fragment, capped at 20 results.
func (h *PersonHandler) Search(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return c.JSON(http.StatusBadRequest, utils.Error("Query parameter name is required"))
	}

	persons, err := h.repo.SearchByName(c.Request().Context(), name, id.TenantID, 20)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to search persons"))
	}
	items := make([]personPayload, 0, len(persons))
	for _, p := range persons {
		items = append(items, toPersonPayload(p))
	}
	return c.JSON(http.StatusOK, utils.OK("Persons retrieved", items))
}

// Get fetches one person within the caller's company.
func (h *PersonHandler) Get(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}
	personID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid person id"))
	}

	person, err := h.repo.FindByID(c.Request().Context(), personID, id.TenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, utils.Error("Person not found"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to fetch person"))
	}
	return c.JSON(http.StatusOK, utils.OK("Person retrieved", toPersonPayload(person)))
}

// Create registers a person under the caller's company. Duplicate
// documents within the company are rejected.
func (h *PersonHandler) Create(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}

	var req personRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid request body"))
	}

	errs := validatePersonDocs(req.Kind, req.CPF, req.CNPJ)
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	}
	var birthDate *time.Time
	if req.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			errs = append(errs, "birthDate must be in YYYY-MM-DD format")
		} else {
			birthDate = &bd
		}
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, utils.Error("Validation failed", errs...))
	}

	ctx := c.Request().Context()
	if req.CPF != "" {
		if _, err := h.repo.FindByCPF(ctx, req.CPF, id.TenantID); err == nil {
			return c.JSON(http.StatusConflict, utils.Error("A person with this CPF already exists"))
		}
	}
	if req.CNPJ != "" {
		if _, err := h.repo.FindByCNPJ(ctx, req.CNPJ, id.TenantID); err == nil {
			return c.JSON(http.StatusConflict, utils.Error("A person with this CNPJ already exists"))
		}
	}

	personID, err := h.repo.Create(ctx, model.Person{
		CompanyID:    id.TenantID,
		Kind:         req.Kind,
		Name:         strings.TrimSpace(req.Name),
		CPF:          req.CPF,
		CNPJ:         req.CNPJ,
		Email:        strings.TrimSpace(req.Email),
		Phone:        req.Phone,
		Mobile:       req.Mobile,
		ZipCode:      req.ZipCode,
		Street:       req.Street,
		StreetNumber: req.StreetNumber,
		Complement:   req.Complement,
		District:     req.District,
		City:         req.City,
		State:        req.State,
		BirthDate:    birthDate,
		ContactName:  req.ContactName,
		Notes:        req.Notes,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to create person"))
	}

	person, err := h.repo.FindByID(ctx, personID, id.TenantID)
	if err != nil {
		return c.JSON(http.StatusCreated, utils.OK("Person created", map[string]any{"id": personID}))
	}
	return c.JSON(http.StatusCreated, utils.OK("Person created", toPersonPayload(person)))
}

// Update applies a partial update to a person. Document changes go
// through the same kind discipline as creation, evaluated against the
// record's resulting state.
func (h *PersonHandler) Update(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}
	personID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid person id"))
	}

	var req personUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid request body"))
	}

	ctx := c.Request().Context()
	current, err := h.repo.FindByID(ctx, personID, id.TenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, utils.Error("Person not found"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to fetch person"))
	}

	kind, cpf, cnpj := current.Kind, current.CPF, current.CNPJ
	if req.Kind != nil {
		kind = *req.Kind
	}
	if req.CPF != nil {
		cpf = *req.CPF
	}
	if req.CNPJ != nil {
		cnpj = *req.CNPJ
	}
	if errs := validatePersonDocs(kind, cpf, cnpj); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, utils.Error("Validation failed", errs...))
	}
	if req.Status != nil && *req.Status != model.PersonActive && *req.Status != model.PersonInactive {
		return c.JSON(http.StatusBadRequest, utils.Error("Validation failed", "status must be 1 (active) or 2 (inactive)"))
	}

	if req.CPF != nil && *req.CPF != "" && *req.CPF != current.CPF {
		if other, err := h.repo.FindByCPF(ctx, *req.CPF, id.TenantID); err == nil && other.ID != personID {
			return c.JSON(http.StatusConflict, utils.Error("A person with this CPF already exists"))
		}
	}
	if req.CNPJ != nil && *req.CNPJ != "" && *req.CNPJ != current.CNPJ {
		if other, err := h.repo.FindByCNPJ(ctx, *req.CNPJ, id.TenantID); err == nil && other.ID != personID {
			return c.JSON(http.StatusConflict, utils.Error("A person with this CNPJ already exists"))
		}
	}

	err = h.repo.Update(ctx, personID, id.TenantID, repository.PersonUpdate{
		Kind:         req.Kind,
		Name:         req.Name,
		CPF:          req.CPF,
		CNPJ:         req.CNPJ,
		Email:        req.Email,
		Phone:        req.Phone,
		Mobile:       req.Mobile,
		ZipCode:      req.ZipCode,
		Street:       req.Street,
		StreetNumber: req.StreetNumber,
		Complement:   req.Complement,
		District:     req.District,
		City:         req.City,
		State:        req.State,
		ContactName:  req.ContactName,
		Notes:        req.Notes,
		Status:       req.Status,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, utils.Error("Person not found"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to update person"))
	}

	person, err := h.repo.FindByID(ctx, personID, id.TenantID)
	if err != nil {
		return c.JSON(http.StatusOK, utils.OK("Person updated", nil))
	}
	return c.JSON(http.StatusOK, utils.OK("Person updated", toPersonPayload(person)))
}

// Delete removes a person from the caller's company.
func (h *PersonHandler) Delete(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}
	personID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid person id"))
	}

	if err := h.repo.Delete(c.Request().Context(), personID, id.TenantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, utils.Error("Person not found"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to delete person"))
	}
	return c.JSON(http.StatusOK, utils.OK("Person deleted", nil))
}

// Activate marks a person as active again.
func (h *PersonHandler) Activate(c echo.Context) error {
	return h.setStatus(c, true)
}

// Deactivate marks a person inactive without deleting the record.
func (h *PersonHandler) Deactivate(c echo.Context) error {
	return h.setStatus(c, false)
}

func (h *PersonHandler) setStatus(c echo.Context, active bool) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}
	personID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid person id"))
	}

	var err error
	if active {
		err = h.repo.Activate(c.Request().Context(), personID, id.TenantID)
	} else {
		err = h.repo.Deactivate(c.Request().Context(), personID, id.TenantID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, utils.Error("Person not found"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to update person"))
	}
	if active {
		return c.JSON(http.StatusOK, utils.OK("Person activated", nil))
	}
	return c.JSON(http.StatusOK, utils.OK("Person deactivated", nil))
}
