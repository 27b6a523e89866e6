package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vergon/rgr-api/internal/auth"
	"github.com/vergon/rgr-api/internal/model"
	"github.com/vergon/rgr-api/internal/repository"
	"github.com/vergon/rgr-api/internal/utils"
)

// UserHandler serves account management endpoints within the caller's
// company.
type UserHandler struct {
	users      *repository.UserRepo
	roles      *repository.RoleRepo
	bcryptCost int
}

func NewUserHandler(users *repository.UserRepo, roles *repository.RoleRepo, bcryptCost int) *UserHandler {
	return &UserHandler{users: users, roles: roles, bcryptCost: bcryptCost}
}

type createUserRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	RoleID   int64  `json:"roleId"`
}

type updateUserRequest struct {
	Password *string `json:"password"`
	RoleID   *int64  `json:"roleId"`
}

type accountPayload struct {
	Login     string    `json:"login"`
	CompanyID int64     `json:"companyId"`
	RoleID    int64     `json:"roleId,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toAccountPayload(u model.User, roleName string) accountPayload {
	return accountPayload{
		Login:     u.Login,
		CompanyID: u.CompanyID,
		RoleID:    u.RoleID,
		Role:      roleName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Me returns the authenticated user's own account, including the role
// name when one is assigned.
func (h *UserHandler) Me(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}

	ctx := c.Request().Context()
	user, err := h.users.Get(ctx, id.Login, id.TenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, utils.Error("User not found"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to fetch user"))
	}

	roleName := ""
	if role, err := h.roles.RoleForUser(ctx, id.Login, id.TenantID); err == nil {
		roleName = role.Name
	} else if !errors.Is(err, auth.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to fetch user"))
	}
	return c.JSON(http.StatusOK, utils.OK("User retrieved", toAccountPayload(user, roleName)))
}

// List returns one page of the company's users.
func (h *UserHandler) List(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}

	page, limit := pageParams(c)
	users, total, err := h.users.ListByCompany(c.Request().Context(), id.TenantID, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to list users"))
	}

	items := make([]accountPayload, 0, len(users))
	for _, u := range users {
		items = append(items, toAccountPayload(u, ""))
	}
	return c.JSON(http.StatusOK, utils.Paginated("Users retrieved", items, utils.NewPagination(page, limit, total)))
}

// Get fetches one user by login within the caller's company.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}
	login := strings.TrimSpace(c.Param("login"))
	if login == "" {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid login"))
	}

	user, err := h.users.Get(c.Request().Context(), login, id.TenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, utils.Error("User not found"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to fetch user"))
	}
	return c.JSON(http.StatusOK, utils.OK("User retrieved", toAccountPayload(user, "")))
}

// Create registers a user under the caller's company. The password is
// bcrypt-hashed before storage; the plaintext never leaves this request.
func (h *UserHandler) Create(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid request body"))
	}

	var errs []string
	login := strings.TrimSpace(req.Login)
	if n := len(login); n < 3 || n > 50 {
		errs = append(errs, "login must be between 3 and 50 characters")
	}
	if len(req.Password) < 6 {
		errs = append(errs, "password must be at least 6 characters")
	}
	if req.RoleID <= 0 {
		errs = append(errs, "roleId is required")
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, utils.Error("Validation failed", errs...))
	}

	err := h.users.Create(c.Request().Context(), login, req.Password, id.TenantID, req.RoleID, h.bcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, utils.Error("A user with this login already exists"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to create user"))
	}

	user, err := h.users.Get(c.Request().Context(), login, id.TenantID)
	if err != nil {
		return c.JSON(http.StatusCreated, utils.OK("User created", map[string]any{"login": login}))
	}
	return c.JSON(http.StatusCreated, utils.OK("User created", toAccountPayload(user, "")))
}

// Update changes a user's password or role.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}
	login := strings.TrimSpace(c.Param("login"))
	if login == "" {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid login"))
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid request body"))
	}
	if req.Password != nil && len(*req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, utils.Error("Validation failed", "password must be at least 6 characters"))
	}

	err := h.users.Update(c.Request().Context(), login, id.TenantID, repository.UserUpdate{
		Password: req.Password,
		RoleID:   req.RoleID,
	}, h.bcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, utils.Error("User not found"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to update user"))
	}
	return c.JSON(http.StatusOK, utils.OK("User updated", nil))
}

// Delete removes a user. A user cannot delete their own account.
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}
	login := strings.TrimSpace(c.Param("login"))
	if login == "" {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid login"))
	}
	if login == id.Login {
		return c.JSON(http.StatusBadRequest, utils.Error("You cannot delete your own account"))
	}

	if err := h.users.Delete(c.Request().Context(), login, id.TenantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, utils.Error("User not found"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to delete user"))
	}
	return c.JSON(http.StatusOK, utils.OK("User deleted", nil))
}
