package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/angkor-pos/internal/config"
	"github.com/example/angkor-pos/internal/models"
	"github.com/example/angkor-pos/internal/utils"
)

// AuthHandler bundles dependencies for staff account endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type registerRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a new staff account. The very first account becomes an
// administrator regardless of the requested role.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.Password == "" || req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	var existing models.User
	if err := h.db.Where("phone = ?", req.Phone).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "staff account already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	role := req.Role
	if role != models.RoleAdmin {
		role = models.RoleStaff
	}

	var total int64
	if err := h.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return err
	}
	if total == 0 {
		role = models.RoleAdmin
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         role,
		PasswordHash: passwordHash,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	utils.Logger.Infof("staff account %q registered (role=%s)", user.Name, user.Role)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    user,
		"token":   token,
	})
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login authenticates an existing staff account.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Where("phone = ?", req.Phone).First(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user,
		"token":   token,
	})
}

// ListStaff returns every staff account.
func (h *AuthHandler) ListStaff(c *fiber.Ctx) error {
	var users []models.User
	if err := h.db.Order("created_at asc").Find(&users).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "count": len(users), "data": users})
}

// DeleteStaff removes a staff account. The last administrator cannot be
// deleted.
func (h *AuthHandler) DeleteStaff(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "staff account not found")
		}
		return err
	}

	if user.Role == models.RoleAdmin {
		var admins int64
		if err := h.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
			return err
		}
		if admins <= 1 {
			return fiber.NewError(fiber.StatusConflict, "cannot delete the last administrator")
		}
	}

	if err := h.db.Delete(&user).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "staff account deleted", "data": fiber.Map{"id": id}})
}
