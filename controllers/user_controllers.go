package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservations/models"
	"github.com/yeremiapane/restaurant-reservations/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// Register staff baru. Tanpa login akun selalu host; role lain hanya bisa
// dibuat oleh admin lewat /staff/users.
func (uc *UserController) Register(c *gin.Context) {
	type request struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Role     string `json:"role" binding:"omitempty,oneof=host manager admin"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(utils.NewAPIError(http.StatusBadRequest, "%s", err.Error()))
		return
	}
	if req.Role == "" {
		req.Role = models.RoleHost
	}
	if req.Role != models.RoleHost && c.GetString("role") != models.RoleAdmin {
		_ = c.Error(utils.NewAPIError(http.StatusForbidden, "only an admin can create %s accounts", req.Role))
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing int64
	if err := uc.DB.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		_ = c.Error(err)
		return
	}
	if existing > 0 {
		_ = c.Error(utils.NewAPIError(http.StatusConflict, "email %s is already registered", email))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    email,
		Password: string(hashed),
		Role:     req.Role,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		_ = c.Error(err)
		return
	}

	utils.InfoLogger.Printf("New staff registered: %s (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusCreated, gin.H{"user_id": user.ID})
}

// Login staff -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(utils.NewAPIError(http.StatusBadRequest, "%s", err.Error()))
		return
	}

	var user models.User
	err := uc.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = c.Error(utils.NewAPIError(http.StatusUnauthorized, "invalid credentials"))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		_ = c.Error(utils.NewAPIError(http.StatusUnauthorized, "invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.InfoLogger.Printf("Login successful for %s (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusOK, gin.H{
		"token":     token,
		"user_role": user.Role,
	})
}

// GetProfile -> memeriksa user dari JWT
func (uc *UserController) GetProfile(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		_ = c.Error(utils.NewAPIError(http.StatusUnauthorized, "user id not found in context"))
		return
	}
	userID, ok := userIDInterface.(uint)
	if !ok {
		_ = c.Error(errors.New("invalid user id type"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = c.Error(utils.NewAPIError(http.StatusNotFound, "user %d does not exist", userID))
			return
		}
		_ = c.Error(err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, user)
}
