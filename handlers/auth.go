package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"betweenchat/database"
	"betweenchat/middleware"
	"betweenchat/models"
	"betweenchat/utils"
)

type AuthHandler struct {
	Profiles  ProfileStore
	JWTSecret string
	NowFunc   func() time.Time
}

func NewAuthHandler(profiles ProfileStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{Profiles: profiles, JWTSecret: jwtSecret}
}

func (h *AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now()
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Nickname string `json:"nickname"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if _, err := h.Profiles.GetByUsername(c.Request.Context(), req.Username); err == nil {
		utils.BadRequest(c, "username already exists")
		return
	} else if err != database.ErrNotFound {
		utils.InternalError(c, "database error")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.InternalError(c, "failed to hash password")
		return
	}

	nickname := req.Nickname
	if nickname == "" {
		nickname = req.Username
	}
	now := h.now()

	profile := &models.Profile{
		UID:       utils.GenerateUUID(),
		Username:  req.Username,
		Nickname:  nickname,
		Password:  string(hashedPassword),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Profiles.Create(c.Request.Context(), profile); err != nil {
		utils.InternalError(c, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(profile.UID, h.JWTSecret)
	if err != nil {
		utils.InternalError(c, "failed to generate token")
		return
	}

	utils.Success(c, AuthResponse{Token: token, User: profile.ToSummary()})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	profile, err := h.Profiles.GetByUsername(c.Request.Context(), req.Username)
	if err == database.ErrNotFound {
		utils.Unauthorized(c, utils.CodeUnauthenticated, "invalid username or password")
		return
	}
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		utils.Unauthorized(c, utils.CodeUnauthenticated, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(profile.UID, h.JWTSecret)
	if err != nil {
		utils.InternalError(c, "failed to generate token")
		return
	}

	utils.Success(c, AuthResponse{Token: token, User: profile.ToSummary()})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	userID := middleware.GetUserID(c)

	token, err := utils.GenerateToken(userID, h.JWTSecret)
	if err != nil {
		utils.InternalError(c, "failed to generate token")
		return
	}

	utils.Success(c, gin.H{"token": token})
}
