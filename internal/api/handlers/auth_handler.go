package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"livestock-farm-api-server/config"
	"livestock-farm-api-server/internal/auth"
	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/models"
)

type AuthHandler struct {
	DB  *mongo.Database
	Cfg config.Config
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	FarmName string `json:"farmName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user account and returns a token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	users := h.DB.Collection(database.CollUsers)
	count, err := users.CountDocuments(context.Background(), bson.M{"email": req.Email})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Database error checking for user")
		return
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "A user with this email already exists")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hashed,
		FarmName:     req.FarmName,
		Role:         "user",
		Status:       "active",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	result, err := users.InsertOne(context.Background(), user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}
	user.ID = result.InsertedID.(primitive.ObjectID)

	token, err := auth.GenerateJWT([]byte(h.Cfg.JWT.Secret), user.ID.Hex(), user.Email, user.Role, h.Cfg.JWT.Expiration)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"token": token, "user": user}})
}

// Login verifies credentials and returns a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var user models.User
	err := h.DB.Collection(database.CollUsers).
		FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := auth.GenerateJWT([]byte(h.Cfg.JWT.Secret), user.ID.Hex(), user.Email, user.Role, h.Cfg.JWT.Expiration)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondOK(c, gin.H{"token": token, "user": user})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	err := h.DB.Collection(database.CollUsers).
		FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "User not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve user")
		}
		return
	}

	respondOK(c, user)
}

type UpdateProfileRequest struct {
	Name         string `json:"name"`
	FarmName     string `json:"farmName"`
	ProfileImage string `json:"profileImage"`
}

// UpdateMe updates the authenticated user's profile fields.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.FarmName != "" {
		update["farmName"] = req.FarmName
	}
	if req.ProfileImage != "" {
		update["profileImage"] = req.ProfileImage
	}

	_, err := h.DB.Collection(database.CollUsers).
		UpdateOne(context.Background(), bson.M{"_id": userID}, bson.M{"$set": update})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	respondMessage(c, "Profile updated successfully")
}
