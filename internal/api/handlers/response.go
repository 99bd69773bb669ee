package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// All endpoints answer with the same envelope:
// {success, data?, count?, message?}.

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func respondList(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": count})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// currentUserID reads the authenticated user's id from the request context.
// A second return of false means the response has already been written.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	hex := c.GetString("user_id")
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid user identity")
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// findOwnedByID decodes the :id document scoped to the caller into out,
// writing the error response itself on failure.
func findOwnedByID(c *gin.Context, db *mongo.Database, coll string, out interface{}, label string) bool {
	userID, ok := currentUserID(c)
	if !ok {
		return false
	}
	id, ok := pathID(c)
	if !ok {
		return false
	}

	err := db.Collection(coll).
		FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(out)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, label+" not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve "+strings.ToLower(label))
		}
		return false
	}
	return true
}
