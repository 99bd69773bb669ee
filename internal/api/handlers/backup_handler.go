package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livestock-farm-api-server/internal/backup"
	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/models"
	"livestock-farm-api-server/internal/storage"
)

type BackupHandler struct {
	DB       *mongo.Database
	Uploader *storage.Uploader
}

func backupObjectKey(userID primitive.ObjectID, fileName string) string {
	return fmt.Sprintf("backups/%s/%s", userID.Hex(), fileName)
}

// CreateBackup snapshots every user-scoped collection into a zip archive and
// uploads it.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if h.Uploader == nil {
		respondError(c, http.StatusInternalServerError, "Backup storage is not configured")
		return
	}

	data := make(map[string][]bson.M, len(database.UserDataCollections))
	counts := make(map[string]int, len(database.UserDataCollections))
	for _, coll := range database.UserDataCollections {
		cursor, err := h.DB.Collection(coll).Find(context.Background(), bson.M{"userId": userID})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to read collection "+coll)
			return
		}
		var docs []bson.M
		err = cursor.All(context.Background(), &docs)
		cursor.Close(context.Background())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to decode collection "+coll)
			return
		}
		data[coll] = docs
		counts[coll] = len(docs)
	}

	createdAt := time.Now()
	archive, err := backup.Build(data, createdAt)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to build backup archive")
		return
	}

	fileName := "backup-" + createdAt.Format("20060102-150405") + ".zip"
	url, err := h.Uploader.Upload(context.Background(), bytes.NewReader(archive),
		backupObjectKey(userID, fileName), "application/zip")
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to upload backup archive")
		return
	}

	record := models.Backup{
		UserID:           userID,
		FileName:         fileName,
		StorageURL:       url,
		SizeBytes:        int64(len(archive)),
		CollectionCounts: counts,
		CreatedAt:        createdAt,
	}
	result, err := h.DB.Collection(database.CollBackups).InsertOne(context.Background(), record)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to record backup")
		return
	}
	record.ID = result.InsertedID.(primitive.ObjectID)

	respondCreated(c, record)
}

// GetBackups lists backups, newest first.
func (h *BackupHandler) GetBackups(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cursor, err := h.DB.Collection(database.CollBackups).
		Find(context.Background(), bson.M{"userId": userID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query backups")
		return
	}
	defer cursor.Close(context.Background())

	var backups []models.Backup
	if err = cursor.All(context.Background(), &backups); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode backups")
		return
	}
	if backups == nil {
		backups = []models.Backup{}
	}

	respondList(c, backups, len(backups))
}

// RestoreBackup replaces the user's data with the archive's contents. The
// swap runs in one transaction; ids are re-issued and references remapped so
// a restore never collides with documents created since the backup.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if h.Uploader == nil {
		respondError(c, http.StatusInternalServerError, "Backup storage is not configured")
		return
	}

	var record models.Backup
	err := h.DB.Collection(database.CollBackups).
		FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Backup not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve backup")
		}
		return
	}

	archive, err := h.Uploader.Download(context.Background(), backupObjectKey(userID, record.FileName))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to download backup archive")
		return
	}

	data, _, err := backup.Parse(archive)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	// First pass: issue a fresh id for every archived document.
	idMap := make(map[string]primitive.ObjectID)
	for _, docs := range data {
		for _, doc := range docs {
			if hex, ok := doc["_id"].(string); ok {
				idMap[hex] = primitive.NewObjectID()
			}
		}
	}

	session, err := h.DB.Client().StartSession()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to start restore session")
		return
	}
	defer session.EndSession(context.Background())

	_, err = session.WithTransaction(context.Background(), func(sc mongo.SessionContext) (interface{}, error) {
		for _, coll := range database.UserDataCollections {
			if _, err := h.DB.Collection(coll).DeleteMany(sc, bson.M{"userId": userID}); err != nil {
				return nil, err
			}
			docs := data[coll]
			if len(docs) == 0 {
				continue
			}
			revived := make([]interface{}, 0, len(docs))
			for _, doc := range docs {
				out, ok := reviveValue(doc, idMap).(map[string]interface{})
				if !ok {
					continue
				}
				out["userId"] = userID
				revived = append(revived, out)
			}
			if _, err := h.DB.Collection(coll).InsertMany(sc, revived); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to restore backup")
		return
	}

	respondMessage(c, "Backup restored successfully")
}

// reviveValue converts JSON-roundtripped values back into their bson forms:
// archived object ids are strings again after the trip, so any remapped id is
// replaced and any other id-shaped string becomes an ObjectID.
func reviveValue(v interface{}, idMap map[string]primitive.ObjectID) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			out[k] = reviveValue(inner, idMap)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = reviveValue(inner, idMap)
		}
		return out
	case string:
		if mapped, ok := idMap[val]; ok {
			return mapped
		}
		if oid, err := primitive.ObjectIDFromHex(val); err == nil {
			return oid
		}
		if t, err := time.Parse(time.RFC3339Nano, val); err == nil {
			return t
		}
		return val
	default:
		return v
	}
}

// DeleteBackup removes the backup record. The archived object is kept in
// storage for manual recovery.
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.DB.Collection(database.CollBackups).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete backup")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Backup not found")
		return
	}

	respondMessage(c, "Backup deleted successfully")
}
