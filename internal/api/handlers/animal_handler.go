package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/models"
	"livestock-farm-api-server/internal/pedigree"
	"livestock-farm-api-server/internal/restriction"
)

type AnimalHandler struct {
	DB *mongo.Database
}

type CreateAnimalRequest struct {
	IdentificationNumber string     `json:"identificationNumber" binding:"required"`
	Name                 string     `json:"name"`
	CategoryID           string     `json:"categoryId"`
	BreedID              string     `json:"breedId"`
	Gender               string     `json:"gender" binding:"required,oneof=male female"`
	BirthDate            *time.Time `json:"birthDate"`
	AcquisitionDate      *time.Time `json:"acquisitionDate"`
	AcquisitionMethod    string     `json:"acquisitionMethod"`
	MotherID             string     `json:"motherId"`
	FatherID             string     `json:"fatherId"`
	Weight               float64    `json:"weight"`
	Notes                string     `json:"notes"`
}

func parseOptionalID(hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// pedigreeFetcher loads the minimal animal projection used by the pedigree
// builder, scoped to the owner.
func (h *AnimalHandler) pedigreeFetcher(userID primitive.ObjectID) pedigree.Fetcher {
	return func(ctx context.Context, id primitive.ObjectID) (*pedigree.Record, error) {
		projection := bson.M{
			"identificationNumber": 1, "gender": 1, "birthDate": 1,
			"categoryId": 1, "breedId": 1, "motherId": 1, "fatherId": 1,
		}
		var animal models.Animal
		err := h.DB.Collection(database.CollAnimals).
			FindOne(ctx, bson.M{"_id": id, "userId": userID}, options.FindOne().SetProjection(projection)).
			Decode(&animal)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, nil
			}
			return nil, err
		}
		return &pedigree.Record{
			Node: pedigree.Node{
				ID:                   animal.ID,
				IdentificationNumber: animal.IdentificationNumber,
				Gender:               animal.Gender,
				BirthDate:            animal.BirthDate,
				CategoryID:           animal.CategoryID,
				BreedID:              animal.BreedID,
			},
			MotherID: animal.MotherID,
			FatherID: animal.FatherID,
		}, nil
	}
}

// guardParents rejects parent references that are missing, not owned, or
// would close an ancestry cycle.
func (h *AnimalHandler) guardParents(c *gin.Context, userID primitive.ObjectID, animalID primitive.ObjectID, motherID, fatherID *primitive.ObjectID) bool {
	fetch := h.pedigreeFetcher(userID)
	for _, parent := range []*primitive.ObjectID{motherID, fatherID} {
		if parent == nil {
			continue
		}
		rec, err := fetch(context.Background(), *parent)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to verify parent")
			return false
		}
		if rec == nil {
			respondError(c, http.StatusNotFound, "Parent animal not found")
			return false
		}
		if !animalID.IsZero() {
			cycle, err := pedigree.WouldCycle(context.Background(), fetch, animalID, *parent, pedigree.MaxDepth)
			if err != nil {
				respondError(c, http.StatusInternalServerError, "Failed to verify ancestry")
				return false
			}
			if cycle {
				respondError(c, http.StatusBadRequest, "Parent assignment would create an ancestry cycle")
				return false
			}
		}
	}
	return true
}

// CreateAnimal registers a new animal.
func (h *AnimalHandler) CreateAnimal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	collection := h.DB.Collection(database.CollAnimals)
	count, err := collection.CountDocuments(context.Background(),
		bson.M{"userId": userID, "identificationNumber": req.IdentificationNumber})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Database error checking for animal")
		return
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "An animal with this identification number already exists")
		return
	}

	categoryID, err := parseOptionalID(req.CategoryID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid categoryId")
		return
	}
	breedID, err := parseOptionalID(req.BreedID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid breedId")
		return
	}
	motherID, err := parseOptionalID(req.MotherID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid motherId")
		return
	}
	fatherID, err := parseOptionalID(req.FatherID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid fatherId")
		return
	}
	if !h.guardParents(c, userID, primitive.NilObjectID, motherID, fatherID) {
		return
	}

	method := req.AcquisitionMethod
	if method == "" {
		method = models.AcquisitionOther
	}

	animal := models.Animal{
		UserID:               userID,
		IdentificationNumber: req.IdentificationNumber,
		Name:                 req.Name,
		CategoryID:           categoryID,
		BreedID:              breedID,
		Gender:               req.Gender,
		BirthDate:            req.BirthDate,
		AcquisitionDate:      req.AcquisitionDate,
		AcquisitionMethod:    method,
		MotherID:             motherID,
		FatherID:             fatherID,
		Status:               models.AnimalStatusAlive,
		Notes:                req.Notes,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
	if req.Weight > 0 {
		animal.WeightHistory = []models.WeightEntry{{Weight: req.Weight, Date: time.Now()}}
	}

	result, err := collection.InsertOne(context.Background(), animal)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create animal")
		return
	}
	animal.ID = result.InsertedID.(primitive.ObjectID)

	respondCreated(c, animal)
}

// GetAnimals lists the caller's animals, filterable by status, category and
// restriction state.
func (h *AnimalHandler) GetAnimals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"userId": userID}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if category := c.Query("categoryId"); category != "" {
		id, err := primitive.ObjectIDFromHex(category)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid categoryId")
			return
		}
		filter["categoryId"] = id
	}
	if restricted := c.Query("restricted"); restricted != "" {
		filter["restriction.isRestricted"] = restricted == "true"
	}

	cursor, err := h.DB.Collection(database.CollAnimals).Find(context.Background(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query animals")
		return
	}
	defer cursor.Close(context.Background())

	var animals []models.Animal
	if err = cursor.All(context.Background(), &animals); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode animals")
		return
	}
	if animals == nil {
		animals = []models.Animal{}
	}

	respondList(c, animals, len(animals))
}

// GetAnimalByID fetches one animal, lazily clearing an expired restriction on
// the way out. The daily sweep remains the authority; this keeps reads fresh.
func (h *AnimalHandler) GetAnimalByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	collection := h.DB.Collection(database.CollAnimals)
	var animal models.Animal
	err := collection.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&animal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Animal not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve animal")
		}
		return
	}

	if restriction.CheckStatus(&animal, time.Now()) {
		_, err = collection.UpdateOne(context.Background(), bson.M{"_id": animal.ID},
			bson.M{"$set": bson.M{"restriction": animal.Restriction, "updatedAt": time.Now()}})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update restriction state")
			return
		}
	}

	respondOK(c, animal)
}

type UpdateAnimalRequest struct {
	Name       string     `json:"name"`
	CategoryID string     `json:"categoryId"`
	BreedID    string     `json:"breedId"`
	BirthDate  *time.Time `json:"birthDate"`
	MotherID   string     `json:"motherId"`
	FatherID   string     `json:"fatherId"`
	Status     string     `json:"status"`
	Notes      string     `json:"notes"`
}

// UpdateAnimal updates mutable fields. Restriction state is not touched here;
// it moves only through its own endpoint and the health/vaccination triggers.
func (h *AnimalHandler) UpdateAnimal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Status != "" {
		switch req.Status {
		case models.AnimalStatusAlive, models.AnimalStatusSold, models.AnimalStatusDead, models.AnimalStatusSlaughtered:
			update["status"] = req.Status
		default:
			respondError(c, http.StatusBadRequest, "Invalid status")
			return
		}
	}
	if req.BirthDate != nil {
		update["birthDate"] = *req.BirthDate
	}
	if req.Notes != "" {
		update["notes"] = req.Notes
	}
	if req.CategoryID != "" {
		categoryID, err := primitive.ObjectIDFromHex(req.CategoryID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid categoryId")
			return
		}
		update["categoryId"] = categoryID
	}
	if req.BreedID != "" {
		breedID, err := primitive.ObjectIDFromHex(req.BreedID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid breedId")
			return
		}
		update["breedId"] = breedID
	}

	motherID, err := parseOptionalID(req.MotherID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid motherId")
		return
	}
	fatherID, err := parseOptionalID(req.FatherID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid fatherId")
		return
	}
	if motherID != nil || fatherID != nil {
		if !h.guardParents(c, userID, id, motherID, fatherID) {
			return
		}
		if motherID != nil {
			update["motherId"] = *motherID
		}
		if fatherID != nil {
			update["fatherId"] = *fatherID
		}
	}

	result, err := h.DB.Collection(database.CollAnimals).
		UpdateOne(context.Background(), bson.M{"_id": id, "userId": userID}, bson.M{"$set": update})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update animal")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Animal not found")
		return
	}

	respondMessage(c, "Animal updated successfully")
}

// DeleteAnimal removes an animal that has no related records. Animals with
// history are soft-retired through a status change instead.
func (h *AnimalHandler) DeleteAnimal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	linked := map[string]bson.M{
		database.CollHealthEvents:   {"userId": userID, "animalId": id},
		database.CollVaccinations:   {"userId": userID, "animalId": id},
		database.CollBreedingEvents: {"userId": userID, "femaleId": id},
		database.CollTransactions:   {"userId": userID, "animalId": id},
		database.CollBirths:         {"userId": userID, "motherId": id},
	}
	for coll, filter := range linked {
		count, err := h.DB.Collection(coll).CountDocuments(context.Background(), filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to check related records")
			return
		}
		if count > 0 {
			respondError(c, http.StatusBadRequest, "Animal has related records; change its status instead of deleting")
			return
		}
	}

	result, err := h.DB.Collection(database.CollAnimals).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete animal")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Animal not found")
		return
	}

	respondMessage(c, "Animal deleted successfully")
}

type AddWeightRequest struct {
	Weight float64    `json:"weight" binding:"required,gt=0"`
	Date   *time.Time `json:"date"`
}

// AddWeight appends an entry to the animal's weight history.
func (h *AnimalHandler) AddWeight(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req AddWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	entry := models.WeightEntry{Weight: req.Weight, Date: date}

	result, err := h.DB.Collection(database.CollAnimals).UpdateOne(context.Background(),
		bson.M{"_id": id, "userId": userID},
		bson.M{"$push": bson.M{"weightHistory": entry}, "$set": bson.M{"updatedAt": time.Now()}})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to record weight")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Animal not found")
		return
	}

	respondCreated(c, entry)
}

type UpdateRestrictionRequest struct {
	IsRestricted       bool       `json:"isRestricted"`
	RestrictionEndDate *time.Time `json:"restrictionEndDate"`
	Notes              string     `json:"notes"`
}

// UpdateRestriction manually applies or clears a restriction (reason "other").
func (h *AnimalHandler) UpdateRestriction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateRestrictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	collection := h.DB.Collection(database.CollAnimals)
	var animal models.Animal
	err := collection.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&animal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Animal not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve animal")
		}
		return
	}

	if req.IsRestricted {
		if req.RestrictionEndDate == nil || !req.RestrictionEndDate.After(time.Now()) {
			respondError(c, http.StatusBadRequest, "restrictionEndDate must be set and in the future")
			return
		}
		restriction.Apply(&animal, models.RestrictionReasonOther, *req.RestrictionEndDate, req.Notes, nil, time.Now())
	} else {
		restriction.Clear(&animal)
	}

	_, err = collection.UpdateOne(context.Background(), bson.M{"_id": animal.ID},
		bson.M{"$set": bson.M{"restriction": animal.Restriction, "updatedAt": time.Now()}})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update restriction")
		return
	}

	respondOK(c, animal.Restriction)
}

// GetPedigree returns the ancestor tree of an animal.
func (h *AnimalHandler) GetPedigree(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	depth := pedigree.DefaultDepth
	if raw := c.Query("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, http.StatusBadRequest, "Invalid depth")
			return
		}
		depth = parsed
	}

	tree, err := pedigree.BuildTree(context.Background(), h.pedigreeFetcher(userID), &id, depth)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to build pedigree")
		return
	}
	if tree == nil {
		respondError(c, http.StatusNotFound, "Animal not found")
		return
	}

	respondOK(c, tree)
}
