package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eduequip/eduequip/internal/models"
	"github.com/eduequip/eduequip/pkg/logger"
	"github.com/eduequip/eduequip/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// knownCollections are the collections the record service manages.
var knownCollections = map[string]bool{
	"users":  true,
	"data":   true,
	"config": true,
}

// RecordHandler implements the record service contract: flat JSON records
// addressed by collection name and record id. Structured values arrive
// pre-serialized by clients and are stored verbatim.
type RecordHandler struct {
	db *gorm.DB
}

func NewRecordHandler(db *gorm.DB) *RecordHandler {
	return &RecordHandler{db: db}
}

func (h *RecordHandler) collection(c *gin.Context) (string, bool) {
	collection := c.DefaultQuery("collection", "data")
	if !knownCollections[collection] {
		response.NotFound(c, fmt.Sprintf("collection '%s' not found", collection))
		return "", false
	}
	return collection, true
}

// List returns all records of a collection as a JSON array.
func (h *RecordHandler) List(c *gin.Context) {
	collection, ok := h.collection(c)
	if !ok {
		return
	}

	var rows []models.RecordRow
	if err := h.db.Where("collection = ?", collection).Order("id").Find(&rows).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}

	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		var fields map[string]any
		if err := json.Unmarshal([]byte(row.Fields), &fields); err != nil {
			logger.Warn().Str("collection", collection).Str("id", row.RecordID).Msg("skipping unreadable record row")
			continue
		}
		records = append(records, fields)
	}
	c.JSON(200, records)
}

// Create stores a new record. A record with the same id replaces the previous
// one, so duplicate creates resolve last-write-wins.
func (h *RecordHandler) Create(c *gin.Context) {
	collection, ok := h.collection(c)
	if !ok {
		return
	}

	payload, id, ok := h.bindRecord(c)
	if !ok {
		return
	}

	fields, err := json.Marshal(payload)
	if err != nil {
		response.BadRequest(c, "invalid record payload")
		return
	}

	var row models.RecordRow
	err = h.db.Where("collection = ? AND record_id = ?", collection, id).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.RecordRow{Collection: collection, RecordID: id, Fields: string(fields)}
		err = h.db.Create(&row).Error
	case err == nil:
		err = h.db.Model(&row).Update("fields", string(fields)).Error
	}
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.CreatedRecord(c, id)
}

// Update merges the payload's fields into the existing record.
func (h *RecordHandler) Update(c *gin.Context) {
	collection, ok := h.collection(c)
	if !ok {
		return
	}

	payload, id, ok := h.bindRecord(c)
	if !ok {
		return
	}

	var row models.RecordRow
	if err := h.db.Where("collection = ? AND record_id = ?", collection, id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Item not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(row.Fields), &fields); err != nil {
		fields = map[string]any{}
	}
	for key, value := range payload {
		fields[key] = value
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		response.BadRequest(c, "invalid record payload")
		return
	}
	if err := h.db.Model(&row).Update("fields", string(merged)).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Message(c, "Updated")
}

// Delete removes a record by id.
func (h *RecordHandler) Delete(c *gin.Context) {
	collection, ok := h.collection(c)
	if !ok {
		return
	}

	id := c.Query("id")
	if id == "" {
		response.BadRequest(c, "record id required")
		return
	}

	result := h.db.Where("collection = ? AND record_id = ?", collection, id).Delete(&models.RecordRow{})
	if result.Error != nil {
		response.ServerError(c, result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		response.NotFound(c, "Item not found")
		return
	}
	response.Message(c, "Deleted")
}

func (h *RecordHandler) bindRecord(c *gin.Context) (map[string]any, string, bool) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid JSON body")
		return nil, "", false
	}
	id, _ := payload["id"].(string)
	if id == "" {
		response.BadRequest(c, "record id required")
		return nil, "", false
	}
	return payload, id, true
}
