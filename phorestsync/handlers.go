package phorestsync

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arlohq/salon_backend/config"
	"github.com/arlohq/salon_backend/models"
	"github.com/arlohq/salon_backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const syncLockTTL = 10 * time.Minute

// ConnectHandler stores the Phorest credentials for this salon and verifies
// them with one branch listing before marking the connection active.
func ConnectHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConnectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		client, err := NewClient(req.BusinessId, req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if _, err := fetchBranches(c.Request.Context(), client); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "credential check failed: " + err.Error()})
			return
		}

		conn := models.PlatformConnection{
			Provider:      models.IntegrationProviderPhorest,
			Status:        models.IntegrationStatusConnected,
			BusinessId:    strings.TrimSpace(req.BusinessId),
			AuthUsername:  NormalizeUsername(req.Username),
			AuthSecretRef: req.Password,
		}

		var existing models.PlatformConnection
		err = db.WithContext(c.Request.Context()).
			Where("provider = ?", models.IntegrationProviderPhorest).
			First(&existing).Error
		if err == nil {
			conn.ID = existing.ID
			err = db.WithContext(c.Request.Context()).Save(&conn).Error
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			err = db.WithContext(c.Request.Context()).Create(&conn).Error
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "status": conn.Status})
	}
}

// DisconnectHandler keeps the stored row but flips it to disconnected, so a
// reconnect doesn't need the credentials re-entered out of band.
func DisconnectHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.WithContext(c.Request.Context()).
			Model(&models.PlatformConnection{}).
			Where("provider = ?", models.IntegrationProviderPhorest).
			Update("status", models.IntegrationStatusDisconnected)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "phorest is not connected"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": models.IntegrationStatusDisconnected})
	}
}

func StatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := loadConnection(c, db)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, StatusResponse{Status: models.IntegrationStatusDisconnected})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := StatusResponse{Status: conn.Status, BusinessId: conn.BusinessId}
		if conn.LastSyncAt != nil {
			v := conn.LastSyncAt.UTC().Format(time.RFC3339)
			resp.LastSyncAt = &v
		}
		if conn.LastSuccessSyncAt != nil {
			v := conn.LastSuccessSyncAt.UTC().Format(time.RFC3339)
			resp.LastSuccessSyncAt = &v
		}
		c.JSON(http.StatusOK, resp)
	}
}

// SyncHandler triggers a sync run. An empty body means "sync everything with
// default windows". The response is 200 whenever the request itself was
// well-formed and credentials exist; per-entity outcomes live under results
// and must be checked individually for an error field.
func SyncHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SyncRequest
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body: " + err.Error()})
				return
			}
			if len(strings.TrimSpace(string(body))) > 0 {
				if err := bindSyncRequest(body, &req); err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
					return
				}
			}
		}

		conn, err := loadConnection(c, db)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && conn.Status != models.IntegrationStatusConnected) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phorest is not connected"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		client, err := NewClient(conn.BusinessId, conn.AuthUsername, conn.AuthSecretRef)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// async=true hands the run to the Pub/Sub push worker instead of
		// blocking the caller on the full sync.
		if strings.EqualFold(c.Query("async"), "true") {
			messageId, err := PublishSyncRequest(c.Request.Context(), req)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"success": true, "messageId": messageId})
			return
		}

		ctx := utils.SetTriggeredByInContext(c.Request.Context(), "api")

		lock, err := utils.ObtainSyncLock(ctx, "phorest-sync", syncLockTTL)
		if errors.Is(err, utils.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		defer utils.ReleaseSyncLock(ctx, lock)

		results, err := RunSync(ctx, db, client, req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		touchConnection(c, db, conn.ID, allSucceeded(results))
		c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
	}
}

// SyncLogsHandler lists recent sync log rows, newest first.
func SyncLogsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 500 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
				return
			}
			limit = n
		}

		var logs []models.SyncLog
		err := db.WithContext(c.Request.Context()).
			Order("id DESC").Limit(limit).Find(&logs).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out := make([]SyncLogResponse, 0, len(logs))
		for _, entry := range logs {
			out = append(out, SyncLogResponse{
				ID:            entry.ID,
				SyncType:      entry.SyncType,
				Status:        entry.Status,
				RecordsSynced: entry.RecordsSynced,
				ErrorMessage:  entry.ErrorMessage,
				CompletedAt:   entry.CompletedAt.UTC().Format(time.RFC3339),
			})
		}
		c.JSON(http.StatusOK, gin.H{"logs": out})
	}
}

func bindSyncRequest(body []byte, req *SyncRequest) error {
	return json.Unmarshal(body, req)
}

func loadConnection(c *gin.Context, db *gorm.DB) (models.PlatformConnection, error) {
	var conn models.PlatformConnection
	err := db.WithContext(c.Request.Context()).
		Where("provider = ?", models.IntegrationProviderPhorest).
		First(&conn).Error
	return conn, err
}

func touchConnection(c *gin.Context, db *gorm.DB, id uint, success bool) {
	now := time.Now().UTC()
	updates := map[string]interface{}{"last_sync_at": now}
	if success {
		updates["last_success_sync_at"] = now
	}
	err := db.WithContext(c.Request.Context()).
		Model(&models.PlatformConnection{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		config.LogError(config.GetLogger(), "phorestsync", "touchConnection", "connection timestamp update failed", id, err)
	}
}

func allSucceeded(results map[string]interface{}) bool {
	for _, payload := range results {
		if _, failed := payload.(ErrorPayload); failed {
			return false
		}
	}
	return true
}
