package phorestsync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/arlohq/salon_backend/config"
	"github.com/arlohq/salon_backend/models"
	"github.com/arlohq/salon_backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func syncTopicName() string {
	if v := strings.TrimSpace(os.Getenv("PHOREST_SYNC_TOPIC")); v != "" {
		return v
	}
	return "phorest-sync"
}

// PublishSyncRequest enqueues a sync trigger on Pub/Sub, for Cloud Scheduler
// style invocation where the caller doesn't want to wait on the run.
func PublishSyncRequest(ctx context.Context, req SyncRequest) (string, error) {
	client, err := config.GetClient(ctx)
	if err != nil {
		return "", err
	}
	topic, err := config.CreateTopicIfNotExists(client, syncTopicName())
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	result := topic.Publish(ctx, &pubsub.Message{Data: data})
	return result.Get(ctx)
}

// PubSubPushHandler consumes a Pub/Sub push delivery carrying a SyncRequest
// and runs the sync inline. Non-retryable problems (bad envelope, missing
// connection) still return 200 so the subscription doesn't redeliver them
// forever; outcomes are recorded in sync_logs either way.
func PubSubPushHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var envelope PubSubPushEnvelope
		if err := c.ShouldBindJSON(&envelope); err != nil {
			c.JSON(http.StatusOK, gin.H{"status": "dropped", "error": "invalid push envelope: " + err.Error()})
			return
		}

		var req SyncRequest
		if len(envelope.Message.Data) > 0 {
			if err := json.Unmarshal(envelope.Message.Data, &req); err != nil {
				c.JSON(http.StatusOK, gin.H{"status": "dropped", "error": "invalid sync request payload: " + err.Error()})
				return
			}
		}

		var conn models.PlatformConnection
		err := db.WithContext(c.Request.Context()).
			Where("provider = ? AND status = ?", models.IntegrationProviderPhorest, models.IntegrationStatusConnected).
			First(&conn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"status": "dropped", "error": "phorest is not connected"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		client, err := NewClient(conn.BusinessId, conn.AuthUsername, conn.AuthSecretRef)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"status": "dropped", "error": err.Error()})
			return
		}

		ctx := utils.SetTriggeredByInContext(c.Request.Context(), "pubsub")

		lock, err := utils.ObtainSyncLock(ctx, "phorest-sync", syncLockTTL)
		if errors.Is(err, utils.ErrSyncInProgress) {
			// Another run is active; acknowledge, the scheduler will fire again.
			c.JSON(http.StatusOK, gin.H{"status": "skipped", "error": err.Error()})
			return
		}
		defer utils.ReleaseSyncLock(ctx, lock)

		results, err := RunSync(ctx, db, client, req)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"status": "dropped", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
	}
}
