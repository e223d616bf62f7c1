package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"exam-engine/internal/event"
	"exam-engine/internal/offline"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	Syncer    *offline.Syncer
	Publisher event.Publisher
}

func NewSyncHandler(syncer *offline.Syncer, publisher event.Publisher) *SyncHandler {
	return &SyncHandler{Syncer: syncer, Publisher: publisher}
}

// StartSync kicks off a full cache refresh in the background and returns
// immediately. A second request while a run is active gets a 409.
func (h *SyncHandler) StartSync(c *gin.Context) {
	if _, ok := userID(c); !ok {
		return
	}
	if h.Syncer.Progress().Running {
		c.JSON(http.StatusConflict, gin.H{"error": offline.ErrSyncRunning.Error()})
		return
	}

	go func() {
		progress, err := h.Syncer.Run(context.Background())
		if err != nil {
			if !errors.Is(err, offline.ErrSyncRunning) {
				log.Printf("[Sync] run failed: %v", err)
			}
			return
		}
		if h.Publisher != nil {
			if perr := h.Publisher.Publish(event.SyncCompleted, progress); perr != nil {
				log.Printf("[Sync] publishing completion failed: %v", perr)
			}
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Sync started"})
}

// SyncStatus reports progress of the current or most recent run.
func (h *SyncHandler) SyncStatus(c *gin.Context) {
	if _, ok := userID(c); !ok {
		return
	}
	c.JSON(http.StatusOK, h.Syncer.Progress())
}
