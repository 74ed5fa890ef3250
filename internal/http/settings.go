package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kobo-exporter/internal/settingsstore"
)

type SettingsController struct {
	store SettingsStore
}

func NewSettingsController(store SettingsStore) *SettingsController {
	return &SettingsController{store: store}
}

// UpdateSettingRequest is the body of PUT /api/settings/:key.
type UpdateSettingRequest struct {
	Value string `json:"value" form:"value"`
}

// GetSettings handles GET /api/settings
func (sc *SettingsController) GetSettings(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{"settings": sc.store.Info()})
}

// UpdateSetting handles PUT /api/settings/:key
func (sc *SettingsController) UpdateSetting(c *gin.Context) {
	var req UpdateSettingRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	key := c.Param("key")
	if err := sc.store.Set(key, req.Value); err != nil {
		sc.respondStoreError(c, err, "update setting")
		return
	}
	respondSuccess(c, "setting updated", gin.H{"key": key, "value": req.Value})
}

// ResetSetting handles DELETE /api/settings/:key
func (sc *SettingsController) ResetSetting(c *gin.Context) {
	key := c.Param("key")
	if err := sc.store.Reset(key); err != nil {
		sc.respondStoreError(c, err, "reset setting")
		return
	}
	respondSuccess(c, "setting reset", gin.H{"key": key})
}

func (sc *SettingsController) respondStoreError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, settingsstore.ErrUnknownKey):
		respondNotFound(c, "setting")
	case errors.Is(err, settingsstore.ErrInvalidValue):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}
