package controllers

import (
	"context"
	"net/http"

	"aboutsettings/internal/models"

	"github.com/gin-gonic/gin"
)

// AboutProvider is the query surface the handlers bind to
type AboutProvider interface {
	About(ctx context.Context) models.AboutInfo
	DiskSpace(ctx context.Context) models.DiskSpace
	DiskUsageModel(ctx context.Context) []models.DiskUsageRow
	NetworkAddresses(ctx context.Context) models.NetworkAddresses
	Identifiers(ctx context.Context) models.Identifiers
	Versions() models.Versions
}

// AboutController serves About panel data. Degraded values are returned
// as empty strings or zeros with status 200.
type AboutController struct {
	provider AboutProvider
}

func NewAboutController(provider AboutProvider) *AboutController {
	return &AboutController{provider: provider}
}

// GetAbout returns everything in one payload
func (a *AboutController) GetAbout(c *gin.Context) {
	c.JSON(http.StatusOK, a.provider.About(c.Request.Context()))
}

// GetDiskSpace returns total and available bytes of the root filesystem
func (a *AboutController) GetDiskSpace(c *gin.Context) {
	c.JSON(http.StatusOK, a.provider.DiskSpace(c.Request.Context()))
}

// GetDiskUsage returns the per-mountpoint disk usage model
func (a *AboutController) GetDiskUsage(c *gin.Context) {
	rows := a.provider.DiskUsageModel(c.Request.Context())
	if rows == nil {
		rows = []models.DiskUsageRow{}
	}
	c.JSON(http.StatusOK, rows)
}

func (a *AboutController) GetNetwork(c *gin.Context) {
	c.JSON(http.StatusOK, a.provider.NetworkAddresses(c.Request.Context()))
}

func (a *AboutController) GetIdentifiers(c *gin.Context) {
	c.JSON(http.StatusOK, a.provider.Identifiers(c.Request.Context()))
}

func (a *AboutController) GetVersions(c *gin.Context) {
	c.JSON(http.StatusOK, a.provider.Versions())
}

// GetHealth reports liveness
func GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
