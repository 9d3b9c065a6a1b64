package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"aboutsettings/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeProvider struct {
	rows []models.DiskUsageRow
}

func (f fakeProvider) About(ctx context.Context) models.AboutInfo {
	return models.AboutInfo{
		Disk:      f.DiskSpace(ctx),
		DiskUsage: f.rows,
		Versions:  f.Versions(),
	}
}

func (fakeProvider) DiskSpace(context.Context) models.DiskSpace {
	return models.DiskSpace{Total: 2048, Available: 1024}
}

func (f fakeProvider) DiskUsageModel(context.Context) []models.DiskUsageRow {
	return f.rows
}

func (fakeProvider) NetworkAddresses(context.Context) models.NetworkAddresses {
	return models.NetworkAddresses{BluetoothAddress: "00:11:22:33:44:55"}
}

func (fakeProvider) Identifiers(context.Context) models.Identifiers {
	return models.Identifiers{Serial: "SN1"}
}

func (fakeProvider) Versions() models.Versions {
	return models.Versions{SoftwareVersion: "1.2.3", AdaptationVersion: "hw1"}
}

func perform(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return w
}

func TestGetDiskUsage(t *testing.T) {
	a := NewAboutController(fakeProvider{rows: []models.DiskUsageRow{
		{StorageType: models.StorageSystem, Path: "/", Available: 1, Total: 2},
		{StorageType: models.StorageUser, Path: "/home", Available: 3, Total: 4},
	}})

	w := perform(a.GetDiskUsage)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"storageType":"system","path":"/","available":1,"total":2},
		{"storageType":"user","path":"/home","available":3,"total":4}
	]`, w.Body.String())
}

func TestGetDiskUsageEmpty(t *testing.T) {
	w := perform(NewAboutController(fakeProvider{}).GetDiskUsage)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetDiskSpace(t *testing.T) {
	w := perform(NewAboutController(fakeProvider{}).GetDiskSpace)
	assert.JSONEq(t, `{"total":2048,"available":1024}`, w.Body.String())
}

func TestGetNetwork(t *testing.T) {
	w := perform(NewAboutController(fakeProvider{}).GetNetwork)
	assert.JSONEq(t, `{"bluetoothAddress":"00:11:22:33:44:55","wlanMacAddress":""}`, w.Body.String())
}

func TestGetIdentifiers(t *testing.T) {
	w := perform(NewAboutController(fakeProvider{}).GetIdentifiers)
	assert.JSONEq(t, `{"imei":"","serial":"SN1"}`, w.Body.String())
}

func TestGetVersions(t *testing.T) {
	w := perform(NewAboutController(fakeProvider{}).GetVersions)
	assert.JSONEq(t, `{"softwareVersion":"1.2.3","adaptationVersion":"hw1"}`, w.Body.String())
}

func TestGetAbout(t *testing.T) {
	w := perform(NewAboutController(fakeProvider{}).GetAbout)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"softwareVersion":"1.2.3"`)
	assert.Contains(t, w.Body.String(), `"diskUsage":null`)
}

func TestGetHealth(t *testing.T) {
	w := perform(GetHealth)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
