package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campushub/classroom-api/internal/dto"
	"github.com/campushub/classroom-api/internal/models"
	"github.com/campushub/classroom-api/internal/service"
)

type fakeAvailabilitySrv struct {
	result    *dto.AvailabilityResult
	err       error
	lastQuery service.AvailabilityQuery
}

func (f *fakeAvailabilitySrv) Resolve(_ context.Context, query service.AvailabilityQuery) (*dto.AvailabilityResult, error) {
	f.lastQuery = query
	return f.result, f.err
}

func TestAvailabilityHandlerMalformedDateFallsBackToNow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAvailabilitySrv{result: &dto.AvailabilityResult{}}
	handler := NewAvailabilityHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/availability?date=99-99-9999", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.lastQuery.Date.IsZero())
}

func TestAvailabilityHandlerPassesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAvailabilitySrv{result: &dto.AvailabilityResult{PeriodLabel: "Monday - Morning"}}
	handler := NewAvailabilityHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/availability?date=2026-09-07&shift=morning", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ShiftMorning, srv.lastQuery.Shift)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), srv.lastQuery.Date)

	var envelope responseEnvelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "Monday - Morning", envelope.Data["period_label"])
}

func TestAvailabilityHandlerNoDateMeansNow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAvailabilitySrv{result: &dto.AvailabilityResult{}}
	handler := NewAvailabilityHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/availability", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.lastQuery.Date.IsZero())
	assert.Empty(t, srv.lastQuery.Shift)
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
