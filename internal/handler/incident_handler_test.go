package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campushub/classroom-api/internal/models"
	"github.com/campushub/classroom-api/internal/service"
)

type fakeIncidentSrv struct {
	incident   *models.Incident
	err        error
	lastHidden bool
}

func (f *fakeIncidentSrv) List(context.Context, models.IncidentFilter) ([]models.Incident, *models.Pagination, error) {
	return []models.Incident{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (f *fakeIncidentSrv) Create(context.Context, service.CreateIncidentRequest) (*models.Incident, error) {
	return f.incident, f.err
}

func (f *fakeIncidentSrv) Respond(context.Context, string, string, service.RespondIncidentRequest) (*models.Incident, error) {
	return f.incident, f.err
}

func (f *fakeIncidentSrv) SetResolved(context.Context, string, string, bool) (*models.Incident, error) {
	return f.incident, f.err
}

func (f *fakeIncidentSrv) SetHidden(_ context.Context, _, _ string, hidden bool) (*models.Incident, error) {
	f.lastHidden = hidden
	return f.incident, f.err
}

func (f *fakeIncidentSrv) Delete(context.Context, string, string) error {
	return f.err
}

func TestIncidentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewIncidentHandler(&fakeIncidentSrv{incident: &models.Incident{ID: "i1"}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/incidents", `{"room_id":"r1","reporter_name":"Ana","description":"Projector dead"}`)

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestIncidentHandlerSetResolvedRequiresFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewIncidentHandler(&fakeIncidentSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPatch, "/incidents/i1/resolve", `{}`)

	handler.SetResolved(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIncidentHandlerHidePassesFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeIncidentSrv{incident: &models.Incident{ID: "i1", Hidden: true}}
	handler := NewIncidentHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPatch, "/incidents/i1/hide", `{"hidden":true}`)
	c.Params = gin.Params{{Key: "id", Value: "i1"}}

	handler.SetHidden(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.lastHidden)
}

func TestIncidentHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewIncidentHandler(&fakeIncidentSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/incidents/i1", nil)
	c.Params = gin.Params{{Key: "id", Value: "i1"}}

	handler.Delete(c)
	// Status-only responses are not flushed to the recorder until the
	// header is written out.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
