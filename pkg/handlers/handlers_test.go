package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arnavshah/agenda-api-go/pkg/auth"
	"github.com/arnavshah/agenda-api-go/pkg/config"
	"github.com/arnavshah/agenda-api-go/pkg/database"
	"github.com/arnavshah/agenda-api-go/pkg/metrics"
	"github.com/arnavshah/agenda-api-go/pkg/models"
	"github.com/arnavshah/agenda-api-go/pkg/scheduler"
	"github.com/arnavshah/agenda-api-go/pkg/store"
)

const testDay = "2024-05-01" // a Wednesday

type invalidations struct {
	clinics []string
}

func (i *invalidations) Invalidate(_ context.Context, clinicID string) error {
	i.clinics = append(i.clinics, clinicID)
	return nil
}

type testServer struct {
	h      *Handler
	router *gin.Engine
	apiKey string
	cache  *invalidations
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.InitDB("", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:          "jwt-secret",
		APIMasterSecret:    "master-secret",
		AdminUsername:      "admin",
		AdminPassword:      "admin123",
		DefaultGranularity: 15,
		BatchConcurrency:   4,
		DefaultRateLimit:   100,
	}
	require.NoError(t, auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword, nil))

	gs := store.NewGormStore(db)
	cache := &invalidations{}
	h := &Handler{
		DB:        db,
		Config:    cfg,
		Auth:      auth.New(cfg.JWTSecret, cfg.APIMasterSecret),
		Validator: scheduler.NewValidator(zap.NewNop(), metrics.NewValidationMetrics(prometheus.NewRegistry())),
		Store:     gs,
		Snapshots: store.Providers{Bookings: gs, Schedules: gs, Blocks: gs, DefaultGranularity: cfg.DefaultGranularity},
		Cache:     cache,
		Logger:    zap.NewNop(),
	}
	return &testServer{h: h, router: h.NewRouter(), apiKey: h.Auth.GenerateHMACKey("clinic-app"), cache: cache}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/admin/login", gin.H{"username": "admin", "password": "admin123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) models.ValidationResult {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res models.ValidationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func openWeek() gin.H {
	day := gin.H{"is_open": true, "ranges": []gin.H{{"start": "09:00", "end": "20:00"}}}
	return gin.H{
		"monday": day, "tuesday": day, "wednesday": day, "thursday": day,
		"friday": day, "saturday": day, "sunday": gin.H{"is_open": false},
	}
}

func inlineContext() gin.H {
	return gin.H{
		"week_schedule":       openWeek(),
		"granularity_minutes": 15,
		"allow_adjustments":   true,
		"bookings": []gin.H{{
			"id": "b1", "name": "Ana", "resource_id": "R1", "date": testDay,
			"start_minute": 600, "duration_minutes": 30,
		}},
	}
}

func candidateBody(start, duration int) gin.H {
	return gin.H{"resource_id": "R1", "date": testDay, "start_minute": start, "duration_minutes": duration}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestAPIKeyRequired(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{"candidate": candidateBody(660, 30), "context": inlineContext()}

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/validate", body, "").Code)
	forged := auth.New("x", "other-secret").GenerateHMACKey("clinic-app")
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/validate", body, forged).Code)
}

func TestValidateInline(t *testing.T) {
	s := newTestServer(t)

	res := decodeResult(t, s.do(t, http.MethodPost, "/api/validate",
		gin.H{"candidate": candidateBody(660, 30), "context": inlineContext()}, s.apiKey))
	assert.True(t, res.IsValid)
	assert.Equal(t, models.OutcomeAccepted, res.Outcome)

	res = decodeResult(t, s.do(t, http.MethodPost, "/api/validate",
		gin.H{"candidate": candidateBody(615, 30), "context": inlineContext()}, s.apiKey))
	assert.False(t, res.IsValid)
	assert.True(t, res.CanProceed)
	assert.Equal(t, models.ReasonConflict, res.Reason)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "Ana", res.Conflicts[0].Name)
	require.NotNil(t, res.SuggestedStartMinute)
	assert.Equal(t, 630, *res.SuggestedStartMinute)
	assert.Equal(t, "10:30", res.SuggestedStartTime)

	w := s.do(t, http.MethodGet, "/api/usage", nil, s.apiKey)
	require.Equal(t, http.StatusOK, w.Code)
	var usage struct {
		RemainingToday int         `json:"remaining_today"`
		Days           []usageDay  `json:"days"`
		Totals         usageTotals `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.Equal(t, 2, usage.Totals.Requests)
	assert.Equal(t, 2, usage.Totals.Validations)
	assert.Equal(t, 1, usage.Totals.Conflicts)
	assert.InDelta(t, 0.5, usage.Totals.ConflictRate, 1e-9)
	assert.Equal(t, 98, usage.RemainingToday)
	require.Len(t, usage.Days, 1)
	assert.Equal(t, today(), usage.Days[0].Date)
	assert.InDelta(t, 0.5, usage.Days[0].ConflictRate, 1e-9)
}

func TestValidateInline_ContractErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/validate", gin.H{"candidate": candidateBody(600, 0), "context": inlineContext()}, s.apiKey)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	vc := inlineContext()
	vc["granularity_minutes"] = -5
	w = s.do(t, http.MethodPost, "/api/validate", gin.H{"candidate": candidateBody(600, 30), "context": vc}, s.apiKey)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPost, "/api/validate", gin.H{"candidate": gin.H{"date": testDay}}, s.apiKey)
	assert.Equal(t, http.StatusBadRequest, w.Code, "resource_id is required")
}

func TestValidateBatch(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{
		"candidates": []gin.H{candidateBody(600, 30), candidateBody(660, 30), candidateBody(1200, 30)},
		"context":    inlineContext(),
	}

	w := s.do(t, http.MethodPost, "/api/validate/batch", body, s.apiKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Results []models.ValidationResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	assert.Equal(t, models.OutcomeRejectedWithSuggestion, resp.Results[0].Outcome)
	assert.Equal(t, models.OutcomeAccepted, resp.Results[1].Outcome)
	assert.Equal(t, models.OutcomeRejectedOutsideHours, resp.Results[2].Outcome)

	w = s.do(t, http.MethodPost, "/api/validate/batch", gin.H{"candidates": []gin.H{}, "context": inlineContext()}, s.apiKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckContext(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/context/check", inlineContext(), s.apiKey)
	require.Equal(t, http.StatusOK, w.Code)
	var ok struct {
		Valid bool `json:"valid"`
		Stats struct {
			BookingCount int `json:"booking_count"`
			Granularity  int `json:"granularity"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Valid)
	assert.Equal(t, 1, ok.Stats.BookingCount)
	assert.Equal(t, 15, ok.Stats.Granularity)

	vc := inlineContext()
	vc["bookings"] = append(vc["bookings"].([]gin.H), vc["bookings"].([]gin.H)[0])
	w = s.do(t, http.MethodPost, "/api/context/check", vc, s.apiKey)
	var dup struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dup))
	assert.False(t, dup.Valid)
	assert.Contains(t, dup.Error, "Duplicate booking ID: b1")
}

func TestDailyRateLimit(t *testing.T) {
	s := newTestServer(t)
	s.h.Config.DefaultRateLimit = 2
	body := gin.H{"candidate": candidateBody(660, 30), "context": inlineContext()}

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/validate", body, s.apiKey).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/validate", body, s.apiKey).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/api/validate", body, s.apiKey).Code)
}

func seedClinic(t *testing.T, s *testServer) {
	t.Helper()
	ctx := context.Background()
	day, err := civil.ParseDate(testDay)
	require.NoError(t, err)

	week := models.WeekSchedule{}
	for _, d := range models.MondayFirst {
		week[d] = models.DaySchedule{IsOpen: true, Ranges: []models.TimeRange{{Start: 540, End: 1200}}}
	}
	require.NoError(t, s.h.Store.SaveSchedule(ctx, models.ClinicSchedule{ClinicID: "c1", Week: week, GranularityMinutes: 15}))
	require.NoError(t, s.h.Store.SaveBooking(ctx, "c1", models.Booking{ID: "b1", Name: "Ana", ResourceID: "R1", Date: day, StartMinute: 600, DurationMinutes: 30}))
	require.NoError(t, s.h.Store.SaveBooking(ctx, "c1", models.Booking{ID: "b2", Name: "Bea", ResourceID: "R1", Date: day, StartMinute: 660, DurationMinutes: 30}))
}

func TestValidateStored(t *testing.T) {
	s := newTestServer(t)
	seedClinic(t, s)

	body := candidateBody(645, 30)
	body["allow_adjustments"] = true
	res := decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c1/validate", body, s.apiKey))
	assert.Equal(t, models.ReasonConflict, res.Reason)
	require.NotNil(t, res.SuggestedStartMinute)
	assert.Equal(t, 690, *res.SuggestedStartMinute)

	body["exclude_booking_id"] = "b2"
	res = decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c1/validate", body, s.apiKey))
	assert.True(t, res.IsValid)

	w := s.do(t, http.MethodPost, "/api/clinics/unknown/validate", candidateBody(645, 30), s.apiKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingInteractions(t *testing.T) {
	s := newTestServer(t)
	seedClinic(t, s)

	res := decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c1/bookings/b1/move", gin.H{"start_minute": 720}, s.apiKey))
	assert.True(t, res.IsValid)

	res = decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c1/bookings/b1/move", gin.H{"start_minute": 660}, s.apiKey))
	assert.Equal(t, models.ReasonConflict, res.Reason)
	assert.False(t, res.CanProceed, "moves without adjustments get no suggestion")

	res = decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c1/bookings/b1/resize", gin.H{"duration_minutes": 90}, s.apiKey))
	assert.True(t, res.CanProceed, "resizes always allow adjustments")
	require.NotNil(t, res.SuggestedStartMinute)
	assert.Equal(t, 690, *res.SuggestedStartMinute)
	assert.Equal(t, 90, res.OriginalDuration)

	res = decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c1/bookings/b1/nudge", gin.H{"direction": "up"}, s.apiKey))
	assert.True(t, res.IsValid)
	assert.Equal(t, 585, res.OriginalStartMinute)

	w := s.do(t, http.MethodPost, "/api/clinics/c1/bookings/nope/nudge", gin.H{"direction": "up"}, s.apiKey)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/clinics/c1/bookings/b1/nudge", gin.H{"direction": "sideways"}, s.apiKey)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAdminClinicData(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	w := s.do(t, http.MethodPut, "/admin/clinics/c2/schedule", gin.H{"week": openWeek(), "granularity_minutes": 15}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, "/admin/clinics/c2/schedule", gin.H{"week": openWeek(), "granularity_minutes": 15}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/admin/clinics/c2/blocks", gin.H{
		"resource_ids": []string{"R1"},
		"date_start":   testDay,
		"start_time":   "12:00",
		"end_time":     "13:00",
		"description":  "Lunch",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var lunch models.BlockSpec
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lunch))
	assert.NotEmpty(t, lunch.ID)
	assert.False(t, lunch.CreatedAt.IsZero(), "created_at is stamped on insert")

	w = s.do(t, http.MethodPost, "/admin/clinics/c2/blocks", gin.H{
		"resource_ids": []string{"R1"},
		"date_start":   testDay,
		"start_time":   "12:00",
		"end_time":     "13:00",
		"is_recurring": true,
	}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "recurring blocks need a recurrence end date")

	w = s.do(t, http.MethodPost, "/admin/clinics/c2/exceptions", gin.H{
		"date_start": "2024-05-02",
		"date_end":   "2024-05-02",
		"days":       gin.H{"thursday": gin.H{"active": false}},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []string{"c2", "c2"}, s.cache.clinics)

	res := decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c2/validate", candidateBody(735, 30), s.apiKey))
	assert.Equal(t, models.ReasonBlocked, res.Reason)
	require.NotNil(t, res.BlockedBy)
	assert.Equal(t, "Lunch", res.BlockedBy.Description)

	thursday := candidateBody(600, 30)
	thursday["date"] = "2024-05-02"
	res = decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c2/validate", thursday, s.apiKey))
	assert.Equal(t, models.ReasonOutsideHours, res.Reason)
}

func TestAdminKeys(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	w := s.do(t, http.MethodPost, "/admin/login", gin.H{"username": "admin", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/admin/keys", gin.H{"name": "front-desk", "rate_limit": 50}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		ID  uint   `json:"id"`
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, s.h.Auth.GenerateHMACKey("front-desk"), created.Key)

	w = s.do(t, http.MethodGet, "/admin/keys", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Keys []database.APIKey `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Keys, 1)
	assert.Equal(t, 50, list.Keys[0].RateLimit)
	assert.Equal(t, auth.KeyPreview(created.Key), list.Keys[0].KeyPreview)
	assert.Empty(t, list.Keys[0].Key, "the raw key is never listed")

	w = s.do(t, http.MethodPut, "/admin/keys/1", gin.H{"rate_limit": 75}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/admin/keys/1", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRevokedKeyRejected(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	w := s.do(t, http.MethodPost, "/admin/keys", gin.H{"name": "front-desk", "rate_limit": 50}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		ID  uint   `json:"id"`
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	keyPath := fmt.Sprintf("/admin/keys/%d", created.ID)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, keyPath, gin.H{"rate_limit": 20}, token).Code)

	w = s.do(t, http.MethodGet, "/api/usage", nil, created.Key)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var usage struct {
		RateLimit int `json:"rate_limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.Equal(t, 20, usage.RateLimit, "a known key keeps its own limit")

	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, keyPath, nil, token).Code)

	w = s.do(t, http.MethodGet, "/api/usage", nil, created.Key)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
	w = s.do(t, http.MethodPost, "/api/validate", gin.H{"candidate": candidateBody(660, 30), "context": inlineContext()}, created.Key)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "the revoked row is not recreated")

	var count int64
	require.NoError(t, s.h.DB.Unscoped().Model(&database.APIKey{}).Where("name = ?", "front-desk").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, keyPath, nil, token).Code)

	w = s.do(t, http.MethodGet, "/admin/keys", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "front-desk")

	// Keys minted offline still register on first use.
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/usage", nil, s.apiKey).Code)
}

func TestUsageStoreFailures(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)
	body := gin.H{"candidate": candidateBody(660, 30), "context": inlineContext()}

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/validate", body, s.apiKey).Code)
	require.NoError(t, s.h.DB.Migrator().DropTable(&database.APIUsage{}))

	w := s.do(t, http.MethodPost, "/api/validate", body, s.apiKey)
	assert.Equal(t, http.StatusInternalServerError, w.Code, "an unreadable request count does not bypass the cap")

	w = s.do(t, http.MethodGet, "/admin/usage/1", nil, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	require.NoError(t, s.h.DB.Migrator().DropTable(&database.APIKey{}))
	w = s.do(t, http.MethodGet, "/admin/keys", nil, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdminDeleteClinicData(t *testing.T) {
	s := newTestServer(t)
	seedClinic(t, s)
	token := s.adminToken(t)

	res := decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c1/validate", candidateBody(600, 30), s.apiKey))
	assert.Equal(t, models.ReasonConflict, res.Reason)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/admin/clinics/c1/bookings/b1", nil, token).Code)
	res = decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c1/validate", candidateBody(600, 30), s.apiKey))
	assert.True(t, res.IsValid, "a cancelled booking frees its slot")
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/admin/clinics/c1/bookings/b1", nil, token).Code)

	w := s.do(t, http.MethodPost, "/admin/clinics/c1/blocks", gin.H{
		"resource_ids": []string{"R1"},
		"date_start":   testDay,
		"start_time":   "12:00",
		"end_time":     "13:00",
		"description":  "Lunch",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res = decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c1/validate", candidateBody(735, 30), s.apiKey))
	assert.Equal(t, models.ReasonBlocked, res.Reason)

	w = s.do(t, http.MethodGet, "/admin/clinics/c1/blocks?from=2024-05-01&to=2024-05-31", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var blocks struct {
		Blocks []models.BlockSpec `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blocks))
	require.Len(t, blocks.Blocks, 1)
	assert.Equal(t, "12:00", blocks.Blocks[0].StartTime)

	w = s.do(t, http.MethodGet, "/admin/clinics/c1/blocks?from=2024-06-01", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"blocks":[]}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/admin/clinics/c1/blocks?from=soon", nil, token).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/admin/clinics/c1/blocks?from=2024-06-01&to=2024-05-01", nil, token).Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/admin/clinics/c1/blocks/"+blocks.Blocks[0].ID, nil, token).Code)
	res = decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c1/validate", candidateBody(735, 30), s.apiKey))
	assert.True(t, res.IsValid, "a lifted block frees its slot")

	w = s.do(t, http.MethodPost, "/admin/clinics/c1/exceptions", gin.H{
		"id":         "closed",
		"date_start": testDay,
		"date_end":   testDay,
		"days":       gin.H{"wednesday": gin.H{"active": false}},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res = decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c1/validate", candidateBody(780, 30), s.apiKey))
	assert.Equal(t, models.ReasonOutsideHours, res.Reason)

	w = s.do(t, http.MethodGet, "/admin/clinics/c1/exceptions?to="+testDay, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"closed"`)

	s.cache.clinics = nil
	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/admin/clinics/c1/exceptions/closed", nil, token).Code)
	assert.Equal(t, []string{"c1"}, s.cache.clinics, "deleting an exception drops cached hours")
	res = decodeResult(t, s.do(t, http.MethodPost, "/api/clinics/c1/validate", candidateBody(780, 30), s.apiKey))
	assert.True(t, res.IsValid)

	w = s.do(t, http.MethodDelete, "/admin/clinics/c1/exceptions/closed", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{"c1"}, s.cache.clinics, "nothing to invalidate on a miss")
}
