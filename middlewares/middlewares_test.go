package middlewares

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-tables/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitLogger("warn")
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":       c.GetString(CtxUserID),
			"restaurant_id": RestaurantID(c),
		})
	})
	return r
}

func get(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(AuthMiddleware())

	token, err := utils.GenerateToken("u-1", RoleStaff, "resto-1", time.Hour)
	require.NoError(t, err)

	w := get(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"restaurant_id":"resto-1"`)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, token).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer garbage").Code)

	expired, err := utils.GenerateToken("u-1", RoleStaff, "resto-1", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+expired).Code)

	noRestaurant, err := utils.GenerateToken("u-1", RoleStaff, "", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+noRestaurant).Code)
}

func TestRequireRoles(t *testing.T) {
	r := newEngine(AuthMiddleware(), RequireRoles(RoleStaff))

	cases := []struct {
		role string
		want int
	}{
		{RoleStaff, http.StatusOK},
		{RoleAdmin, http.StatusOK},
		{"customer", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			token, err := utils.GenerateToken("u-1", tc.role, "resto-1", time.Hour)
			require.NoError(t, err)
			assert.Equal(t, tc.want, get(r, "Bearer "+token).Code)
		})
	}

	// tanpa AuthMiddleware tidak ada role di context
	assert.Equal(t, http.StatusUnauthorized, get(newEngine(RequireRoles(RoleStaff)), "").Code)
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := newEngine(rl.RateLimit())

	assert.Equal(t, http.StatusOK, get(r, "").Code)
	assert.Equal(t, http.StatusOK, get(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "").Code)
}

func TestWebSocketAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/ws", WebSocketAuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxRole))
	})

	token, err := utils.GenerateToken("u-1", RoleAdmin, "resto-1", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, RoleAdmin, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSecurityAndCORSHeaders(t *testing.T) {
	r := newEngine(SecurityHeaders(), CORSMiddlewares("http://dash.local"))

	w := get(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://dash.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

// captureLogs sends both loggers to buffers until the test ends.
func captureLogs(t *testing.T) (info, errs *bytes.Buffer) {
	t.Helper()
	utils.InitLogger("info")
	info, errs = &bytes.Buffer{}, &bytes.Buffer{}
	utils.InfoLogger.SetOutput(info)
	utils.ErrorLogger.SetOutput(errs)
	utils.InfoLogger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	utils.ErrorLogger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	t.Cleanup(func() { utils.InitLogger("warn") })
	return info, errs
}

func TestAuditLogger_RecordsRejectedChange(t *testing.T) {
	_, errs := captureLogs(t)

	r := gin.New()
	r.PATCH("/tables/:table_id/status", AuditLogger(), func(c *gin.Context) {
		utils.RespondError(c, 0, utils.NewConflictError("table C1 is occupied"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/tables/t-1/status", nil))
	require.Equal(t, http.StatusConflict, w.Code)

	logged := errs.String()
	assert.Contains(t, logged, "floor change rejected")
	assert.Contains(t, logged, "status=409")
	assert.Contains(t, logged, "table_id=t-1")
}

func TestAuditLogger_RecordsAppliedChange(t *testing.T) {
	info, errs := captureLogs(t)

	r := gin.New()
	r.DELETE("/reservations/:reservation_id", AuditLogger(), func(c *gin.Context) {
		utils.RespondJSON(c, http.StatusOK, "Reservation deleted", nil)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/reservations/r-1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, info.String(), "floor change applied")
	assert.Contains(t, info.String(), "reservation_id=r-1")
	assert.Empty(t, errs.String())

	// 5xx juga tercatat
	r.GET("/boom", AuditLogger(), func(c *gin.Context) {
		utils.RespondError(c, 0, utils.NewStoreError("list tables", errors.New("down")))
	})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, errs.String(), "status=502")
}
