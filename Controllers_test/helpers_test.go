package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-tables/router"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/testutil"
	"github.com/yeremiapane/restaurant-tables/utils"
)

const testRestaurant = "resto-test"

// setupTestRouter wires the full API over a private in-memory database.
func setupTestRouter(t *testing.T) (*gin.Engine, *services.Floor) {
	t.Helper()
	utils.InitLogger("warn")
	gin.SetMode(gin.TestMode)

	floor := services.NewFloor(testutil.NewTestDB(t), nil)
	r := router.SetupRouter(router.Options{
		Floor:      floor,
		CORSOrigin: "http://localhost",
	})
	return r, floor
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := utils.GenerateToken("user-"+role, role, testRestaurant, time.Hour)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Warning string          `json:"warning"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func decode(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}
