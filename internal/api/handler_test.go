package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cnc-telemetry-backend/config"
	"cnc-telemetry-backend/internal/db"
	"cnc-telemetry-backend/internal/model"
	"cnc-telemetry-backend/internal/store"
	"cnc-telemetry-backend/internal/ws"
)

func newTestRouter(t *testing.T, name string) (*gin.Engine, store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(testDB))
	t.Cleanup(func() {
		sqlDB, _ := testDB.DB()
		sqlDB.Close()
	})

	appStore := store.NewGormStore(testDB)

	cfg := config.Default()
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000

	broadcaster := ws.NewBroadcaster(context.Background(), appStore, appStore, time.Hour)

	gin.SetMode(gin.TestMode)
	return NewRouter(&cfg.Server, appStore, broadcaster), appStore
}

func doGET(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetMachines(t *testing.T) {
	r, appStore := newTestRouter(t, "api_machines")

	ctx := context.Background()
	require.NoError(t, appStore.UpsertMachine(ctx, 81258856, "81258856", 24))
	require.NoError(t, appStore.UpsertMachine(ctx, 81258857, "81258857", 24))

	w := doGET(r, "/api/machines")
	require.Equal(t, http.StatusOK, w.Code)

	var machines []model.Machine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &machines))
	require.Len(t, machines, 2)
	assert.Equal(t, int64(81258856), machines[0].MachineID)
	assert.Equal(t, "81258857", machines[1].MachineName)
}

func TestGetAxisDataWindow(t *testing.T) {
	r, appStore := newTestRouter(t, "api_axis_window")

	ctx := context.Background()
	require.NoError(t, appStore.UpsertMachine(ctx, 1, "1", 24))
	require.NoError(t, appStore.UpsertAxis(ctx, 1, "X", 200, 60))
	require.NoError(t, appStore.UpsertAxis(ctx, 1, "Y", 200, 60))
	require.NoError(t, appStore.AppendAxisSample(ctx, 1, "X", store.AxisSample{
		ActualPosition: 10, TargetPosition: 11, Homed: true, Acceleration: 100, Velocity: 40,
	}))
	require.NoError(t, appStore.AppendAxisSample(ctx, 1, "Y", store.AxisSample{
		ActualPosition: -5, TargetPosition: -5, Homed: true, Acceleration: 90, Velocity: 30,
	}))

	t.Run("default window returns all recent samples", func(t *testing.T) {
		w := doGET(r, "/api/machines/1/axis_data")
		require.Equal(t, http.StatusOK, w.Code)

		var rows []model.AxisData
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		assert.Len(t, rows, 2)
	})

	t.Run("axis_name filter narrows the result", func(t *testing.T) {
		w := doGET(r, "/api/machines/1/axis_data?axis_name=X")
		require.Equal(t, http.StatusOK, w.Code)

		var rows []model.AxisData
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, 10.0, rows[0].ActualPosition)
	})

	t.Run("empty window is a 404", func(t *testing.T) {
		w := doGET(r, "/api/machines/999/axis_data")
		require.Equal(t, http.StatusNotFound, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "No data found for the given parameters", body["detail"])
	})

	t.Run("invalid machine id is a 400", func(t *testing.T) {
		w := doGET(r, "/api/machines/not-a-number/axis_data")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid minutes is a 400", func(t *testing.T) {
		w := doGET(r, "/api/machines/1/axis_data?minutes=0")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMachinesResponseIsCached(t *testing.T) {
	r, appStore := newTestRouter(t, "api_cache")

	ctx := context.Background()
	require.NoError(t, appStore.UpsertMachine(ctx, 1, "1", 24))

	first := doGET(r, "/api/machines")
	require.Equal(t, http.StatusOK, first.Code)

	// A row added after the first request must not show up while the
	// cached response is still fresh.
	require.NoError(t, appStore.UpsertMachine(ctx, 2, "2", 24))

	second := doGET(r, "/api/machines")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}
