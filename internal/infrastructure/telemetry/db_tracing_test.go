package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedLabel struct {
	ID    uint   `gorm:"primaryKey"`
	Title string `gorm:"size:100"`
}

func setupTracedDB(t *testing.T, cfg DBTracingConfig) (*gorm.DB, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedLabel{}))

	require.NoError(t, NewDBTracingPlugin(cfg, nil).RegisterOtelGorm(db))
	return db, sr
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestNewDBTracingPlugin_FillsDefaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, nil)

	assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBSystem)
	assert.NotNil(t, p.logger)
}

func TestRegisterOtelGorm_Disabled(t *testing.T) {
	db, sr := setupTracedDB(t, DBTracingConfig{Enabled: false})

	require.NoError(t, db.Create(&tracedLabel{Title: "Title 1"}).Error)
	assert.Empty(t, sr.Ended())
}

func TestRegisterOtelGorm_RecordsSpans(t *testing.T) {
	db, sr := setupTracedDB(t, DBTracingConfig{Enabled: true, DBSystem: "sqlite"})

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&tracedLabel{Title: "Title 1"}).Error)

	var rows []tracedLabel
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	require.Len(t, rows, 1)

	spans := sr.Ended()
	require.GreaterOrEqual(t, len(spans), 2)

	var sawTable, sawRows bool
	for _, s := range spans {
		for _, a := range s.Attributes() {
			if a.Key == attribute.Key("db.sql.table") && a.Value.AsString() == "traced_labels" {
				sawTable = true
			}
			if a.Key == attribute.Key("db.rows_affected") {
				sawRows = true
			}
		}
	}
	assert.True(t, sawTable)
	assert.True(t, sawRows)
}

func TestRegisterOtelGorm_MarksSlowQueries(t *testing.T) {
	db, sr := setupTracedDB(t, DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond})

	var rows []tracedLabel
	require.NoError(t, db.WithContext(context.Background()).Raw("SELECT * FROM traced_labels").Scan(&rows).Error)

	var slow bool
	for _, s := range sr.Ended() {
		for _, e := range s.Events() {
			if e.Name == "slow_query_warning" {
				slow = true
			}
		}
	}
	assert.True(t, slow)
}
