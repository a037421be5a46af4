package storage

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/soundprediction/hskg/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailable(t *testing.T) {
	assert.Subset(t, Available(), []StorageType{
		BadgerStorage, MemoryStorage, Neo4jStorage, PostgresStorage, SQLiteStorage,
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr error
	}{
		{name: "default is memory", cfg: Config{}, want: &MemoryBackend{}},
		{name: "memory", cfg: Config{Type: MemoryStorage}, want: &MemoryBackend{}},
		{name: "sqlite in memory", cfg: Config{Type: SQLiteStorage}, want: &SQLBackend{}},
		{name: "badger in memory", cfg: Config{Type: BadgerStorage}, want: &BadgerBackend{}},
		{name: "unknown tag", cfg: Config{Type: "cassandra"}, wantErr: types.ErrUnsupportedStorageType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := New(ctx, tt.cfg, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, backend)
				return
			}
			require.NoError(t, err)
			defer backend.Close()
			assert.IsType(t, tt.want, backend)
		})
	}
}

func TestNewRequiresConnectionSettings(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, Config{Type: PostgresStorage}, nil)
	assert.ErrorContains(t, err, "connection string is required")

	_, err = New(ctx, Config{Type: Neo4jStorage}, nil)
	assert.ErrorContains(t, err, "neo4j uri is required")
}

func TestRegister(t *testing.T) {
	const tag StorageType = "test-only"
	var gotLogger *slog.Logger
	Register(tag, func(_ context.Context, _ Config, logger *slog.Logger) (Backend, error) {
		gotLogger = logger
		return NewMemoryBackend(logger), nil
	})
	t.Cleanup(func() {
		registryMu.Lock()
		delete(registry, tag)
		registryMu.Unlock()
	})

	assert.Contains(t, Available(), tag)
	backend, err := New(context.Background(), Config{Type: tag}, nil)
	require.NoError(t, err)
	assert.NotNil(t, backend)
	assert.NotNil(t, gotLogger)
}

func TestDollarPlaceholders(t *testing.T) {
	assert.Equal(t,
		"SELECT * FROM nodes WHERE graph_id = $1 AND id = $2",
		dollarPlaceholders("SELECT * FROM nodes WHERE graph_id = ? AND id = ?"))
	assert.Equal(t, "DELETE FROM graphs", dollarPlaceholders("DELETE FROM graphs"))
}

func TestSQLTimeScan(t *testing.T) {
	want := time.Date(2026, 5, 4, 3, 2, 1, 123456789, time.UTC)

	tests := []struct {
		name string
		src  any
	}{
		{name: "native", src: want.In(time.FixedZone("X", 3600))},
		{name: "fixed width text", src: want.Format(sqliteTimeLayout)},
		{name: "rfc3339 bytes", src: []byte(want.Format(time.RFC3339Nano))},
		{name: "unix nanos", src: want.UnixNano()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sqlTime
			require.NoError(t, got.Scan(tt.src))
			assert.True(t, want.Equal(got.t), "got %v", got.t)
		})
	}

	var bad sqlTime
	assert.Error(t, bad.Scan("yesterday"))
	assert.Error(t, bad.Scan(3.5))
}
