package backends

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/grocer/internal/config"
	"github.com/idilsaglam/grocer/internal/kv/filekv"
	"github.com/idilsaglam/grocer/internal/kv/memory"
	"github.com/idilsaglam/grocer/internal/kv/sqlitekv"
)

func TestOpen_LocalBackends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	env := map[string]string{"XDG_CONFIG_HOME": t.TempDir()}

	st, closeFn, err := Open(ctx, config.Config{Backend: config.BackendMemory}, env)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, st)
	require.NoError(t, closeFn())

	st, closeFn, err = Open(ctx, config.Config{Backend: config.BackendFile, DataDir: dir}, env)
	require.NoError(t, err)
	assert.IsType(t, &filekv.Store{}, st)
	require.NoError(t, closeFn())

	st, closeFn, err = Open(ctx, config.Config{Backend: config.BackendSQLite, DataDir: dir}, env)
	require.NoError(t, err)
	assert.IsType(t, &sqlitekv.Store{}, st)
	require.NoError(t, st.Set(ctx, "k", []byte("v")))
	require.NoError(t, closeFn())
	_, err = os.Stat(filepath.Join(dir, "grocer.db"))
	require.NoError(t, err)
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	env := map[string]string{"XDG_CONFIG_HOME": t.TempDir()}
	_, closeFn, err := Open(context.Background(), config.Config{Backend: "redis"}, env)
	require.Error(t, err)
	require.NotNil(t, closeFn)

	_, _, err = Open(context.Background(), config.Config{Backend: config.BackendS3}, env)
	require.Error(t, err, "bucket is required")
}
