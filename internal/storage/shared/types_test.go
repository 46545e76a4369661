package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDbType_IsValid(t *testing.T) {
	require.True(t, DbTypeMemory.IsValid())
	require.True(t, DbTypePostgres.IsValid())
	require.True(t, DbTypeGorm.IsValid())
	require.False(t, DbType("csv").IsValid())
}

func TestDbProviderConfig_StringDetail(t *testing.T) {
	cfg := DbProviderConfig{
		DbType:       DbTypePostgres,
		ExtraDetails: map[string]interface{}{"conn_str": "postgres://x", "port": 5432.0, "empty": ""},
	}

	v, err := cfg.StringDetail("conn_str")
	require.NoError(t, err)
	require.Equal(t, "postgres://x", v)

	_, err = cfg.StringDetail("missing")
	require.EqualError(t, err, "missing is required for postgres provider")

	_, err = cfg.StringDetail("port")
	require.Error(t, err)

	_, err = cfg.StringDetail("empty")
	require.Error(t, err)
}
