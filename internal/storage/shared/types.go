package shared

import (
	"errors"
	"fmt"
)

// DbType selects a storage provider implementation.
type DbType string

const (
	DbTypeMemory   DbType = "memory"
	DbTypePostgres DbType = "postgres"
	DbTypeGorm     DbType = "gorm"
)

func (d DbType) String() string {
	return string(d)
}

func (d DbType) IsValid() bool {
	switch d {
	case DbTypeMemory, DbTypePostgres, DbTypeGorm:
		return true
	}
	return false
}

// DbProviderConfig is the JSON document that selects and configures a provider,
// e.g. {"db_type": "postgres", "extra_details": {"conn_str": "..."}}.
type DbProviderConfig struct {
	DbType       DbType                 `json:"db_type"`
	ExtraDetails map[string]interface{} `json:"extra_details"`
}

// StringDetail reads a string from ExtraDetails.
func (c DbProviderConfig) StringDetail(key string) (string, error) {
	raw, ok := c.ExtraDetails[key]
	if !ok {
		return "", fmt.Errorf("%s is required for %s provider", key, c.DbType)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s must be a non-empty string for %s provider", key, c.DbType)
	}
	return s, nil
}

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate key")
