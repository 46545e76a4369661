package storage

import "github.com/shaibs3/studyhub/internal/storage/shared"

// Re-export shared types for convenience
type DbType = shared.DbType
type DbProviderConfig = shared.DbProviderConfig

const (
	DbTypeMemory   = shared.DbTypeMemory
	DbTypePostgres = shared.DbTypePostgres
	DbTypeGorm     = shared.DbTypeGorm
)

var ErrDuplicate = shared.ErrDuplicate
