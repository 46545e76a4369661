// Package gormstore implements the storage provider on gorm, with postgres,
// mysql and sqlite dialects.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shaibs3/studyhub/internal/db"
	"github.com/shaibs3/studyhub/internal/db_model"
	"github.com/shaibs3/studyhub/internal/storage/shared"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"
)

// Provider stores everything through a gorm connection.
type Provider struct {
	gormDB *gorm.DB
	logger *zap.Logger
}

// NewProvider opens the configured dialect and migrates the schema. The
// config's extra_details carry "dialect", "dsn" and optionally "log_level".
func NewProvider(config shared.DbProviderConfig, logger *zap.Logger) (*Provider, error) {
	gLogger := logger.Named("gorm_provider")

	dialect, err := config.StringDetail("dialect")
	if err != nil {
		return nil, err
	}
	dsn, err := config.StringDetail("dsn")
	if err != nil {
		return nil, err
	}
	levelValue, _ := config.ExtraDetails["log_level"].(string)

	gormLogger, levelErr := newGormLogger(logger, levelValue)
	if levelErr != nil {
		gLogger.Warn("invalid gorm log level, using default", zap.String("value", levelValue), zap.Error(levelErr))
	}

	var dialector gorm.Dialector
	switch strings.ToLower(dialect) {
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	case DialectMySQL:
		dialector = mysql.Open(mysqlDSN(dsn))
	case DialectSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm dialect: %s", dialect)
	}

	gLogger.Info("initializing gorm provider", zap.String("dialect", dialect))
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	if strings.EqualFold(dialect, DialectSQLite) {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access underlying DB: %w", err)
		}
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := gormDB.AutoMigrate(&GormUser{}, &GormResource{}, &GormTask{}, &GormViewedMark{}, &GormPinnedMark{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	gLogger.Info("gorm provider initialized successfully")
	return &Provider{gormDB: gormDB, logger: gLogger}, nil
}

// mysqlDSN makes RowsAffected count matched rows and lets DATE columns scan
// into time.Time.
func mysqlDSN(dsn string) string {
	params := []string{"clientFoundRows=true", "parseTime=true"}
	for _, p := range params {
		key := p[:strings.Index(p, "=")+1]
		if strings.Contains(dsn, key) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + p
		} else {
			dsn += "?" + p
		}
	}
	return dsn
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", shared.ErrDuplicate, err)
	}
	return err
}

func (p *Provider) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	user := GormUser{Username: username, PasswordHash: passwordHash}
	if err := p.gormDB.WithContext(ctx).Create(&user).Error; err != nil {
		return 0, translateError(err)
	}
	return user.ID, nil
}

func (p *Provider) GetUserByUsername(ctx context.Context, username string) (*db_model.User, error) {
	var user GormUser
	err := p.gormDB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u := user.toModel()
	return &u, nil
}

func (p *Provider) CreateResource(ctx context.Context, r db_model.Resource) (int64, error) {
	rec := GormResource{
		Title:       r.Title,
		URL:         r.URL,
		Category:    r.Category,
		Description: r.Description,
		UserID:      r.UserID,
	}
	if err := p.gormDB.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, translateError(err)
	}
	return rec.ID, nil
}

func (p *Provider) ListResources(ctx context.Context) ([]db_model.Resource, error) {
	var recs []GormResource
	if err := p.gormDB.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]db_model.Resource, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (p *Provider) MarkViewed(ctx context.Context, userID, resourceID int64) (bool, error) {
	return p.insertMark(ctx, &GormViewedMark{UserID: userID, ResourceID: resourceID})
}

func (p *Provider) ListViewed(ctx context.Context, userID int64) ([]int64, error) {
	return p.listMarks(ctx, &GormViewedMark{}, userID)
}

func (p *Provider) Pin(ctx context.Context, userID, resourceID int64) (bool, error) {
	return p.insertMark(ctx, &GormPinnedMark{UserID: userID, ResourceID: resourceID})
}

func (p *Provider) Unpin(ctx context.Context, userID, resourceID int64) (bool, error) {
	res := p.gormDB.WithContext(ctx).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		Delete(&GormPinnedMark{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (p *Provider) ListPinned(ctx context.Context, userID int64) ([]int64, error) {
	return p.listMarks(ctx, &GormPinnedMark{}, userID)
}

func (p *Provider) insertMark(ctx context.Context, mark interface{}) (bool, error) {
	res := p.gormDB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(mark)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (p *Provider) listMarks(ctx context.Context, model interface{}, userID int64) ([]int64, error) {
	ids := []int64{}
	err := p.gormDB.WithContext(ctx).Model(model).
		Where("user_id = ?", userID).
		Order("resource_id ASC").
		Pluck("resource_id", &ids).Error
	return ids, err
}

func (p *Provider) CreateTask(ctx context.Context, t db_model.Task) (int64, error) {
	rec := taskFromModel(t)
	if err := p.gormDB.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, translateError(err)
	}
	return rec.ID, nil
}

func (p *Provider) ListTasks(ctx context.Context, userID int64) ([]db_model.Task, error) {
	var recs []GormTask
	err := p.gormDB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("due_date IS NULL").
		Order("due_date ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]db_model.Task, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (p *Provider) UpdateTask(ctx context.Context, id, userID int64, update *db.UpdateBuilder) (int64, error) {
	if update.Empty() {
		return 0, db.ErrNoAssignments
	}
	res := p.gormDB.WithContext(ctx).Model(&GormTask{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(update.Columns())
	return res.RowsAffected, res.Error
}

func (p *Provider) DeleteTask(ctx context.Context, id, userID int64) (int64, error) {
	res := p.gormDB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&GormTask{})
	return res.RowsAffected, res.Error
}

func (p *Provider) TaskExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := p.gormDB.WithContext(ctx).Model(&GormTask{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (p *Provider) Ping(ctx context.Context) error {
	sqlDB, err := p.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (p *Provider) Close() error {
	sqlDB, err := p.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
