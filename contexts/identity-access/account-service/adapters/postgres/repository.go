package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const singleRootIndex = "users_single_root_idx"

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the users table and its indexes.
func (r *Repository) Migrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&userModel{}); err != nil {
		return r.logError("account_repo_migrate_failed", err)
	}
	// At most one root account may exist.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS " + singleRootIndex + " ON users (tier) WHERE tier = 'root'",
	).Error; err != nil {
		return r.logError("account_repo_migrate_root_index_failed", err)
	}
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, user entities.User) error {
	row := userModelFromEntity(user)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return r.logError("account_repo_create_user_failed", err,
			"user_id", row.ID,
			"username", row.Username,
		)
	}
	return nil
}

func (r *Repository) UpdateUser(ctx context.Context, user entities.User) error {
	row := userModelFromEntity(user)
	result := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"username":      row.Username,
			"first_name":    row.FirstName,
			"last_name":     row.LastName,
			"contact":       row.Contact,
			"password_hash": row.PasswordHash,
			"tier":          row.Tier,
			"updated_at":    row.UpdatedAt,
		})
	if result.Error != nil {
		if mapped := mapUniqueViolation(result.Error); mapped != nil {
			return mapped
		}
		return r.logError("account_repo_update_user_failed", result.Error, "user_id", row.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) DeleteUser(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(userID)).
		Delete(&userModel{})
	if result.Error != nil {
		return r.logError("account_repo_delete_user_failed", result.Error, "user_id", strings.TrimSpace(userID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID string) (entities.User, error) {
	return r.first(ctx, "account_repo_get_user_by_id_failed", "id = ?", strings.TrimSpace(userID))
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (entities.User, error) {
	return r.first(ctx, "account_repo_get_user_by_username_failed", "username = ?", strings.TrimSpace(username))
}

func (r *Repository) GetRootUser(ctx context.Context) (entities.User, bool, error) {
	user, err := r.first(ctx, "account_repo_get_root_failed", "tier = ?", string(identityv1.TierRoot))
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return entities.User{}, false, nil
		}
		return entities.User{}, false, err
	}
	return user, true, nil
}

func (r *Repository) ListUsers(ctx context.Context, offset int, limit int) ([]entities.User, error) {
	var rows []userModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("username ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("account_repo_list_users_failed", err,
			"offset", offset,
			"limit", limit,
		)
	}
	items := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) first(ctx context.Context, event string, query string, arg string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError(event, err, "lookup", arg)
	}
	return row.toEntity(), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/account-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("account repository operation failed", fields...)
	return err
}

type userModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	Contact      string    `gorm:"column:contact"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Tier         string    `gorm:"column:tier;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string {
	return "users"
}

func userModelFromEntity(user entities.User) userModel {
	row := userModel{
		ID:           strings.TrimSpace(user.UserID),
		Username:     strings.TrimSpace(user.Username),
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Contact:      user.Contact,
		PasswordHash: user.PasswordHash,
		Tier:         string(user.Tier),
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		UserID:       m.ID,
		Username:     m.Username,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Contact:      m.Contact,
		PasswordHash: m.PasswordHash,
		Tier:         identityv1.PermissionTier(m.Tier),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if pgErr.ConstraintName == singleRootIndex {
		return domainerrors.ErrRootExists
	}
	return domainerrors.ErrUsernameTaken
}

var _ ports.UserRepository = (*Repository)(nil)
