package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
)

// Repository defines persistence operations for the users table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindSellerByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindAnyActiveSeller(ctx context.Context) (*models.User, error)
	FindAnySeller(ctx context.Context) (*models.User, error)
	FindAdmin(ctx context.Context) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	UpdateCreditBalance(ctx context.Context, id uuid.UUID, balanceCents int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a users repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindSellerByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, enums.UserRoleSeller).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindAnyActiveSeller(ctx context.Context) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", enums.UserRoleSeller, true).
		Order("created_at ASC").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindAnySeller(ctx context.Context) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", enums.UserRoleSeller).
		Order("created_at ASC").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindAdmin(ctx context.Context) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", enums.UserRoleAdmin).
		Order("created_at ASC").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *repository) UpdateCreditBalance(ctx context.Context, id uuid.UUID, balanceCents int) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("credit_balance_cents", balanceCents).Error
}
