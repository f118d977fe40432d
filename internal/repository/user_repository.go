// Package repository 是 users、owners 两张表的 GORM 访问层。
package repository

import (
	"errors"

	"freeark_web/internal/model"

	"gorm.io/gorm"
)

var (
	errNilUser   = errors.New("user is nil")
	errMissingID = errors.New("user id is required")
)

// defaultPageSize 在调用方传入非法 limit 时使用。
const defaultPageSize = 20

// UserRepository 是后台登录账号的存取。
// 查不到记录时统一返回 gorm.ErrRecordNotFound，由 service 层翻译。
type UserRepository interface {
	Create(user *model.User) error
	FindByUsername(username string) (*model.User, error)
	FindByID(userID uint) (*model.User, error)
	// Update 只写 role、department、position。
	Update(user *model.User) error
	UpdatePassword(userID uint, hashedPassword string) error
	Delete(userID uint) error
	FindWithPagination(offset, limit int) ([]model.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// affectedOne 把“没有行被影响”视为记录不存在。
func affectedOne(tx *gorm.DB) error {
	switch {
	case tx.Error != nil:
		return tx.Error
	case tx.RowsAffected == 0:
		return gorm.ErrRecordNotFound
	default:
		return nil
	}
}

func (r *userRepository) Create(user *model.User) error {
	if user == nil {
		return errNilUser
	}
	return r.db.Create(user).Error
}

func (r *userRepository) first(query *gorm.DB) (*model.User, error) {
	user := new(model.User)
	if err := query.First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	return r.first(r.db.Where("username = ?", username))
}

func (r *userRepository) FindByID(userID uint) (*model.User, error) {
	return r.first(r.db.Where("id = ?", userID))
}

// Update 用 Select 限定列，零值的 department 也会被写入。
func (r *userRepository) Update(user *model.User) error {
	switch {
	case user == nil:
		return errNilUser
	case user.ID == 0:
		return errMissingID
	}
	return affectedOne(r.byID(user.ID).Select("role", "department", "position").Updates(user))
}

func (r *userRepository) UpdatePassword(userID uint, hashedPassword string) error {
	if userID == 0 {
		return errMissingID
	}
	return affectedOne(r.byID(userID).Update("password", hashedPassword))
}

func (r *userRepository) Delete(userID uint) error {
	if userID == 0 {
		return errMissingID
	}
	return affectedOne(r.db.Where("id = ?", userID).Delete(&model.User{}))
}

func (r *userRepository) byID(userID uint) *gorm.DB {
	return r.db.Model(&model.User{}).Where("id = ?", userID)
}

// FindWithPagination 按 id 升序分页，total 为 0 时不再查列表。
func (r *userRepository) FindWithPagination(offset, limit int) ([]model.User, int64, error) {
	offset = max(offset, 0)
	if limit <= 0 {
		limit = defaultPageSize
	}

	var total int64
	if err := r.db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	users := make([]model.User, 0)
	if total == 0 {
		return users, 0, nil
	}
	if err := r.db.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
