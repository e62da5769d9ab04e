package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"it_store/internal/model"

	"gorm.io/gorm"
)

// CreateEmployee 先查重再插入；并发注册导致的唯一约束冲突同样映射为 taken 错误。
func (s *Store) CreateEmployee(ctx context.Context, e *model.Employee) error {
	db := s.db.WithContext(ctx)

	taken, err := exists(db, "username = ?", e.Username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		return ErrUsernameTaken
	}
	taken, err = exists(db, "email = ?", e.Email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}

	if err := db.Create(e).Error; err != nil {
		if errorsLikeUnique(err) {
			if strings.Contains(err.Error(), "email") {
				return ErrEmailTaken
			}
			return ErrUsernameTaken
		}
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

func exists(db *gorm.DB, query string, arg any) (bool, error) {
	var n int64
	if err := db.Model(&model.Employee{}).Where(query, arg).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// EmployeeByUsername 按用户名查员工，不存在返回 ErrNotFound。
func (s *Store) EmployeeByUsername(ctx context.Context, username string) (*model.Employee, error) {
	var e model.Employee
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return &e, nil
}

// TouchLastLogin 记录最近一次成功登录时间。
func (s *Store) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.Employee{}).Where("id = ?", id).Update("last_login", at)
	if res.Error != nil {
		return fmt.Errorf("update last_login: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
