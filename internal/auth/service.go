package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"it_store/internal/model"
	"it_store/internal/store"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingField       = errors.New("required field is empty")
)

// EmployeeStore 是认证流程依赖的员工存取接口。
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, e *model.Employee) error
	EmployeeByUsername(ctx context.Context, username string) (*model.Employee, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

// RegisterInput 对应注册表单。
type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	Fullname        string
	Position        string
	Email           string
	Phone           string
}

type Service struct {
	employees EmployeeStore
	cost      int
	now       func() time.Time

	// dummyHash 用于用户名不存在时也做一次 bcrypt 比对，两种失败耗时接近。
	dummyHash string
}

// NewService 创建认证服务；cost <= 0 时使用 bcrypt.DefaultCost。
func NewService(employees EmployeeStore, cost int) *Service {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := HashPassword("dummy-Password-0", cost)
	return &Service{
		employees: employees,
		cost:      cost,
		now:       func() time.Time { return time.Now().UTC() },
		dummyHash: dummy,
	}
}

// Register 按顺序校验：必填 → 密码策略 → 两次密码一致 → 用户名/邮箱唯一。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.Employee, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Fullname == "" || in.Position == "" || in.Phone == "" {
		return nil, ErrMissingField
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	e := &model.Employee{
		Username:     in.Username,
		PasswordHash: hash,
		Fullname:     in.Fullname,
		Position:     in.Position,
		Email:        in.Email,
		Phone:        in.Phone,
	}
	if err := s.employees.CreateEmployee(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Authenticate 校验用户名密码，成功后刷新 last_login。
// 用户不存在与密码错误统一返回 ErrInvalidCredentials。
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.Employee, error) {
	e, err := s.employees.EmployeeByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			CheckPassword(s.dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(e.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	at := s.now()
	if err := s.employees.TouchLastLogin(ctx, e.ID, at); err != nil {
		return nil, fmt.Errorf("touch last login: %w", err)
	}
	e.LastLogin = &at
	return e, nil
}
