package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"freeark_web/internal/model"
	"freeark_web/internal/repository"
	"freeark_web/pkg/hash"
	"freeark_web/pkg/log"
	"freeark_web/pkg/token"

	"gorm.io/gorm"
)

// TokenBlacklist 是登出令牌的存储，由 cache.TokenBlacklist 实现。
type TokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

// LoginResult 是登录成功后返回给客户端的内容。
type LoginResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *model.User `json:"user"`
}

type CreateUserInput struct {
	Username   string
	Password   string
	Role       string
	Department string
	Position   string
}

// UpdateUserInput 中为 nil 的字段保持不变。
type UpdateUserInput struct {
	Role       *string
	Department *string
	Position   *string
	Password   *string
}

type UserService interface {
	Login(username, password string) (*LoginResult, error)
	Logout(ctx context.Context, accessToken string) error
	GetProfile(username string) (*model.User, error)
	ListUsers(page, size int) ([]model.User, int64, error)
	GetUser(userID uint) (*model.User, error)
	CreateUser(in CreateUserInput) (*model.User, error)
	UpdateUser(userID uint, in UpdateUserInput) (*model.User, error)
	DeleteUser(actorID, userID uint) error
	// EnsureAdmin 在账号不存在时创建管理员，返回是否新建。
	EnsureAdmin(username, password string) (bool, error)
}

type userService struct {
	userRepo   repository.UserRepository
	JWTManager *token.JWTManager
	blacklist  TokenBlacklist
}

func NewUserService(userRepo repository.UserRepository, jwtManager *token.JWTManager, blacklist TokenBlacklist) UserService {
	return &userService{
		userRepo:   userRepo,
		JWTManager: jwtManager,
		blacklist:  blacklist,
	}
}

func (s *userService) Login(username, password string) (*LoginResult, error) {
	if s.JWTManager == nil {
		return nil, ErrInternal
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	// 1. 检查用户是否存在
	existingUser, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 用户不存在，返回统一的凭证错误，防止用户枚举
			return nil, ErrInvalidCredentials
		}
		log.Errorf("Login: failed to query user %q: %v", username, err)
		return nil, ErrInternal
	}
	if existingUser == nil {
		return nil, ErrInvalidCredentials
	}

	// 2. 检查密码是否正确
	if !hash.CheckPasswordHash(password, existingUser.Password) {
		return nil, ErrInvalidCredentials
	}
	s.upgradeHash(existingUser, password)

	// 3. 生成JWT令牌（使用数据库中的 Username，避免大小写/规范化不一致）
	accessToken, refreshToken, err := s.JWTManager.GenerateToken(existingUser.ID, existingUser.Username, existingUser.Role)
	if err != nil {
		log.Errorf("Login: failed to generate token for user %q: %v", existingUser.Username, err)
		return nil, ErrInternal
	}
	return &LoginResult{AccessToken: accessToken, RefreshToken: refreshToken, User: existingUser}, nil
}

// upgradeHash 旧哈希成本偏低时顺带重新哈希，失败不影响登录。
func (s *userService) upgradeHash(user *model.User, password string) {
	if !hash.NeedsRehash(user.Password) {
		return
	}
	hashed, err := hash.HashPassword(password)
	if err != nil {
		log.Warnf("Login: rehash password of %q: %v", user.Username, err)
		return
	}
	if err := s.userRepo.UpdatePassword(user.ID, hashed); err != nil {
		log.Warnf("Login: store rehashed password of %q: %v", user.Username, err)
		return
	}
	user.Password = hashed
}

// Logout 把 access token 写入黑名单，过期时间取令牌剩余有效期。
func (s *userService) Logout(ctx context.Context, accessToken string) error {
	if s.JWTManager == nil || s.blacklist == nil {
		return ErrInternal
	}
	claims, err := s.JWTManager.VerifyToken(accessToken)
	if err != nil {
		return ErrInvalidInput
	}
	if err := s.blacklist.Add(ctx, accessToken, token.RemainingTTL(claims, time.Now())); err != nil {
		log.Errorf("Logout: failed to blacklist token of %q: %v", claims.Username, err)
		return ErrInternal
	}
	return nil
}

func (s *userService) GetProfile(username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Errorf("GetProfile: failed to query user %q: %v", username, err)
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers 的 page 从 1 开始，size 超出 [1,100] 时按 20 处理。
func (s *userService) ListUsers(page, size int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	users, total, err := s.userRepo.FindWithPagination((page-1)*size, size)
	if err != nil {
		log.Errorf("ListUsers: %v", err)
		return nil, 0, ErrInternal
	}
	return users, total, nil
}

func (s *userService) GetUser(userID uint) (*model.User, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Errorf("GetUser: failed to query user %d: %v", userID, err)
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) CreateUser(in CreateUserInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, ErrInvalidInput
	}
	role, ok := normalizeRole(in.Role)
	if !ok {
		return nil, ErrInvalidInput
	}

	// 1. 检查用户是否存在
	existingUser, err := s.userRepo.FindByUsername(username)
	if err != nil {
		// 查无记录是正常分支，继续创建
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("CreateUser: failed to query user %q: %v", username, err)
			return nil, ErrInternal
		}
	} else if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	// 2. 密码进行哈希
	hashedPassword, err := hash.HashPassword(in.Password)
	if err != nil {
		// 密码过长等情况属于参数问题
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user := &model.User{
		Username:   username,
		Password:   hashedPassword,
		Role:       role,
		Department: strings.TrimSpace(in.Department),
		Position:   strings.TrimSpace(in.Position),
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		log.Errorf("CreateUser: failed to create user %q: %v", username, err)
		return nil, ErrInternal
	}
	return user, nil
}

func (s *userService) UpdateUser(userID uint, in UpdateUserInput) (*model.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if in.Role != nil {
		role, ok := normalizeRole(*in.Role)
		if !ok {
			return nil, ErrInvalidInput
		}
		user.Role = role
	}
	if in.Department != nil {
		user.Department = strings.TrimSpace(*in.Department)
	}
	if in.Position != nil {
		user.Position = strings.TrimSpace(*in.Position)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, s.translateWriteError("UpdateUser", userID, err)
	}

	if in.Password != nil {
		hashedPassword, err := hash.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := s.userRepo.UpdatePassword(userID, hashedPassword); err != nil {
			return nil, s.translateWriteError("UpdateUser", userID, err)
		}
		user.Password = hashedPassword
	}
	return user, nil
}

func (s *userService) DeleteUser(actorID, userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	if actorID == userID {
		return ErrCannotDeleteSelf
	}
	if err := s.userRepo.Delete(userID); err != nil {
		return s.translateWriteError("DeleteUser", userID, err)
	}
	return nil
}

func (s *userService) EnsureAdmin(username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, nil
	}
	existing, err := s.userRepo.FindByUsername(username)
	if err == nil && existing != nil {
		return false, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("query admin %q: %w", username, err)
	}

	if _, err := s.CreateUser(CreateUserInput{
		Username:   username,
		Password:   password,
		Role:       model.RoleAdmin,
		Department: "管理部",
		Position:   "系统管理员",
	}); err != nil {
		return false, fmt.Errorf("create admin %q: %w", username, err)
	}
	log.Infow("Admin account created", "username", username)
	return true, nil
}

func (s *userService) translateWriteError(op string, userID uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	log.Errorf("%s: failed to write user %d: %v", op, userID, err)
	return ErrInternal
}

// normalizeRole 空字符串视为普通用户，大小写不敏感。
func normalizeRole(role string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(role)) {
	case "", model.RoleUser:
		return model.RoleUser, true
	case model.RoleAdmin:
		return model.RoleAdmin, true
	default:
		return "", false
	}
}
