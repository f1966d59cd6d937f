package service

import (
	"Lumen/internal/model"
	"Lumen/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrLoginTaken логин уже занят.
	ErrLoginTaken = errors.New("login already taken")
	// ErrInvalidCredentials неверная пара логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput пустой логин или пароль.
	ErrInvalidInput = errors.New("username and password are required")
	// ErrUserNotFound пользователь из токена больше не существует.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidAmount списание должно быть положительным.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrQuotaExhausted квоты на текущий период не хватает.
	ErrQuotaExhausted = errors.New("quota exhausted")
)

// QuotaPolicy задаёт размер квоты и длину периода её сброса.
type QuotaPolicy struct {
	Limit    int
	ProLimit int
	Period   time.Duration
}

// DefaultQuotaPolicy: 20 единиц в неделю, для pro-аккаунтов 200.
var DefaultQuotaPolicy = QuotaPolicy{Limit: 20, ProLimit: 200, Period: 7 * 24 * time.Hour}

// Profile: то, что клиент получает в ответ на /api/auth/me.
type Profile struct {
	Username       string `json:"username"`
	IsPro          bool   `json:"is_pro"`
	QuotaRemaining int    `json:"quota_remaining"`
	QuotaLimit     int    `json:"quota_limit"`
}

// UserService бизнес-логика регистрации, входа и профиля.
type UserService struct {
	repo   repo.UserRepository
	policy QuotaPolicy
	now    func() time.Time
}

func NewUserService(r repo.UserRepository) *UserService {
	return &UserService{repo: r, policy: DefaultQuotaPolicy, now: time.Now}
}

// WithQuotaPolicy заменяет политику квот; нулевые поля остаются по умолчанию.
func (s *UserService) WithQuotaPolicy(p QuotaPolicy) *UserService {
	if p.Limit > 0 {
		s.policy.Limit = p.Limit
	}
	if p.ProLimit > 0 {
		s.policy.ProLimit = p.ProLimit
	}
	if p.Period > 0 {
		s.policy.Period = p.Period
	}
	return s
}

// Register создаёт пользователя с bcrypt-хешем пароля.
func (s *UserService) Register(ctx context.Context, login, password string) (*model.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidInput
	}
	existing, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrLoginTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Username:     login,
		Password:     string(hash),
		QuotaLimit:   s.policy.Limit,
		QuotaResetAt: s.now().UTC(),
	}
	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// Login проверяет пароль. Неизвестный логин и неверный пароль неразличимы для вызывающего.
func (s *UserService) Login(ctx context.Context, login, password string) (*model.User, error) {
	user, err := s.repo.GetUserByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Profile возвращает профиль с актуальной квотой. Если период квоты истёк,
// израсходованная часть обнуляется до формирования ответа.
func (s *UserService) Profile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

// ConsumeQuota списывает n единиц квоты и возвращает профиль после списания.
func (s *UserService) ConsumeQuota(ctx context.Context, userID int64, n int) (*Profile, error) {
	if n <= 0 {
		return nil, ErrInvalidAmount
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.repo.ConsumeQuota(ctx, user.ID, n, user.QuotaLimit)
	switch {
	case errors.Is(err, repo.ErrQuotaExhausted):
		return nil, ErrQuotaExhausted
	case repo.IsNotFound(err):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("consume quota: %w", err)
	}
	user.QuotaUsed += n
	return toProfile(user), nil
}

// SetStatus переводит пользователя на pro или обратно; лимит берётся из политики.
func (s *UserService) SetStatus(ctx context.Context, userID int64, isPro bool) (*Profile, error) {
	limit := s.policy.Limit
	if isPro {
		limit = s.policy.ProLimit
	}
	if err := s.repo.SetStatus(ctx, userID, isPro, limit); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("set status: %w", err)
	}
	return s.Profile(ctx, userID)
}

// loadUser читает пользователя, сбрасывает квоту по истечении периода
// и поднимает лимит pro-аккаунта до ProLimit.
func (s *UserService) loadUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := s.now().UTC()
	if now.Sub(user.QuotaResetAt) > s.policy.Period {
		if err := s.repo.ResetQuota(ctx, user.ID, now); err != nil {
			return nil, fmt.Errorf("reset quota: %w", err)
		}
		user.QuotaUsed = 0
		user.QuotaResetAt = now
	}

	if user.IsPro && user.QuotaLimit < s.policy.ProLimit {
		user.QuotaLimit = s.policy.ProLimit
	}
	return user, nil
}

func toProfile(u *model.User) *Profile {
	return &Profile{
		Username:       u.Username,
		IsPro:          u.IsPro,
		QuotaRemaining: u.QuotaRemaining(),
		QuotaLimit:     u.QuotaLimit,
	}
}
