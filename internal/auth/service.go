// Package auth はメール・パスワード認証、セッション管理、パスワードリセットを提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/bookstore/internal/model"
	"github.com/hitoshi/bookstore/internal/repository"
	"github.com/hitoshi/bookstore/internal/role"
	"github.com/hitoshi/bookstore/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// ErrSessionNotFound はセッションが存在しないか期限切れの場合に返される。
var ErrSessionNotFound = errors.New("session not found or expired")

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int    // セッション有効期間（秒）
	BaseURL       string // リセットリンクの組み立てに使う
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      *PasswordHasher
	tokens      *ResetTokenIssuer
	notifier    ResetNotifier
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher *PasswordHasher,
	tokens *ResetTokenIssuer,
	notifier ResetNotifier,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokens:      tokens,
		notifier:    notifier,
		config:      config,
	}
}

// Register は会員登録を行い、ログイン済みのセッションを発行する。
// 新規ユーザーのロールは常にuser。
func (s *Service) Register(ctx context.Context, in validation.RegisterInput) (*model.User, *model.Session, error) {
	if errs := validation.ValidateRegister(in); !errs.Valid() {
		return nil, nil, model.NewValidationError(errs)
	}

	hash, err := s.hashNewPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        strings.TrimSpace(in.Email),
		Name:         strings.TrimSpace(in.Name),
		Role:         string(role.User),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, nil, model.NewEmailTakenError()
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("new user registered", slog.String("user_id", user.ID))
	return user, session, nil
}

// Login はメールアドレスとパスワードで認証し、セッションを発行する。
// メールアドレスの存在有無はエラーで区別しない。
func (s *Service) Login(ctx context.Context, in validation.LoginInput) (*model.User, *model.Session, error) {
	if errs := validation.ValidateLogin(in); !errs.Valid() {
		return nil, nil, model.NewValidationError(errs)
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	ok, err := s.hasher.Compare(user.PasswordHash, in.Password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		slog.Warn("login failed", slog.String("user_id", user.ID))
		return nil, nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return user, session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
// セッションまたはユーザーが存在しない場合はErrSessionNotFoundを返す。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// RequestPasswordReset はリセットトークンを発行し、通知する。
// 未登録のメールアドレスでも成功を返す。
func (s *Service) RequestPasswordReset(ctx context.Context, in validation.ForgotPasswordInput) error {
	if errs := validation.ValidateForgotPassword(in); !errs.Valid() {
		return model.NewValidationError(errs)
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		slog.Info("password reset requested for unknown email")
		return nil
	}

	token, err := s.tokens.Issue(user.ID, user.PasswordHash)
	if err != nil {
		return err
	}

	if err := s.notifier.NotifyPasswordReset(ctx, user, buildResetURL(s.config.BaseURL, token)); err != nil {
		return fmt.Errorf("failed to notify password reset: %w", err)
	}
	return nil
}

// ResetPassword はリセットトークンを検証してパスワードを再設定する。
// 成功時はそのユーザーの全セッションを失効させる。
// トークンは発行時のパスワードに紐づくため、1回使うと無効になる。
func (s *Service) ResetPassword(ctx context.Context, in validation.ResetPasswordInput) error {
	if errs := validation.ValidateResetPassword(in); !errs.Valid() {
		return model.NewValidationError(errs)
	}

	userID, fingerprint, err := s.tokens.Parse(in.ResetPasswordToken)
	if err != nil {
		return model.NewInvalidResetTokenError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !MatchesPassword(fingerprint, user.PasswordHash) {
		return model.NewInvalidResetTokenError()
	}

	if err := s.setPassword(ctx, user.ID, in.Password); err != nil {
		return err
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, user.ID, ""); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	slog.Info("password reset completed", slog.String("user_id", user.ID))
	return nil
}

// ChangePassword はログイン中ユーザーのパスワードを変更する。
// 現在のセッション以外のセッションは失効させる。
func (s *Service) ChangePassword(ctx context.Context, userID, currentSessionID string, in validation.ChangePasswordInput) error {
	if errs := validation.ValidateChangePassword(in); !errs.Valid() {
		return model.NewValidationError(errs)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	ok, err := s.hasher.Compare(user.PasswordHash, in.CurrentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return model.NewWrongCurrentPasswordError()
	}

	if err := s.setPassword(ctx, user.ID, in.Password); err != nil {
		return err
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, user.ID, currentSessionID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	slog.Info("password changed", slog.String("user_id", user.ID))
	return nil
}

// hashNewPassword はbcryptが扱えない長さのパスワードをpasswordフィールドの検証エラーにする。
// 検証ルールは文字数で数えるため、マルチバイト文字を含むと72バイトを超えうる。
func (s *Service) hashNewPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", model.NewValidationError(map[string]string{
			validation.FieldPassword: validation.MsgPasswordTooLong,
		})
	}
	return hash, err
}

func (s *Service) setPassword(ctx context.Context, userID, password string) error {
	hash, err := s.hashNewPassword(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
