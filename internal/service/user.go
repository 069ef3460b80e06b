package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"food-ordering-api/internal/auth"
	"food-ordering-api/internal/client"
	"food-ordering-api/internal/dto"
	"food-ordering-api/internal/model"
	"food-ordering-api/internal/repository"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	bcryptCost      = 10
	pinLength       = 6
	msgUserNotFound = "user doesn't exist"
	msgInvalidPin   = "invalid PIN"
	msgPinExpired   = "PIN expired"
)

type UserService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.MessageResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	VerifyEmail(ctx context.Context, req *dto.PinRequest) (*dto.AuthResponse, error)
	ResendVerification(ctx context.Context, email string) (*dto.MessageResponse, error)
	ForgotPassword(ctx context.Context, email string) (*dto.MessageResponse, error)
	VerifyResetPin(ctx context.Context, req *dto.PinRequest) (*dto.MessageResponse, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*dto.MessageResponse, error)
}

type userServiceImpl struct {
	userRepo  repository.UserRepository
	tokens    auth.TokenManager
	mailer    client.Mailer
	verifyTTL time.Duration
	resetTTL  time.Duration
	now       func() time.Time
	newPin    func() (string, error)
}

func NewUserService(
	userRepo repository.UserRepository,
	tokens auth.TokenManager,
	mailer client.Mailer,
	verifyTTL time.Duration,
	resetTTL time.Duration,
) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		tokens:    tokens,
		mailer:    mailer,
		verifyTTL: verifyTTL,
		resetTTL:  resetTTL,
		now:       time.Now,
		newPin:    generatePin,
	}
}

func (s *userServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.MessageResponse, error) {
	email := normalizeEmail(req.Email)

	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, conflictError("user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	pin, err := s.newPin()
	if err != nil {
		return nil, fmt.Errorf("generate pin: %w", err)
	}
	expiresAt := s.now().Add(s.verifyTTL)

	user := &model.User{
		ID:                       uuid.NewString(),
		Username:                 strings.TrimSpace(req.Username),
		Email:                    email,
		Password:                 string(hash),
		VerificationPin:          pin,
		VerificationPinExpiresAt: &expiresAt,
	}
	err = s.userRepo.Create(ctx, user)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent registration won the unique email index
		return nil, conflictError("user already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("store user in db: %w", err)
	}

	if err := s.sendPin(ctx, email, "Verify your email", "Your verification PIN is", pin, s.verifyTTL); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to send verification pin")
	}

	return &dto.MessageResponse{
		Success: true,
		Message: "Registration successful, check your email for the verification PIN",
		Email:   email,
	}, nil
}

func (s *userServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.findUser(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, unauthorizedError("Invalid credential")
	}
	if !user.IsVerified {
		return nil, forbiddenError("please verify your email first")
	}

	token, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Success: true,
		Token:   token,
		User:    user,
	}, nil
}

func (s *userServiceImpl) VerifyEmail(ctx context.Context, req *dto.PinRequest) (*dto.AuthResponse, error) {
	user, err := s.findUser(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, validationError("email already verified")
	}
	if err := s.checkPin(user.VerificationPin, user.VerificationPinExpiresAt, req.Pin); err != nil {
		return nil, err
	}

	err = s.userRepo.Update(ctx, user.ID, map[string]interface{}{
		"is_verified":                 true,
		"verification_pin":            "",
		"verification_pin_expires_at": nil,
		"updated_at":                  s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("mark user verified: %w", err)
	}
	user.IsVerified = true

	token, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Success: true,
		Message: "Email verified successfully",
		Token:   token,
		User:    user,
	}, nil
}

func (s *userServiceImpl) ResendVerification(ctx context.Context, email string) (*dto.MessageResponse, error) {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, validationError("email already verified")
	}

	pin, err := s.storePin(ctx, user.ID, "verification_pin", "verification_pin_expires_at", s.verifyTTL)
	if err != nil {
		return nil, err
	}

	if err := s.sendPin(ctx, user.Email, "Verify your email", "Your verification PIN is", pin, s.verifyTTL); err != nil {
		return nil, fmt.Errorf("send verification pin: %w", err)
	}

	return &dto.MessageResponse{
		Success: true,
		Message: "A new verification PIN has been sent",
		Email:   user.Email,
	}, nil
}

func (s *userServiceImpl) ForgotPassword(ctx context.Context, email string) (*dto.MessageResponse, error) {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}

	pin, err := s.storePin(ctx, user.ID, "reset_pin", "reset_pin_expires_at", s.resetTTL)
	if err != nil {
		return nil, err
	}

	if err := s.sendPin(ctx, user.Email, "Reset your password", "Your password reset PIN is", pin, s.resetTTL); err != nil {
		return nil, fmt.Errorf("send reset pin: %w", err)
	}

	return &dto.MessageResponse{
		Success: true,
		Message: "A password reset PIN has been sent",
		Email:   user.Email,
	}, nil
}

// VerifyResetPin lets the client check the PIN before asking for a new password.
// The PIN stays valid.
func (s *userServiceImpl) VerifyResetPin(ctx context.Context, req *dto.PinRequest) (*dto.MessageResponse, error) {
	user, err := s.findUser(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.checkPin(user.ResetPin, user.ResetPinExpiresAt, req.Pin); err != nil {
		return nil, err
	}

	return &dto.MessageResponse{
		Success: true,
		Message: "PIN verified",
		Email:   user.Email,
	}, nil
}

func (s *userServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*dto.MessageResponse, error) {
	user, err := s.findUser(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.checkPin(user.ResetPin, user.ResetPinExpiresAt, req.Pin); err != nil {
		return nil, err
	}
	if len(req.NewPassword) < 8 {
		return nil, validationError("please enter a strong password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err = s.userRepo.Update(ctx, user.ID, map[string]interface{}{
		"password":             string(hash),
		"reset_pin":            "",
		"reset_pin_expires_at": nil,
		"updated_at":           s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("store new password: %w", err)
	}

	return &dto.MessageResponse{
		Success: true,
		Message: "Password reset successfully",
		Email:   user.Email,
	}, nil
}

func (s *userServiceImpl) findUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError(msgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (s *userServiceImpl) checkPin(stored string, expiresAt *time.Time, supplied string) error {
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) != 1 {
		return validationError(msgInvalidPin)
	}
	if expiresAt == nil || !s.now().Before(*expiresAt) {
		return validationError(msgPinExpired)
	}
	return nil
}

func (s *userServiceImpl) storePin(ctx context.Context, userID, pinColumn, expiryColumn string, ttl time.Duration) (string, error) {
	pin, err := s.newPin()
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}

	now := s.now()
	err = s.userRepo.Update(ctx, userID, map[string]interface{}{
		pinColumn:    pin,
		expiryColumn: now.Add(ttl),
		"updated_at": now,
	})
	if err != nil {
		return "", fmt.Errorf("store pin: %w", err)
	}
	return pin, nil
}

func (s *userServiceImpl) sendPin(ctx context.Context, to, subject, intro, pin string, ttl time.Duration) error {
	return s.mailer.Send(ctx, &client.Mail{
		To:       to,
		Subject:  subject,
		TextBody: fmt.Sprintf("%s %s. It expires in %d minutes.", intro, pin, int(ttl.Minutes())),
		HTMLBody: fmt.Sprintf("<p>%s <strong>%s</strong>.</p><p>It expires in %d minutes.</p>", intro, pin, int(ttl.Minutes())),
	})
}

func generatePin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", pinLength, n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
