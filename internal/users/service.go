package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spicepalace/spicepalace-backend/pkg/auth"
	"github.com/spicepalace/spicepalace-backend/pkg/config"
	dbpkg "github.com/spicepalace/spicepalace-backend/pkg/db"
	"github.com/spicepalace/spicepalace-backend/pkg/db/models"
	"github.com/spicepalace/spicepalace-backend/pkg/enums"
	pkgerrors "github.com/spicepalace/spicepalace-backend/pkg/errors"
	"github.com/spicepalace/spicepalace-backend/pkg/logger"
	mailpkg "github.com/spicepalace/spicepalace-backend/pkg/mail"
	"github.com/spicepalace/spicepalace-backend/pkg/security"
)

const minPasswordLength = 8

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service covers both login flows plus profile reads and updates.
type Service interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error)
	CheckEmail(ctx context.Context, email string) (bool, error)

	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetRole(ctx context.Context, id uuid.UUID) (enums.UserRole, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	mailer   mailpkg.Sender
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	otpTTL   time.Duration
	logg     *logger.Logger
	now      func() time.Time
	makeCode func() (string, error)
}

// NewService builds the users service. The mailer may be nil in local setups;
// OTP requests then fail with a dependency error.
func NewService(repo Repository, tx txRunner, mailer mailpkg.Sender, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig, otpTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if otpTTL <= 0 {
		otpTTL = 5 * time.Minute
	}
	return &service{
		repo:     repo,
		tx:       tx,
		mailer:   mailer,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
		otpTTL:   otpTTL,
		logg:     logg,
		now:      time.Now,
		makeCode: security.GenerateOTP,
	}, nil
}

func (s *service) RequestOTP(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if s.mailer == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "mail delivery not configured")
	}

	code, err := s.makeCode()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate login code")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.findOrCreateUser(ctx, repo, email); err != nil {
			return err
		}
		otp := &models.OTPCode{
			Email:     email,
			Code:      code,
			ExpiresAt: s.now().Add(s.otpTTL),
		}
		if err := repo.CreateOTP(ctx, otp); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store login code")
		}
		return nil
	})
	if err != nil {
		return err
	}

	html := mailpkg.OTPEmailHTML(code, s.otpTTL)
	if err := s.mailer.Send(ctx, email, mailpkg.OTPSubject, html); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send login code email")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "email", email), "login code sent")
	}
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code required")
	}

	var result *AuthResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		otp, err := repo.LatestOTP(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load login code")
		}
		if otp.Verified || s.now().After(otp.ExpiresAt) || otp.Code != code {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
		}

		user, err := repo.FindUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}

		if err := repo.MarkOTPVerified(ctx, otp.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark code used")
		}
		if !user.IsVerified {
			if err := repo.UpdateUser(ctx, user.ID, map[string]any{"is_verified": true}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark user verified")
			}
			user.IsVerified = true
		}

		token, err := s.mintToken(user)
		if err != nil {
			return err
		}
		result = &AuthResult{Token: token, User: user}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) CheckEmail(ctx context.Context, email string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}
	_, err = s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up email")
	}
	return true, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var result *AuthResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		role, err := s.roleForNewUser(ctx, repo)
		if err != nil {
			return err
		}
		user := &models.User{
			Email:        email,
			PasswordHash: &hash,
			Role:         role,
		}
		if name := strings.TrimSpace(input.FullName); name != "" {
			user.FullName = &name
		}
		if _, err := repo.CreateUser(ctx, user); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_users_email_lower") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		token, err := s.mintToken(user)
		if err != nil {
			return err
		}
		result = &AuthResult{Token: token, User: user}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password required")
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.PasswordHash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(password, *user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.mintToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*models.User, error) {
	updates := map[string]any{}
	if input.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.Address != nil {
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.City != nil {
		updates["city"] = strings.TrimSpace(*input.City)
	}
	if input.PostalCode != nil {
		updates["postal_code"] = strings.TrimSpace(*input.PostalCode)
	}

	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateUser(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
	}
	return s.GetUser(ctx, id)
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) GetRole(ctx context.Context, id uuid.UUID) (enums.UserRole, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// findOrCreateUser upserts the OTP requester. The very first account on the
// system becomes the admin.
func (s *service) findOrCreateUser(ctx context.Context, repo Repository, email string) (*models.User, error) {
	user, err := repo.FindUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	role, err := s.roleForNewUser(ctx, repo)
	if err != nil {
		return nil, err
	}
	created, err := repo.CreateUser(ctx, &models.User{Email: email, Role: role})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return created, nil
}

func (s *service) roleForNewUser(ctx context.Context, repo Repository) (enums.UserRole, error) {
	count, err := repo.CountUsers(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	if count == 0 {
		return enums.UserRoleAdmin, nil
	}
	return enums.UserRoleUser, nil
}

func (s *service) mintToken(user *models.User) (string, error) {
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return token, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}
	return email, nil
}
