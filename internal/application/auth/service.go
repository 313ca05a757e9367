package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kusina-api/internal/application/notification"
	"github.com/kusina-api/internal/application/verification"
	"github.com/kusina-api/internal/domain"
	"github.com/kusina-api/internal/infrastructure/google"
	"github.com/kusina-api/internal/infrastructure/smtp"
	"github.com/kusina-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the subset of the user repository the auth flows need.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type TokenSigner interface {
	Sign(userID, email, name, role string) (string, error)
}

type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type EmailDispatcher interface {
	Dispatch(e notification.Email, onFailure func(error))
}

// Session is the outcome of a completed sign-in.
type Session struct {
	Token string
	User  *domain.User
}

// LoginResult is returned by SendLoginCode. Admins skip the emailed code and
// receive a Session immediately; everyone else gets DevCode (dev mode only).
type LoginResult struct {
	SkipVerification bool
	Session          *Session
	DevCode          string
}

type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) (devCode string, err error)
	VerifySignup(ctx context.Context, req domain.VerifyCodeRequest) (*Session, error)
	ResendSignupCode(ctx context.Context, email string) (devCode string, err error)
	SendLoginCode(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	VerifyLoginCode(ctx context.Context, req domain.VerifyCodeRequest) (*Session, error)
	GoogleAuth(ctx context.Context, token string) (*Session, error)
	ForgotPassword(ctx context.Context, email string) (devCode string, err error)
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	RequestPasswordChange(ctx context.Context, userID string) (email, devCode string, err error)
	VerifyPasswordChangeCode(ctx context.Context, userID, code string) error
	ChangePasswordWithCode(ctx context.Context, userID string, req domain.ChangePasswordRequest) error
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
}

// ServiceDeps groups the collaborators of the auth service.
type ServiceDeps struct {
	Codes      *verification.Stores
	Users      UserStore
	Signer     TokenSigner
	Google     GoogleVerifier
	Mail       EmailDispatcher
	DevMode    bool          // echo issued codes back to the caller
	CodeTTL    time.Duration // only used for the "expires in" line of emails
	BcryptCost int
}

type service struct {
	codes   *verification.Stores
	users   UserStore
	signer  TokenSigner
	google  GoogleVerifier
	mail    EmailDispatcher
	devMode bool
	ttlMin  int
	cost    int
	now     func() time.Time
}

func NewService(deps ServiceDeps) Service {
	ttl := deps.CodeTTL
	if ttl <= 0 {
		ttl = verification.DefaultTTL
	}
	cost := deps.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{
		codes:   deps.Codes,
		users:   deps.Users,
		signer:  deps.Signer,
		google:  deps.Google,
		mail:    deps.Mail,
		devMode: deps.DevMode,
		ttlMin:  int(ttl / time.Minute),
		cost:    cost,
		now:     time.Now,
	}
}

func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (string, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return "", fmt.Errorf("email is already registered, please sign in instead: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return "", err
	}
	code, err := s.codes.Signup.Issue(req.Email, domain.SignupData{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
	})
	if err != nil {
		return "", err
	}
	if err := s.sendCode(smtp.KindSignup, req.Email, req.Name, code, nil); err != nil {
		return "", err
	}
	return s.echo(code), nil
}

func (s *service) VerifySignup(ctx context.Context, req domain.VerifyCodeRequest) (*Session, error) {
	pending, err := s.codes.Signup.Consume(req.Email, req.Code)
	if err != nil {
		return nil, codeError(err)
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         pending.Name,
		Email:        pending.Email,
		Phone:        pending.Phone,
		PasswordHash: pending.PasswordHash,
		Role:         domain.RoleCustomer,
		AuthType:     domain.AuthTypeEmail,
		LastLogin:    &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.users.GetByEmail(ctx, u.Email); err == nil {
		return nil, fmt.Errorf("account already exists, please sign in: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.session(u)
}

func (s *service) ResendSignupCode(_ context.Context, email string) (string, error) {
	code, err := s.codes.Signup.Reissue(email)
	if errors.Is(err, verification.ErrNotFound) {
		return "", fmt.Errorf("no pending verification found for this email, please start signup again: %w", domain.ErrBadRequest)
	}
	if err != nil {
		return "", fmt.Errorf("reissue signup code: %w", err)
	}
	name := ""
	if e, ok := s.codes.Signup.Peek(email); ok {
		name = e.Context.Name
	}
	if err := s.sendCode(smtp.KindSignup, email, name, code, nil); err != nil {
		return "", err
	}
	return s.echo(code), nil
}

func (s *service) SendLoginCode(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, errInvalidCredentials
	}
	if !u.Active() {
		return nil, errDeactivated
	}

	if u.Role == domain.RoleAdmin {
		s.touchLastLogin(ctx, u)
		sess, err := s.session(u)
		if err != nil {
			return nil, err
		}
		return &LoginResult{SkipVerification: true, Session: sess}, nil
	}

	code, err := s.codes.Login.Issue(u.Email, domain.LoginIdentity{UserID: u.UserID, Name: u.Name, Role: u.Role})
	if err != nil {
		return nil, err
	}
	if err := s.sendCode(smtp.KindLogin, u.Email, u.Name, code, nil); err != nil {
		return nil, err
	}
	return &LoginResult{DevCode: s.echo(code)}, nil
}

func (s *service) VerifyLoginCode(ctx context.Context, req domain.VerifyCodeRequest) (*Session, error) {
	ident, err := s.codes.Login.Consume(req.Email, req.Code)
	if err != nil {
		return nil, codeError(err)
	}
	u, err := s.users.Get(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	s.touchLastLogin(ctx, u)
	return s.session(u)
}

func (s *service) GoogleAuth(ctx context.Context, token string) (*Session, error) {
	p, err := s.google.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if p.Email == "" {
		return nil, fmt.Errorf("google account has no email: %w", domain.ErrBadRequest)
	}

	now := s.now().UTC()
	u, err := s.users.GetByEmail(ctx, p.Email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u = &domain.User{
			UserID:    id.New(),
			Name:      p.Name,
			Email:     p.Email,
			Role:      domain.RoleCustomer,
			AuthType:  domain.AuthTypeGoogle,
			GoogleSub: p.Sub,
			AvatarURL: optional(p.Picture),
			LastLogin: &now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case u.GoogleSub == "":
		updates := map[string]interface{}{
			"google_sub": p.Sub,
			"auth_type":  domain.AuthTypeGoogle,
			"last_login": now,
		}
		if p.Picture != "" {
			updates["avatar_url"] = p.Picture
		}
		if err := s.users.Update(ctx, u.UserID, updates); err != nil {
			return nil, err
		}
		u.GoogleSub = p.Sub
		u.AuthType = domain.AuthTypeGoogle
		u.LastLogin = &now
		if p.Picture != "" {
			u.AvatarURL = optional(p.Picture)
		}
	default:
		s.touchLastLogin(ctx, u)
	}
	return s.session(u)
}

func (s *service) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		// Unknown addresses get the same answer as known ones.
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if u.AuthType != domain.AuthTypeEmail {
		return "", fmt.Errorf("password reset is only available for email accounts, please use Google sign-in: %w", domain.ErrBadRequest)
	}
	code, err := s.codes.Reset.Issue(u.Email, domain.PasswordTarget{UserID: u.UserID, Name: u.Name})
	if err != nil {
		return "", err
	}
	if err := s.sendCode(smtp.KindPasswordReset, u.Email, u.Name, code, dropCode(s.codes.Reset, u.Email, code)); err != nil {
		return "", err
	}
	return s.echo(code), nil
}

func (s *service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	target, err := s.codes.Reset.Consume(req.Email, req.Code)
	if err != nil {
		return codeError(err)
	}
	return s.setPassword(ctx, target.UserID, req.NewPassword)
}

func (s *service) RequestPasswordChange(ctx context.Context, userID string) (string, string, error) {
	u, err := s.emailAccount(ctx, userID)
	if err != nil {
		return "", "", err
	}
	code, err := s.codes.Change.Issue(u.Email, domain.PasswordTarget{UserID: u.UserID, Name: u.Name})
	if err != nil {
		return "", "", err
	}
	if err := s.sendCode(smtp.KindPasswordChange, u.Email, u.Name, code, dropCode(s.codes.Change, u.Email, code)); err != nil {
		return "", "", err
	}
	return u.Email, s.echo(code), nil
}

func (s *service) VerifyPasswordChangeCode(ctx context.Context, userID, code string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.codes.Change.Check(u.Email, code); err != nil {
		return codeError(err)
	}
	return nil
}

func (s *service) ChangePasswordWithCode(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	u, err := s.emailAccount(ctx, userID)
	if err != nil {
		return err
	}
	target, err := s.codes.Change.Consume(u.Email, req.Code)
	if err != nil {
		return codeError(err)
	}
	if target.UserID != u.UserID {
		return fmt.Errorf("code was issued to another account: %w", domain.ErrForbidden)
	}
	return s.setPassword(ctx, u.UserID, req.NewPassword)
}

func (s *service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Email != u.Email {
		other, err := s.users.GetByEmail(ctx, req.Email)
		if err == nil && other.UserID != userID {
			return nil, fmt.Errorf("email is already used by another account: %w", domain.ErrConflict)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"name":  req.Name,
		"email": req.Email,
		"phone": req.Phone,
	}
	if req.NewPassword != "" {
		if u.AuthType != domain.AuthTypeEmail {
			return nil, fmt.Errorf("password changes are only available for email accounts: %w", domain.ErrBadRequest)
		}
		if req.CurrentPassword == "" {
			return nil, fmt.Errorf("current password is required to set a new password: %w", domain.ErrBadRequest)
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)) != nil {
			return nil, fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
		}
		hash, err := s.hash(req.NewPassword)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if err := s.users.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	u.Name, u.Email, u.Phone = req.Name, req.Email, req.Phone
	return u, nil
}

var (
	errInvalidCredentials = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	errDeactivated        = fmt.Errorf("account is deactivated: %w", domain.ErrForbidden)
)

// codeError turns a verification store failure into the message shown to the user.
func codeError(err error) error {
	switch {
	case errors.Is(err, verification.ErrNotFound):
		return fmt.Errorf("no verification code found, please request a new one: %w", domain.ErrBadRequest)
	case errors.Is(err, verification.ErrExpired):
		return fmt.Errorf("verification code expired, please request a new one: %w", domain.ErrBadRequest)
	case errors.Is(err, verification.ErrMismatch):
		return fmt.Errorf("invalid verification code, please try again: %w", domain.ErrBadRequest)
	}
	return err
}

// dropCode discards a pending code whose email could not be delivered, unless
// it has been replaced by a newer one in the meantime.
func dropCode[T any](store *verification.Store[T], email, code string) func(error) {
	return func(err error) {
		if store.DeleteIf(email, code) {
			slog.Warn("discarded undeliverable code", "store", store.Name(), "email", email, "err", err)
		}
	}
}

func (s *service) sendCode(kind smtp.Kind, to, name, code string, onFailure func(error)) error {
	subject, html, err := smtp.RenderCode(kind, name, code, s.ttlMin)
	if err != nil {
		return err
	}
	s.mail.Dispatch(notification.Email{To: to, Subject: subject, HTML: html, Kind: string(kind)}, onFailure)
	return nil
}

func (s *service) emailAccount(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.AuthType != domain.AuthTypeEmail {
		return nil, fmt.Errorf("password change is only available for email accounts: %w", domain.ErrBadRequest)
	}
	return u, nil
}

func (s *service) setPassword(ctx context.Context, userID, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, userID, map[string]interface{}{"password_hash": hash})
}

func (s *service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (s *service) touchLastLogin(ctx context.Context, u *domain.User) {
	now := s.now().UTC()
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{"last_login": now}); err != nil {
		slog.Warn("failed to record last login", "user_id", u.UserID, "err", err)
		return
	}
	u.LastLogin = &now
}

func (s *service) session(u *domain.User) (*Session, error) {
	if !u.Active() {
		return nil, errDeactivated
	}
	tok, err := s.signer.Sign(u.UserID, u.Email, u.Name, u.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, User: u}, nil
}

func (s *service) echo(code string) string {
	if s.devMode {
		return code
	}
	return ""
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
