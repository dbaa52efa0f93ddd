// Package auth implements the account flows: register, login, password
// reset by one-time code, and code verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/caasmo/accounts/crypto"
	"github.com/caasmo/accounts/db"
	"github.com/caasmo/accounts/notify"
	"github.com/caasmo/accounts/otp"
)

// DefaultSendTimeout bounds a single otp dispatch.
const DefaultSendTimeout = 10 * time.Second

// ForgotPasswordMessage is returned for every accepted forgot-password
// request, whether or not the account exists.
const ForgotPasswordMessage = "If an account with that email exists, an OTP has been sent."

// Dispatcher delivers a one-time code to the user out of band.
type Dispatcher interface {
	SendOtp(ctx context.Context, email, code string, ttl time.Duration) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Session is returned by the flows that authenticate the caller.
type Session struct {
	ID    string
	Email string
	Token string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type Service struct {
	store       db.DbAuth
	hasher      PasswordHasher
	otp         *otp.Issuer
	tokens      *Tokens
	dispatcher  Dispatcher
	notifier    notify.Notifier
	logger      *slog.Logger
	metrics     *Metrics
	sendTimeout time.Duration
	onChange    func(userID string)

	dummyHash string
	inflight  sync.WaitGroup
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithNotifier sets the operator channel alarmed on dispatch failures.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithSendTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sendTimeout = d
		}
	}
}

// WithUserChanged registers a callback run after a flow modified a user,
// used to evict cached records.
func WithUserChanged(fn func(userID string)) Option {
	return func(s *Service) {
		s.onChange = fn
	}
}

func NewService(store db.DbAuth, hasher PasswordHasher, issuer *otp.Issuer, tokens *Tokens, dispatcher Dispatcher, opts ...Option) (*Service, error) {
	if store == nil || hasher == nil || issuer == nil || tokens == nil || dispatcher == nil {
		return nil, errors.New("auth: store, hasher, issuer, tokens and dispatcher are required")
	}
	s := &Service{
		store:       store,
		hasher:      hasher,
		otp:         issuer,
		tokens:      tokens,
		dispatcher:  dispatcher,
		notifier:    notify.NewNilNotifier(),
		logger:      slog.Default(),
		sendTimeout: DefaultSendTimeout,
		onChange:    func(string) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics, _ = NewMetrics(nil)
	}

	// Login verifies against dummyHash for unknown emails.
	dummy, err := hasher.Hash(crypto.RandomString(16, crypto.AlphanumericAlphabet))
	if err != nil {
		return nil, fmt.Errorf("auth: failed to create dummy hash: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

func (s *Service) session(user *db.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{ID: user.ID, Email: user.Email, Token: token}, nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	sess, err := s.register(ctx, in)
	s.count(opRegister, err)
	return sess, err
}

func (s *Service) register(ctx context.Context, in RegisterInput) (*Session, error) {
	if in.Email == "" {
		return nil, ErrEmailRequired
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}
	if !ValidPasswordLength(in.Password) {
		return nil, ErrPasswordTooLong
	}
	if !ValidEmail(in.Email) {
		return nil, ErrInvalidEmail
	}

	_, err := s.store.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, db.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, db.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     db.RoleUser,
	})
	if errors.Is(err, db.ErrEmailConflict) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return s.session(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	sess, err := s.login(ctx, email, password)
	s.count(opLogin, err)
	return sess, err
}

func (s *Service) login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, db.ErrUserNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	if !s.hasher.Verify(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// ForgotPassword issues a code for a known email and dispatches it in the
// background. An unknown email is not an error.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	err := s.forgotPassword(ctx, email)
	s.count(opForgot, err)
	return err
}

func (s *Service) forgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return ErrEmailRequired
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up email: %w", err)
	}

	code, err := s.otp.Issue(ctx, user)
	if err != nil {
		return err
	}
	s.onChange(user.ID)

	s.dispatch(user.ID, user.Email, code)
	return nil
}

// dispatch sends the code without holding up the caller. Failures are
// logged and alarmed, never returned.
func (s *Service) dispatch(userID, email, code string) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
		defer cancel()

		err := s.dispatcher.SendOtp(ctx, email, code, s.otp.TTL())
		if err == nil {
			s.metrics.inc(opOtpDispatch, outcomeOk)
			return
		}

		s.metrics.inc(opOtpDispatch, outcomeError)
		s.logger.Error("otp dispatch failed", "user_id", userID, "error", err)
		nerr := s.notifier.Send(ctx, notify.NewAlarm("auth", "otp dispatch failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		}))
		if nerr != nil {
			s.logger.Warn("failed to notify dispatch failure", "error", nerr)
		}
	}()
}

// Wait blocks until in-flight dispatches finish.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// ResetPassword redeems a code and sets a new password. It returns a fresh
// session for the user.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) (*Session, error) {
	sess, err := s.resetPassword(ctx, email, code, newPassword)
	s.count(opReset, err)
	return sess, err
}

func (s *Service) resetPassword(ctx context.Context, email, code, newPassword string) (*Session, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if code == "" {
		return nil, ErrOtpRequired
	}
	if newPassword == "" {
		return nil, ErrNewPasswordRequired
	}
	if !ValidPasswordLength(newPassword) {
		return nil, ErrPasswordTooLong
	}

	user, err := s.verify(ctx, email, code)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	err = s.store.ResetPassword(ctx, user.ID, user.OtpHash, hash, s.otp.Now())
	if errors.Is(err, db.ErrOtpConflict) || errors.Is(err, db.ErrUserNotFound) {
		return nil, ErrOtpInvalidOrExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}
	s.onChange(user.ID)

	s.logger.Info("password reset", "user_id", user.ID)
	return s.session(user)
}

// VerifyOtp checks a code without consuming it.
func (s *Service) VerifyOtp(ctx context.Context, email, code string) error {
	err := s.verifyOtp(ctx, email, code)
	s.count(opVerifyOtp, err)
	return err
}

func (s *Service) verifyOtp(ctx context.Context, email, code string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if code == "" {
		return ErrOtpRequired
	}
	_, err := s.verify(ctx, email, code)
	return err
}

func (s *Service) verify(ctx context.Context, email, code string) (*db.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, ErrOtpInvalidOrExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if err := s.otp.Verify(user, code); err != nil {
		s.logger.Debug("otp rejected", "user_id", user.ID, "reason", err)
		return nil, ErrOtpInvalidOrExpired
	}
	return user, nil
}

func (s *Service) count(op string, err error) {
	switch {
	case err == nil:
		s.metrics.inc(op, outcomeOk)
	case IsClientError(err):
		s.metrics.inc(op, outcomeRejected)
	default:
		s.metrics.inc(op, outcomeError)
	}
}

// IsClientError reports whether err is one of the caller caused errors of
// this package.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrEmailRequired, ErrPasswordRequired, ErrInvalidEmail, ErrOtpRequired,
		ErrNewPasswordRequired, ErrPasswordTooLong, ErrEmailTaken, ErrInvalidCredentials,
		ErrOtpInvalidOrExpired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
