package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"dumplin/internal/models"
	"dumplin/internal/repositories"
	"dumplin/internal/utils"
)

var (
	ErrInvalidPhone   = errors.New("invalid phone number format")
	ErrCodeInvalid    = errors.New("invalid or expired verification code")
	ErrSessionInvalid = errors.New("invalid or expired token")
)

// RateLimitError — отказ по лимиту, сообщение уходит клиенту как есть (429).
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string { return e.Message }

// Пороговые значения для send-code (см. порядок проверок в SendCode)
const (
	codeTTL          = 10 * time.Minute
	ipWindowLimit    = 10
	ipWindow         = time.Minute
	phoneWindowLimit = 10
	phoneWindow      = time.Hour
	sendCooldown     = 30 * time.Second

	defaultSessionExpiryDays = 30

	// доля жизни сессии, после которой session-check выдаёт новый токен
	refreshThreshold = 0.5
)

// SMSSender — внешний SMS-провайдер (utils.Client).
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type VerifyResult struct {
	Token string
	User  *models.UserSummary
}

type SessionStatus struct {
	Refreshed bool
	Token     string // пустой, если ротации не было
	User      *models.UserSummary
}

type AuthService interface {
	SendCode(ctx context.Context, rawPhone, clientIP string) error
	Verify(ctx context.Context, rawPhone, code string) (*VerifyResult, error)
	// CheckSession — валидация с авто-продлением: при возрасте >= 50%
	// жизни сессии старый токен заменяется новым.
	CheckSession(ctx context.Context, token string) (*SessionStatus, error)
	// Authenticate — половинка CheckSession для requireAuth: только
	// lookup, без ротации.
	Authenticate(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// AuthConfig — срок жизни сессии и тестовая пара номер/код для
// sandbox-окружений (ревью сторов): без исходящих SMS.
type AuthConfig struct {
	SessionExpiryDays int
	TestPhoneNumber   string
	TestCode          string
}

type authService struct {
	users    repositories.UserRepository
	codes    repositories.VerificationCodeRepository
	sessions repositories.SessionRepository
	tx       repositories.TxRunner
	limiter  *RateLimiter
	sms      SMSSender

	sessionExpiry time.Duration
	testPhone     string
	testCode      string
}

func NewAuthService(
	users repositories.UserRepository,
	codes repositories.VerificationCodeRepository,
	sessions repositories.SessionRepository,
	tx repositories.TxRunner,
	limiter *RateLimiter,
	sms SMSSender,
	cfg AuthConfig,
) AuthService {
	days := cfg.SessionExpiryDays
	if days <= 0 {
		days = defaultSessionExpiryDays
	}
	return &authService{
		users:         users,
		codes:         codes,
		sessions:      sessions,
		tx:            tx,
		limiter:       limiter,
		sms:           sms,
		sessionExpiry: time.Duration(days) * 24 * time.Hour,
		testPhone:     cfg.TestPhoneNumber,
		testCode:      cfg.TestCode,
	}
}

// generateCode — 5-значный код, равномерно из [10000, 99999].
func (s *authService) generateCode() string {
	src := rand.NewSource(time.Now().UnixNano())
	rnd := rand.New(src)
	return fmt.Sprintf("%d", 10000+rnd.Intn(90000))
}

func (s *authService) isTestPair(phone, code string) bool {
	return s.testPhone != "" && phone == s.testPhone && code == s.testCode
}

func (s *authService) SendCode(ctx context.Context, rawPhone, clientIP string) error {
	if !utils.IsValidPhoneNumber(rawPhone) {
		return ErrInvalidPhone
	}
	phone := utils.FormatPhoneNumber(rawPhone)

	// Порядок фиксированный: IP-окно, окно номера, cooldown номера.
	// Первый отказ завершает запрос.
	if clientIP != "" {
		if res := s.limiter.CheckRateLimit(ctx, "ip:"+clientIP, ipWindowLimit, ipWindow); !res.Allowed {
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many requests from this IP. Please try again in %d seconds.", int(res.RetryAfter.Seconds())),
				RetryAfter: res.RetryAfter,
			}
		}
	}
	if res := s.limiter.CheckRateLimit(ctx, "phone:"+phone, phoneWindowLimit, phoneWindow); !res.Allowed {
		mins := int(res.RetryAfter.Minutes()) + 1
		return &RateLimitError{
			Message:    fmt.Sprintf("Too many codes requested for this number. Please try again in %d minutes.", mins),
			RetryAfter: res.RetryAfter,
		}
	}
	if res := s.limiter.CheckCooldown(ctx, "phone:"+phone, sendCooldown); !res.Allowed {
		return &RateLimitError{
			Message:    fmt.Sprintf("Please wait %d seconds before requesting another code.", int(res.RetryAfter.Seconds())),
			RetryAfter: res.RetryAfter,
		}
	}

	// Тестовый номер: фиксированный код, без исходящего SMS
	if s.testPhone != "" && phone == s.testPhone {
		if err := s.codes.Upsert(phone, s.testCode, time.Now().Add(codeTTL)); err != nil {
			return err
		}
		log.Printf("[auth][send-code] test number, SMS skipped phone=%s", phone)
		return nil
	}

	code := s.generateCode()
	if err := s.codes.Upsert(phone, code, time.Now().Add(codeTTL)); err != nil {
		return err
	}

	body := fmt.Sprintf("Your Dumplin verification code is: %s. This code expires in 10 minutes.", code)
	if err := s.sms.SendSMS(ctx, phone, body); err != nil {
		// Код в базе не откатываем: пользователь сможет подтвердить
		// его при повторной доставке.
		log.Printf("[auth][send-code] SMS dispatch failed phone=%s: %v", phone, err)
		return fmt.Errorf("send verification SMS: %w", err)
	}

	log.Printf("[auth][send-code] ok phone=%s", phone)
	return nil
}

func (s *authService) Verify(ctx context.Context, rawPhone, code string) (*VerifyResult, error) {
	phone := utils.FormatPhoneNumber(rawPhone)
	bypass := s.isTestPair(phone, code)

	var result *VerifyResult
	err := s.tx.WithinTx(func(tx *sql.Tx) error {
		if !bypass {
			ok, err := s.codes.ConsumeActiveTx(tx, phone, code)
			if err != nil {
				return err
			}
			if !ok {
				return ErrCodeInvalid
			}
		}

		user, err := s.users.GetByPhoneTx(tx, phone)
		if err != nil {
			return err
		}
		if user == nil {
			if user, err = s.users.CreateTx(tx, phone); err != nil {
				return err
			}
			log.Printf("[auth][verify] new user created user_id=%s", user.ID)
		} else if user.DeletedAt != nil {
			// удалённый аккаунт восстанавливается при повторной верификации
			if err := s.users.ReactivateTx(tx, user.ID); err != nil {
				return err
			}
			user.DeletedAt = nil
			log.Printf("[auth][verify] user reactivated user_id=%s", user.ID)
		}

		token, err := utils.NewSessionToken(32)
		if err != nil {
			return fmt.Errorf("generate session token: %w", err)
		}
		sess := &models.Session{
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: time.Now().Add(s.sessionExpiry),
		}
		if err := s.sessions.CreateTx(tx, sess); err != nil {
			return err
		}

		result = &VerifyResult{Token: token, User: user.Summary()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *authService) CheckSession(ctx context.Context, token string) (*SessionStatus, error) {
	sess, user, err := s.sessions.GetWithUserByToken(token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionInvalid
	}

	now := time.Now()
	total := sess.ExpiresAt.Sub(sess.CreatedAt)
	age := now.Sub(sess.CreatedAt)

	if total > 0 && float64(age)/float64(total) >= refreshThreshold {
		newToken, err := utils.NewSessionToken(32)
		if err != nil {
			return nil, fmt.Errorf("generate session token: %w", err)
		}
		next := &models.Session{
			UserID:    user.ID,
			Token:     newToken,
			ExpiresAt: now.Add(s.sessionExpiry),
		}
		if err := s.sessions.Rotate(token, next); err != nil {
			return nil, err
		}
		log.Printf("[auth][session] refreshed user_id=%s used=%.1f%%", user.ID, 100*float64(age)/float64(total))
		return &SessionStatus{Refreshed: true, Token: newToken, User: user.Summary()}, nil
	}

	return &SessionStatus{User: user.Summary()}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	sess, user, err := s.sessions.GetWithUserByToken(token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionInvalid
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	// идемпотентно: несуществующий токен — тоже успех
	return s.sessions.DeleteByToken(token)
}

func (s *authService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SoftDelete(userID); err != nil {
		return err
	}
	// глобальный logout: убираем все сессии пользователя, не только текущую
	if err := s.sessions.DeleteByUserID(userID); err != nil {
		return err
	}
	log.Printf("[auth][delete-account] user_id=%s", userID)
	return nil
}
