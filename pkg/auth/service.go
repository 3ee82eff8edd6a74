package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shelf/pkg/database"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/shishobooks/shelf/pkg/models"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing.
	BcryptCost = 12
	// MinPasswordLength applies to every password change.
	MinPasswordLength = 6
	// TokenExpiry is how long JWT tokens are valid.
	TokenExpiry = 7 * 24 * time.Hour // 7 days

	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminEmail    = "admin@library.com"
)

const (
	KindAdmin  = "admin"
	KindReader = "reader"
)

// Principal is whoever a token was issued to.
type Principal struct {
	ID       int
	Username string
	Kind     string
}

// JWTClaims represents the claims in a JWT token.
type JWTClaims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

// Service handles admin authentication and token issuing.
type Service struct {
	db        *bun.DB
	jwtSecret []byte
}

// NewService creates a new auth service.
func NewService(db *bun.DB, jwtSecret string) *Service {
	return &Service{
		db:        db,
		jwtSecret: []byte(jwtSecret),
	}
}

// Authenticate validates admin credentials and stamps last_login. Unknown
// usernames and wrong passwords fail identically.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.Admin, error) {
	admin := &models.Admin{}
	err := s.db.NewSelect().
		Model(admin).
		Where("a.username = ?", username).
		Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, errors.WithStack(err)
		}
		DummyCheck(password)
		return nil, errcodes.InvalidCredentials()
	}

	if !CheckPassword(password, admin.PasswordHash) {
		return nil, errcodes.InvalidCredentials()
	}

	upgraded, err := UpgradeHash(password, admin.PasswordHash)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	q := s.db.NewUpdate().
		Model(admin).
		Set("last_login = ?", now).
		WherePK()
	if upgraded != "" {
		q = q.Set("password_hash = ?", upgraded)
	}
	if _, err := q.Exec(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	admin.LastLogin = &now
	if upgraded != "" {
		admin.PasswordHash = upgraded
		logger.FromContext(ctx).Info("upgraded legacy admin password hash", logger.Data{"admin_id": admin.ID})
	}

	return admin, nil
}

// RetrieveAdmin gets an admin by ID.
func (s *Service) RetrieveAdmin(ctx context.Context, id int) (*models.Admin, error) {
	admin := &models.Admin{}
	err := s.db.NewSelect().
		Model(admin).
		Where("a.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Admin")
		}
		return nil, errors.WithStack(err)
	}
	return admin, nil
}

// ChangePassword replaces an admin's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, adminID int, currentPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return errcodes.WeakPassword(MinPasswordLength)
	}

	admin, err := s.RetrieveAdmin(ctx, adminID)
	if err != nil {
		return err
	}

	if !CheckPassword(currentPassword, admin.PasswordHash) {
		return errcodes.WrongCurrentPassword()
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = s.db.NewUpdate().
		Model((*models.Admin)(nil)).
		Set("password_hash = ?", hashedPassword).
		Where("id = ?", adminID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to update password")
	}

	return nil
}

// EnsureDefaultAdmin seeds the built-in admin account when it is missing. It
// reports whether a row was created.
func (s *Service) EnsureDefaultAdmin(ctx context.Context) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*models.Admin)(nil)).
		Where("username = ?", DefaultAdminUsername).
		Exists(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if exists {
		return false, nil
	}

	hashedPassword, err := HashPassword(DefaultAdminPassword)
	if err != nil {
		return false, err
	}

	email := DefaultAdminEmail
	admin := &models.Admin{
		CreatedAt:    time.Now().UTC(),
		Username:     DefaultAdminUsername,
		PasswordHash: hashedPassword,
		Email:        &email,
	}
	_, err = s.db.NewInsert().Model(admin).Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, errors.WithStack(err)
	}

	logger.FromContext(ctx).Warn("seeded default admin account, change its password", logger.Data{"username": DefaultAdminUsername})
	return true, nil
}

// GenerateToken creates a new JWT token for the principal.
func (s *Service) GenerateToken(p Principal) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:   p.ID,
		Username: p.Username,
		Kind:     p.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return signedToken, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Kind != KindAdmin && claims.Kind != KindReader {
		return nil, errors.New("invalid token kind")
	}

	return claims, nil
}

// principalExists checks that the token subject still exists and, for
// readers, is still active.
func (s *Service) principalExists(ctx context.Context, claims *JWTClaims) (bool, error) {
	var q *bun.SelectQuery
	switch claims.Kind {
	case KindAdmin:
		q = s.db.NewSelect().Model((*models.Admin)(nil)).Where("id = ?", claims.UserID)
	default:
		q = s.db.NewSelect().Model((*models.User)(nil)).Where("id = ?", claims.UserID).Where("is_active = ?", true)
	}
	exists, err := q.Exists(ctx)
	return exists, errors.WithStack(err)
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a password with a hash. Unsalted SHA-256 hex
// digests written by the old mobile app are still accepted.
func CheckPassword(password, hash string) bool {
	if IsLegacyHash(hash) {
		sum := sha256.Sum256([]byte(password))
		return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(hash)) == 1
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsLegacyHash reports whether hash is a bare SHA-256 hex digest.
func IsLegacyHash(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

// UpgradeHash returns a bcrypt hash of password when hash is a legacy
// digest, and "" when hash needs no upgrade. Call it only after
// CheckPassword has succeeded.
func UpgradeHash(password, hash string) (string, error) {
	if !IsLegacyHash(hash) {
		return "", nil
	}
	return HashPassword(password)
}

var (
	dummyHashOnce  sync.Once
	dummyHashValue string
)

func dummyHash() string {
	dummyHashOnce.Do(func() {
		h, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), BcryptCost)
		dummyHashValue = string(h)
	})
	return dummyHashValue
}

// DummyCheck burns one bcrypt comparison. Callers use it on lookup misses so
// that unknown usernames take as long as wrong passwords.
func DummyCheck(password string) {
	CheckPassword(password, dummyHash())
}
