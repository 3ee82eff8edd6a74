package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/shishobooks/shelf/internal/testdb"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/shishobooks/shelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAdmin(t *testing.T, svc *Service) *models.Admin {
	t.Helper()
	created, err := svc.EnsureDefaultAdmin(context.Background())
	require.NoError(t, err)
	require.True(t, created)

	admin := &models.Admin{}
	err = svc.db.NewSelect().Model(admin).Where("a.username = ?", DefaultAdminUsername).Scan(context.Background())
	require.NoError(t, err)
	return admin
}

func TestService_EnsureDefaultAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(testdb.New(t), "test-secret")

	admin := seedAdmin(t, svc)
	assert.Equal(t, DefaultAdminUsername, admin.Username)
	require.NotNil(t, admin.Email)
	assert.Equal(t, DefaultAdminEmail, *admin.Email)
	assert.NotEqual(t, DefaultAdminPassword, admin.PasswordHash)
	assert.True(t, CheckPassword(DefaultAdminPassword, admin.PasswordHash))

	created, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	count, err := svc.db.NewSelect().Model((*models.Admin)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_Authenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(testdb.New(t), "test-secret")
	seedAdmin(t, svc)

	admin, err := svc.Authenticate(ctx, DefaultAdminUsername, DefaultAdminPassword)
	require.NoError(t, err)
	assert.Equal(t, DefaultAdminUsername, admin.Username)
	require.NotNil(t, admin.LastLogin)

	stored, err := svc.RetrieveAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	_, wrongPassword := svc.Authenticate(ctx, DefaultAdminUsername, "nope")
	_, unknownUser := svc.Authenticate(ctx, "ghost", "nope")
	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	assert.True(t, errcodes.HasCode(wrongPassword, errcodes.CodeInvalidCredentials))
	assert.True(t, errcodes.HasCode(unknownUser, errcodes.CodeInvalidCredentials))
}

func TestService_ChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(testdb.New(t), "test-secret")
	admin := seedAdmin(t, svc)

	err := svc.ChangePassword(ctx, admin.ID, DefaultAdminPassword, "abc")
	assert.True(t, errcodes.HasCode(err, errcodes.CodeWeakPassword))

	err = svc.ChangePassword(ctx, admin.ID, "not-current", "new-secret")
	assert.True(t, errcodes.HasCode(err, errcodes.CodeWrongCurrentPassword))

	err = svc.ChangePassword(ctx, admin.ID+100, DefaultAdminPassword, "new-secret")
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNotFound))

	require.NoError(t, svc.ChangePassword(ctx, admin.ID, DefaultAdminPassword, "new-secret"))

	_, err = svc.Authenticate(ctx, DefaultAdminUsername, DefaultAdminPassword)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeInvalidCredentials))
	_, err = svc.Authenticate(ctx, DefaultAdminUsername, "new-secret")
	assert.NoError(t, err)
}

func TestService_Tokens(t *testing.T) {
	t.Parallel()
	svc := NewService(testdb.New(t), "test-secret")

	token, err := svc.GenerateToken(Principal{ID: 7, Username: "reader7", Kind: KindReader})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "reader7", claims.Username)
	assert.Equal(t, KindReader, claims.Kind)
	assert.NotEmpty(t, claims.ID)

	other := NewService(svc.db, "other-secret")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)

	bad, err := svc.GenerateToken(Principal{ID: 1, Username: "x", Kind: "root"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(bad)
	assert.Error(t, err)
}

func TestService_PrincipalExists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(testdb.New(t), "test-secret")
	admin := seedAdmin(t, svc)

	exists, err := svc.principalExists(ctx, &JWTClaims{UserID: admin.ID, Kind: KindAdmin})
	require.NoError(t, err)
	assert.True(t, exists)

	testdb.Exec(t, svc.db, `INSERT INTO users (username, password_hash, is_active) VALUES ('dora', 'x', 0)`)
	exists, err = svc.principalExists(ctx, &JWTClaims{UserID: 1, Kind: KindReader})
	require.NoError(t, err)
	assert.False(t, exists)
}

func legacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func TestCheckPassword_LegacyDigest(t *testing.T) {
	t.Parallel()

	digest := legacyDigest("admin123")
	assert.True(t, IsLegacyHash(digest))
	assert.True(t, CheckPassword("admin123", digest))
	assert.False(t, CheckPassword("admin1234", digest))

	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.False(t, IsLegacyHash(hash))

	upgraded, err := UpgradeHash("admin123", hash)
	require.NoError(t, err)
	assert.Empty(t, upgraded)
}

func TestService_Authenticate_UpgradesLegacyAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(testdb.New(t), "test-secret")
	testdb.Exec(t, svc.db, `INSERT INTO admins (username, password_hash) VALUES (?, ?)`, DefaultAdminUsername, legacyDigest(DefaultAdminPassword))

	created, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := svc.Authenticate(ctx, DefaultAdminUsername, DefaultAdminPassword)
	require.NoError(t, err)

	stored, err := svc.RetrieveAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.False(t, IsLegacyHash(stored.PasswordHash))
	assert.True(t, CheckPassword(DefaultAdminPassword, stored.PasswordHash))
}

func TestService_ChangePassword_FromLegacyDigest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(testdb.New(t), "test-secret")
	testdb.Exec(t, svc.db, `INSERT INTO admins (username, password_hash) VALUES (?, ?)`, DefaultAdminUsername, legacyDigest(DefaultAdminPassword))

	require.NoError(t, svc.ChangePassword(ctx, 1, DefaultAdminPassword, "new-secret"))

	_, err := svc.Authenticate(ctx, DefaultAdminUsername, "new-secret")
	assert.NoError(t, err)
}
