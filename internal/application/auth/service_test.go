package auth

import (
	"context"
	"testing"

	"grayco-suite/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testTenant = uuid.MustParse("357145e4-b5a1-43e3-a9ba-f8e834b38034")

func setupAuthTest(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Operator{}))
	return &Service{DB: db, TenantID: testTenant}
}

func TestVerifyUser_Nil(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_NoOperatorID(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{"fullname": "Kam", "email": "kam@test"})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_Valid(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"operator_id": "550e8400-e29b-41d4-a716-446655440000",
		"fullname":    "Kam",
		"email":       "kam@test",
		"role":        "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, &SessionUserShape{OperatorID: "550e8400-e29b-41d4-a716-446655440000", Fullname: "Kam", Email: "kam@test", Role: "owner"}, u)
}

func TestAddOperatorAndLogin(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	o, err := svc.AddOperator(ctx, OperatorInput{Fullname: "Kam", Email: " Kam@Test ", Password: "signs-2026", Role: "owner"}, false)
	require.NoError(t, err)
	assert.Equal(t, "kam@test", o.Email)

	_, err = svc.AddOperator(ctx, OperatorInput{Email: "kam@test", Password: "another-pass"}, false)
	assert.ErrorIs(t, err, ErrOperatorExists)

	got, err := svc.Login(ctx, LoginInput{Email: "KAM@test", Password: "signs-2026"})
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "kam@test", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@test", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = svc.Login(ctx, LoginInput{Email: "kam@test"})
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)
}

func TestAddOperator_SeededHashAndReplace(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("from-env-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	_, err = svc.AddOperator(ctx, OperatorInput{Email: "kam@test", PasswordHash: string(hash), Role: "owner"}, true)
	require.NoError(t, err)
	_, err = svc.AddOperator(ctx, OperatorInput{Email: "kam@test", Password: "rotated-pass", Role: "owner"}, true)
	require.NoError(t, err)

	_, err = svc.FindByEmailAndPassword(ctx, "kam@test", "rotated-pass")
	require.NoError(t, err)

	_, err = svc.AddOperator(ctx, OperatorInput{Email: "x@test", Password: "short"}, false)
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = svc.AddOperator(ctx, OperatorInput{Email: "x@test", Password: "long-enough", Role: "admin"}, false)
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = svc.AddOperator(ctx, OperatorInput{Fullname: "R2D2", Email: "x@test", Password: "long-enough"}, false)
	assert.ErrorIs(t, err, ErrInvalidFullname)
}

func TestAddOperator_KeepsLastOwner(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	_, err := svc.AddOperator(ctx, OperatorInput{Email: "kam@test", Password: "signs-2026", Role: "owner"}, false)
	require.NoError(t, err)
	_, err = svc.AddOperator(ctx, OperatorInput{Email: "kam@test", Password: "signs-2026", Role: "staff"}, true)
	assert.ErrorIs(t, err, ErrLastOwner)

	_, err = svc.AddOperator(ctx, OperatorInput{Email: "bruno@test", Password: "signs-2026", Role: "owner"}, false)
	require.NoError(t, err)
	o, err := svc.AddOperator(ctx, OperatorInput{Email: "kam@test", Password: "signs-2026", Role: "staff"}, true)
	require.NoError(t, err)
	assert.Equal(t, "staff", o.Role)
}
