package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

type repoMock struct {
	createFn      func(ctx context.Context, u *User) error
	findByEmailFn func(ctx context.Context, email string) (*User, error)
}

func (m *repoMock) Create(ctx context.Context, u *User) error {
	return m.createFn(ctx, u)
}
func (m *repoMock) FindByID(context.Context, uint) (*User, error) { return nil, ErrUserNotFound }
func (m *repoMock) FindByEmail(ctx context.Context, email string) (*User, error) {
	return m.findByEmailFn(ctx, email)
}
func (m *repoMock) List(context.Context, ListParams) ([]*User, int64, error) { return nil, 0, nil }

func TestRegister_Validation(t *testing.T) {
	s := NewServiceWithCost(&repoMock{}, bcrypt.MinCost)
	ctx := context.Background()

	_, err := s.Register(ctx, "not-an-email", "abc12345", "小明", RoleRegular)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = s.Register(ctx, "a@b.com", "short1", "小明", RoleRegular)
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = s.Register(ctx, "a@b.com", "onlyletters", "小明", RoleRegular)
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = s.Register(ctx, "a@b.com", "abc12345", "明", RoleRegular)
	assert.ErrorIs(t, err, ErrInvalidNickname)

	_, err = s.Register(ctx, "a@b.com", "abc12345", "小明", Role("Root"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegister_HashesPasswordAndKeepsRole(t *testing.T) {
	var saved *User
	s := NewServiceWithCost(&repoMock{
		createFn: func(_ context.Context, u *User) error {
			u.ID = 9
			saved = u
			return nil
		},
	}, bcrypt.MinCost)

	u, err := s.Register(context.Background(), "staff@shop.com", "abc12345", "店员甲", RoleStaff)
	require.NoError(t, err)

	assert.Equal(t, uint(9), u.ID)
	assert.Equal(t, RoleStaff, saved.Role)
	assert.NotEqual(t, "abc12345", saved.Password)
	assert.NoError(t, s.ValidatePassword(saved.Password, "abc12345"))
	assert.Equal(t, []string{"Staff"}, u.Roles())
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("abc12345"), bcrypt.MinCost)
	require.NoError(t, err)

	s := NewServiceWithCost(&repoMock{
		findByEmailFn: func(_ context.Context, email string) (*User, error) {
			if email != "a@b.com" {
				return nil, ErrUserNotFound
			}
			return &User{ID: 1, Email: email, Password: string(hashed), Role: RoleRegular}, nil
		},
	}, bcrypt.MinCost)
	ctx := context.Background()

	u, err := s.Login(ctx, "a@b.com", "abc12345")
	require.NoError(t, err)
	assert.Equal(t, uint(1), u.ID)

	_, err = s.Login(ctx, "a@b.com", "wrong1234")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	// 未注册邮箱与密码错误返回同一错误
	_, err = s.Login(ctx, "nobody@b.com", "abc12345")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}
