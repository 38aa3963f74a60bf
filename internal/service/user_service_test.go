package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
)

type fakeRoles struct {
	roles []model.Role
}

func (f *fakeRoles) FindAll() ([]model.Role, error) { return f.roles, nil }

func (f *fakeRoles) FindByID(id uint) (*model.Role, error) {
	for i := range f.roles {
		if f.roles[i].ID == id {
			return &f.roles[i], nil
		}
	}
	return nil, apperr.NotFound("role %d not found", id)
}

func (f *fakeRoles) FindByCode(code string) (*model.Role, error) {
	for i := range f.roles {
		if f.roles[i].Code == code {
			return &f.roles[i], nil
		}
	}
	return nil, apperr.NotFound("role %s not found", code)
}

func (f *fakeRoles) SeedDefaults() error { return nil }

func (f *fakeRoles) ReplacePrivileges(role *model.Role, privileges []model.Privilege) error {
	role.Privileges = privileges
	return nil
}

type fakePrivileges struct{}

func (fakePrivileges) FindAll() ([]model.Privilege, error) { return model.DefaultPrivileges, nil }

func (fakePrivileges) FindByCodes(codes []string) ([]model.Privilege, error) {
	var found []model.Privilege
	for _, p := range model.DefaultPrivileges {
		for _, code := range codes {
			if p.Code == code {
				found = append(found, p)
			}
		}
	}
	return found, nil
}

func (fakePrivileges) SeedDefaults() error { return nil }

func newUserFixture() (UserService, *fakeUsers) {
	users := &fakeUsers{users: map[uuid.UUID]*model.User{}}
	roles := &fakeRoles{roles: []model.Role{
		{ID: 1, Code: model.RoleMasterAdmin},
		{ID: 2, Code: model.RoleWarehouseManager},
	}}
	return NewUserService(users, fakePrivileges{}, roles, quietLogger()), users
}

func TestUserService_CreateUser(t *testing.T) {
	svc, users := newUserFixture()

	user, err := svc.CreateUser(&CreateUserRequest{
		Email:    "  Cellar@Example.com ",
		Password: "s3cret-pass",
		FullName: "Cellar Manager",
		RoleID:   2,
	}, testUser)
	require.NoError(t, err)

	assert.Equal(t, "cellar@example.com", user.Email)
	assert.True(t, user.IsActive)
	require.NotNil(t, user.RoleID)
	assert.Equal(t, uint(2), *user.RoleID)
	assert.True(t, users.users[user.ID].CheckPassword("s3cret-pass"))
}

func TestUserService_CreateUserRejections(t *testing.T) {
	svc, _ := newUserFixture()
	_, err := svc.CreateUser(&CreateUserRequest{Email: "a@example.com", Password: "s3cret-pass", FullName: "A", RoleID: 2}, testUser)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  CreateUserRequest
		kind apperr.Kind
	}{
		{"duplicate email", CreateUserRequest{Email: "A@example.com", Password: "s3cret-pass", FullName: "B", RoleID: 2}, apperr.KindValidation},
		{"short password", CreateUserRequest{Email: "b@example.com", Password: "123", FullName: "B", RoleID: 2}, apperr.KindValidation},
		{"bad email", CreateUserRequest{Email: "not-an-email", Password: "s3cret-pass", FullName: "B", RoleID: 2}, apperr.KindValidation},
		{"unknown role", CreateUserRequest{Email: "c@example.com", Password: "s3cret-pass", FullName: "C", RoleID: 99}, apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.CreateUser(&req, testUser)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestUserService_UpdateUserDeactivates(t *testing.T) {
	svc, _ := newUserFixture()
	created, err := svc.CreateUser(&CreateUserRequest{Email: "a@example.com", Password: "s3cret-pass", FullName: "A", RoleID: 2}, testUser)
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdateUser(created.ID, &UpdateUserRequest{
		Email:    "a@example.com",
		FullName: "A Renamed",
		RoleID:   1,
		IsActive: &inactive,
	}, testUser)
	require.NoError(t, err)

	assert.Equal(t, "A Renamed", updated.FullName)
	assert.False(t, updated.Active())
	assert.Equal(t, uint(1), *updated.RoleID)
	assert.True(t, updated.CheckPassword("s3cret-pass"), "password kept when omitted")
}

func TestUserService_UpdateUserPrivileges(t *testing.T) {
	svc, _ := newUserFixture()
	created, err := svc.CreateUser(&CreateUserRequest{Email: "a@example.com", Password: "s3cret-pass", FullName: "A", RoleID: 2}, testUser)
	require.NoError(t, err)

	updated, err := svc.UpdateUserPrivileges(created.ID, []string{model.PrivInventoryAdjust, model.PrivInventoryAdjust}, testUser)
	require.NoError(t, err)
	require.Len(t, updated.Privileges, 1)
	assert.Equal(t, model.PrivInventoryAdjust, updated.Privileges[0].Code)

	_, err = svc.UpdateUserPrivileges(created.ID, []string{"bogus:do"}, testUser)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.UpdateUserPrivileges(uuid.New(), nil, testUser)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUserService_GetUsers(t *testing.T) {
	svc, _ := newUserFixture()
	created, err := svc.CreateUser(&CreateUserRequest{Email: "a@example.com", Password: "s3cret-pass", FullName: "A", RoleID: 2}, testUser)
	require.NoError(t, err)

	all, err := svc.GetAllUsers()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	one, err := svc.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", one.Email)
}
