package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Agenda-api/internal/application/apptest"
	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/policy"
	"github.com/jhoicas/Agenda-api/internal/application/usecase"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

type fixture struct {
	store   *apptest.Store
	users   *usecase.UserUseCase
	sectors *usecase.SectorUseCase
	audit   *usecase.AuditUseCase
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := apptest.NewStore()
	apptest.Seed(store, "hash")
	repos := store.Repos()
	provider := policy.NewProvider(repos.Sectors, nil)
	return fixture{
		store:   store,
		users:   usecase.NewUserUseCase(repos.Users, store, provider, logger.Nop()).WithBcryptCost(bcrypt.MinCost),
		sectors: usecase.NewSectorUseCase(repos.Sectors, repos.Users, store, provider, logger.Nop()),
		audit:   usecase.NewAuditUseCase(repos.Audit, logger.Nop()),
	}
}

func ptr[T any](v T) *T { return &v }

func ids(items []dto.UserResponse) []int64 {
	out := make([]int64, 0, len(items))
	for _, u := range items {
		out = append(out, u.ID)
	}
	return out
}

// ─── Usuarios: listado por alcance ────────────────────────────────────────────

func TestUserList_AdminVeTodos(t *testing.T) {
	f := newFixture(t)
	out, err := f.users.List(context.Background(), f.store.Actor(apptest.UserAdmin), dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 6)
}

func TestUserList_ManagerVeSuSubarbol(t *testing.T) {
	f := newFixture(t)
	out, err := f.users.List(context.Background(), f.store.Actor(apptest.UserManagerDAF), dto.PageRequest{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{apptest.UserManagerDAF, apptest.UserCollabBuying}, ids(out.Items))
}

func TestUserList_ColaboradorSoloSeVeASiMismo(t *testing.T) {
	f := newFixture(t)
	out, err := f.users.List(context.Background(), f.store.Actor(apptest.UserCollabIT), dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int64{apptest.UserCollabIT}, ids(out.Items))
}

func TestUserGet_ManagerNoVeOtroSector(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Get(context.Background(), f.store.Actor(apptest.UserManagerDAF), apptest.UserCollabIT)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	u, err := f.users.Get(context.Background(), f.store.Actor(apptest.UserManagerDAF), apptest.UserCollabBuying)
	require.NoError(t, err)
	assert.Equal(t, "Compras", u.SectorName)
}

// ─── Usuarios: altas y ediciones ──────────────────────────────────────────────

func TestUserCreate_ManagerCreaColaboradorEnSubsector(t *testing.T) {
	f := newFixture(t)
	out, err := f.users.Create(context.Background(), f.store.Actor(apptest.UserManagerDAF), dto.CreateUserRequest{
		Email: "novo@org.br", Password: "12345678", Name: "Novo", Role: "collaborator", SectorID: apptest.SectorAccounting,
	})
	require.NoError(t, err)
	assert.Equal(t, "COLLABORATOR", out.Role)
	assert.Equal(t, "Contabilidade", out.SectorName)

	entries := f.store.Audit()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditCreateUser, entries[0].Action)
}

func TestUserCreate_ManagerNoPuedeOtorgarManager(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Create(context.Background(), f.store.Actor(apptest.UserManagerDAF), dto.CreateUserRequest{
		Email: "novo@org.br", Password: "12345678", Role: "MANAGER", SectorID: apptest.SectorPurchasing,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUserCreate_ManagerFueraDeAlcance(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Create(context.Background(), f.store.Actor(apptest.UserManagerDAF), dto.CreateUserRequest{
		Email: "novo@org.br", Password: "12345678", Role: "COLLABORATOR", SectorID: apptest.SectorIT,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, f.store.Audit())
}

func TestUserCreate_ColaboradorSinPermiso(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Create(context.Background(), f.store.Actor(apptest.UserCollabBuying), dto.CreateUserRequest{
		Email: "novo@org.br", Password: "12345678", Role: "COLLABORATOR", SectorID: apptest.SectorPurchasing,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUserCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	admin := f.store.Actor(apptest.UserAdmin)
	cases := []struct {
		name string
		in   dto.CreateUserRequest
		want error
	}{
		{"email inválido", dto.CreateUserRequest{Email: "x", Password: "12345678", Role: "ADMIN", SectorID: 1}, domain.ErrInvalidInput},
		{"password corto", dto.CreateUserRequest{Email: "a@b.co", Password: "123", Role: "ADMIN", SectorID: 1}, domain.ErrInvalidInput},
		{"rol desconocido", dto.CreateUserRequest{Email: "a@b.co", Password: "12345678", Role: "ROOT", SectorID: 1}, domain.ErrInvalidInput},
		{"sector inexistente", dto.CreateUserRequest{Email: "a@b.co", Password: "12345678", Role: "ADMIN", SectorID: 99}, domain.ErrInvalidInput},
		{"email duplicado", dto.CreateUserRequest{Email: "ANA@org.br", Password: "12345678", Role: "ADMIN", SectorID: 1}, domain.ErrEmailAlreadyExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.users.Create(context.Background(), admin, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUserUpdate_ManagerMueveDentroDeSuSubarbol(t *testing.T) {
	f := newFixture(t)
	ana := f.store.Actor(apptest.UserManagerDAF)

	out, err := f.users.Update(context.Background(), ana, apptest.UserCollabBuying, dto.UpdateUserRequest{SectorID: ptr(apptest.SectorAccounting)})
	require.NoError(t, err)
	assert.Equal(t, apptest.SectorAccounting, out.SectorID)

	_, err = f.users.Update(context.Background(), ana, apptest.UserCollabBuying, dto.UpdateUserRequest{SectorID: ptr(apptest.SectorIT)})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUserUpdate_ColaboradorNoEdita(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Update(context.Background(), f.store.Actor(apptest.UserCollabBuying), apptest.UserCollabBuying, dto.UpdateUserRequest{Name: ptr("Bia 2")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUserUpdate_ITAdminNoPuedeOtorgarAdmin(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Update(context.Background(), f.store.Actor(apptest.UserITAdmin), apptest.UserCollabIT, dto.UpdateUserRequest{Role: ptr("ADMIN")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.users.Update(context.Background(), f.store.Actor(apptest.UserITAdmin), apptest.UserCollabIT, dto.UpdateUserRequest{Role: ptr("MANAGER")})
	require.NoError(t, err)
	assert.Equal(t, "MANAGER", out.Role)
}

// adminEnDAF agrega un ADMIN dentro del subárbol de Ana y del Presidente.
const adminEnDAF int64 = 50

func sembrarAdminEnDAF(f fixture) {
	f.store.AddUser(entity.User{ID: adminEnDAF, Email: "admin2@org.br", Name: "Admin DAF", Role: entity.RoleAdmin, SectorID: apptest.SectorDAF, PasswordHash: "hash"})
}

func TestUserUpdate_ManagerNoDegradaNiRecontraseñaAdmin(t *testing.T) {
	f := newFixture(t)
	sembrarAdminEnDAF(f)
	ana := f.store.Actor(apptest.UserManagerDAF)

	_, err := f.users.Update(context.Background(), ana, adminEnDAF, dto.UpdateUserRequest{Role: ptr("COLLABORATOR"), Password: ptr("pwned1234")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.users.Update(context.Background(), ana, adminEnDAF, dto.UpdateUserRequest{Name: ptr("Otro")})
	assert.ErrorIs(t, err, domain.ErrForbidden, "tampoco cambios menores sobre un rol superior")

	u := f.store.User(adminEnDAF)
	assert.Equal(t, entity.RoleAdmin, u.Role)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Equal(t, "Admin DAF", u.Name)
}

func TestUserUpdate_ITAdminNoDegradaAdmin(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Update(context.Background(), f.store.Actor(apptest.UserITAdmin), apptest.UserAdmin, dto.UpdateUserRequest{Role: ptr("COLLABORATOR")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, entity.RoleAdmin, f.store.User(apptest.UserAdmin).Role)
}

func TestUserUpdate_PasswordAjenaExigeResetPasswords(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Update(context.Background(), f.store.Actor(apptest.UserManagerDAF), apptest.UserCollabBuying, dto.UpdateUserRequest{Password: ptr("nova-senha")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "hash", f.store.User(apptest.UserCollabBuying).PasswordHash)

	_, err = f.users.Update(context.Background(), f.store.Actor(apptest.UserAdmin), apptest.UserCollabIT, dto.UpdateUserRequest{Password: ptr("nova-senha")})
	assert.ErrorIs(t, err, domain.ErrForbidden, "ADMIN no tiene reset_passwords")

	_, err = f.users.Update(context.Background(), f.store.Actor(apptest.UserITAdmin), apptest.UserCollabIT, dto.UpdateUserRequest{Password: ptr("nova-senha")})
	require.NoError(t, err)
	hash := f.store.User(apptest.UserCollabIT).PasswordHash
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("nova-senha")))
}

func TestUserUpdate_PropiaPasswordPermitida(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Update(context.Background(), f.store.Actor(apptest.UserManagerDAF), apptest.UserManagerDAF, dto.UpdateUserRequest{Password: ptr("minha-senha")})
	require.NoError(t, err)
	hash := f.store.User(apptest.UserManagerDAF).PasswordHash
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("minha-senha")))
}

func TestUserDelete_ManagerNoEliminaAdminDeSuSubarbol(t *testing.T) {
	f := newFixture(t)
	sembrarAdminEnDAF(f)

	err := f.users.Delete(context.Background(), f.store.Actor(apptest.UserPresident), adminEnDAF)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.NotNil(t, f.store.User(adminEnDAF))

	err = f.users.Delete(context.Background(), f.store.Actor(apptest.UserPresident), apptest.UserManagerDAF)
	assert.ErrorIs(t, err, domain.ErrForbidden, "MANAGER no elimina a otro MANAGER")

	require.NoError(t, f.users.Delete(context.Background(), f.store.Actor(apptest.UserAdmin), adminEnDAF))
}

func TestUserDelete(t *testing.T) {
	f := newFixture(t)

	err := f.users.Delete(context.Background(), f.store.Actor(apptest.UserITAdmin), apptest.UserCollabIT)
	assert.ErrorIs(t, err, domain.ErrForbidden, "IT_ADMIN no tiene delete_user")

	err = f.users.Delete(context.Background(), f.store.Actor(apptest.UserAdmin), apptest.UserAdmin)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, f.users.Delete(context.Background(), f.store.Actor(apptest.UserManagerDAF), apptest.UserCollabBuying))
	assert.Nil(t, f.store.User(apptest.UserCollabBuying))

	err = f.users.Delete(context.Background(), f.store.Actor(apptest.UserAdmin), 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserResetPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.ResetPassword(context.Background(), f.store.Actor(apptest.UserAdmin), apptest.UserCollabIT, dto.ResetPasswordRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.users.ResetPassword(context.Background(), f.store.Actor(apptest.UserITAdmin), apptest.UserCollabIT, dto.ResetPasswordRequest{})
	require.NoError(t, err)
	require.Len(t, out.TemporaryPassword, 12)
	hash := f.store.User(apptest.UserCollabIT).PasswordHash
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(out.TemporaryPassword)))

	out, err = f.users.ResetPassword(context.Background(), f.store.Actor(apptest.UserITAdmin), apptest.UserCollabIT, dto.ResetPasswordRequest{NewPassword: "nova-senha"})
	require.NoError(t, err)
	assert.Empty(t, out.TemporaryPassword)
}

// ─── Sectores ─────────────────────────────────────────────────────────────────

func TestSectorList_PorAlcance(t *testing.T) {
	f := newFixture(t)

	all, err := f.sectors.List(context.Background(), f.store.Actor(apptest.UserAdmin))
	require.NoError(t, err)
	assert.Len(t, all, 5)

	mine, err := f.sectors.List(context.Background(), f.store.Actor(apptest.UserManagerDAF))
	require.NoError(t, err)
	got := []int64{}
	for _, s := range mine {
		got = append(got, s.ID)
	}
	assert.ElementsMatch(t, []int64{apptest.SectorDAF, apptest.SectorPurchasing, apptest.SectorAccounting}, got)
}

func TestSectorGet_FichaConMiembrosEHijos(t *testing.T) {
	f := newFixture(t)
	out, err := f.sectors.Get(context.Background(), f.store.Actor(apptest.UserManagerDAF), apptest.SectorDAF)
	require.NoError(t, err)

	assert.Equal(t, 2, out.SubSectors)
	assert.Len(t, out.Children, 2)
	assert.Equal(t, []int64{apptest.UserManagerDAF}, ids(out.Members))
	assert.Equal(t, []int64{apptest.SectorDAF, apptest.SectorPurchasing, apptest.SectorAccounting}, out.Accessible)
	assert.Nil(t, out.Manager)

	_, err = f.sectors.Get(context.Background(), f.store.Actor(apptest.UserManagerDAF), apptest.SectorIT)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.sectors.Get(context.Background(), f.store.Actor(apptest.UserAdmin), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSectorAccessible_AdminDesdePresidencia(t *testing.T) {
	f := newFixture(t)
	out, err := f.sectors.Accessible(context.Background(), f.store.Actor(apptest.UserAdmin), apptest.SectorPresidency)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 4, 5}, out.Accessible)
}

func TestSectorCreate(t *testing.T) {
	f := newFixture(t)

	_, err := f.sectors.Create(context.Background(), f.store.Actor(apptest.UserManagerDAF), dto.SectorRequest{Name: "Novo"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.sectors.Create(context.Background(), f.store.Actor(apptest.UserAdmin), dto.SectorRequest{Name: "Novo", ParentID: ptr(int64(77))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := f.sectors.Create(context.Background(), f.store.Actor(apptest.UserAdmin), dto.SectorRequest{
		Name: " Jurídico ", ParentID: ptr(apptest.SectorPresidency), ManagerID: ptr(apptest.UserPresident),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jurídico", out.Name)
}

func TestSectorUpdate_RechazaCiclo(t *testing.T) {
	f := newFixture(t)
	admin := f.store.Actor(apptest.UserAdmin)

	_, err := f.sectors.Update(context.Background(), admin, apptest.SectorDAF, dto.SectorRequest{Name: "DAF", ParentID: ptr(apptest.SectorPurchasing)})
	assert.ErrorIs(t, err, domain.ErrSectorCycle)

	_, err = f.sectors.Update(context.Background(), admin, apptest.SectorDAF, dto.SectorRequest{Name: "DAF", ParentID: ptr(apptest.SectorDAF)})
	assert.ErrorIs(t, err, domain.ErrSectorCycle)

	out, err := f.sectors.Update(context.Background(), admin, apptest.SectorDAF, dto.SectorRequest{Name: "DAF", ParentID: ptr(apptest.SectorIT)})
	require.NoError(t, err)
	assert.Equal(t, apptest.SectorIT, *out.ParentID)
}

func TestSectorUpdate_ManagerEditaSuSectorSinMoverlo(t *testing.T) {
	f := newFixture(t)
	ana := f.store.Actor(apptest.UserManagerDAF)

	out, err := f.sectors.Update(context.Background(), ana, apptest.SectorDAF, dto.SectorRequest{
		Name: "DAF", Description: "Administração e Finanças", ParentID: ptr(apptest.SectorPresidency),
	})
	require.NoError(t, err)
	assert.Equal(t, "Administração e Finanças", out.Description)

	_, err = f.sectors.Update(context.Background(), ana, apptest.SectorDAF, dto.SectorRequest{Name: "DAF"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.sectors.Update(context.Background(), ana, apptest.SectorPurchasing, dto.SectorRequest{Name: "Compras", ParentID: ptr(apptest.SectorDAF)})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSectorDelete(t *testing.T) {
	f := newFixture(t)
	admin := f.store.Actor(apptest.UserAdmin)

	assert.ErrorIs(t, f.sectors.Delete(context.Background(), admin, apptest.SectorDAF), domain.ErrConflict)
	assert.ErrorIs(t, f.sectors.Delete(context.Background(), f.store.Actor(apptest.UserManagerDAF), apptest.SectorAccounting), domain.ErrForbidden)
	require.NoError(t, f.sectors.Delete(context.Background(), admin, apptest.SectorAccounting))

	entries := f.store.Audit()
	require.NotEmpty(t, entries)
	assert.Equal(t, entity.AuditDeleteSector, entries[len(entries)-1].Action)
}

// ─── Bitácora ─────────────────────────────────────────────────────────────────

func TestAuditList_SoloConViewLogs(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sectors.Delete(context.Background(), f.store.Actor(apptest.UserAdmin), apptest.SectorAccounting))

	_, err := f.audit.List(context.Background(), f.store.Actor(apptest.UserAdmin), dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.audit.List(context.Background(), f.store.Actor(apptest.UserITAdmin), dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, entity.AuditDeleteSector, out[0].Action)
}
