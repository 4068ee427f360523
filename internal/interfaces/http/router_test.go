package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Agenda-api/internal/application/agenda"
	"github.com/jhoicas/Agenda-api/internal/application/apptest"
	"github.com/jhoicas/Agenda-api/internal/application/auth"
	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/policy"
	"github.com/jhoicas/Agenda-api/internal/application/usecase"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Agenda-api/internal/interfaces/http"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

const testPassword = "segredo123"

type stubPDF struct{}

func (stubPDF) GenerateAgendaPDF(context.Context, agenda.AgendaReport) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

type failingDB struct{}

func (failingDB) Ping(context.Context) error { return domain.ErrUnavailable }

type api struct {
	app   *fiber.App
	store *apptest.Store
}

func newAPI(t *testing.T) api {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	store := apptest.NewStore()
	apptest.Seed(store, string(hash))
	repos := store.Repos()
	provider := policy.NewProvider(repos.Sectors, nil)
	log := logger.Nop()

	app := fiber.New()
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(repos.Users, repos.Audit, provider, auth.NewRevocations(),
			auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log),
		UserUC:    usecase.NewUserUseCase(repos.Users, store, provider, log).WithBcryptCost(bcrypt.MinCost),
		SectorUC:  usecase.NewSectorUseCase(repos.Sectors, repos.Users, store, provider, log),
		AuditUC:   usecase.NewAuditUseCase(repos.Audit, log),
		EventUC:   agenda.NewEventUseCase(repos.Events, store, provider, stubPDF{}, log),
		JWTSecret: testJWTSecret,
		AppName:   "agenda-test",
	})
	return api{app: app, store: store}
}

func (a api) call(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (a api) login(t *testing.T, email string) string {
	t.Helper()
	resp := a.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: testPassword})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Token
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesInvalidas(t *testing.T) {
	a := newAPI(t)
	resp := a.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@org.br", Password: "errada"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_CuerpoIncompleto(t *testing.T) {
	a := newAPI(t)
	resp := a.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@org.br"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMeYLogout(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "ana@org.br")

	resp := a.call(t, http.MethodGet, "/api/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.MeResponse
	decode(t, resp, &me)
	assert.Equal(t, "Ana", me.User.Name)
	assert.ElementsMatch(t, []int64{apptest.SectorDAF, apptest.SectorPurchasing, apptest.SectorAccounting}, me.AccessibleSectors)

	resp = a.call(t, http.MethodPost, "/api/auth/logout", tok, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.call(t, http.MethodGet, "/api/auth/me", tok, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSesion_UsuarioDesactivadoPierdeAcceso(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "bia@org.br")
	a.store.Deactivate(apptest.UserCollabBuying)

	resp := a.call(t, http.MethodGet, "/api/auth/me", tok, nil)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "INACTIVE_USER")

	resp = a.call(t, http.MethodGet, "/api/events", tok, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSesion_UsuarioEliminadoPierdeAcceso(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "bia@org.br")

	resp := a.call(t, http.MethodDelete, "/api/users/"+itoa(apptest.UserCollabBuying), a.login(t, "admin@org.br"), nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.call(t, http.MethodGet, "/api/auth/me", tok, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSesion_RolDegradadoRigeSinNuevoLogin(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "ana@org.br")

	ana := a.store.User(apptest.UserManagerDAF)
	ana.Role = entity.RoleCollaborator
	a.store.AddUser(*ana)

	resp := a.call(t, http.MethodPost, "/api/users", tok, dto.CreateUserRequest{
		Email: "novo@org.br", Password: "12345678", Name: "Novo", Role: "COLLABORATOR", SectorID: apptest.SectorPurchasing,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.call(t, http.MethodGet, "/api/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.MeResponse
	decode(t, resp, &me)
	assert.Equal(t, "COLLABORATOR", me.User.Role)
	assert.Equal(t, []int64{apptest.SectorDAF}, me.AccessibleSectors)
}

func TestRequestLogger_PropagaRequestID(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(apphttp.HeaderRequestID, "abc-123")
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc-123", resp.Header.Get(apphttp.HeaderRequestID))

	resp = a.call(t, http.MethodGet, "/health", "", nil)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))
}

func TestHealth_BaseCaida(t *testing.T) {
	app := fiber.New()
	app.Get("/health", apphttp.NewHealthHandler("agenda", failingDB{}, 0).Check)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

// ─── Usuarios y sectores ──────────────────────────────────────────────────────

func TestUsers_ColaboradorNoCrea(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "bia@org.br")
	resp := a.call(t, http.MethodPost, "/api/users", tok, dto.CreateUserRequest{
		Email: "novo@org.br", Password: "12345678", Name: "Novo", Role: "COLLABORATOR", SectorID: apptest.SectorPurchasing,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUsers_EmailDuplicado409(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "ana@org.br")
	resp := a.call(t, http.MethodPost, "/api/users", tok, dto.CreateUserRequest{
		Email: "BIA@org.br", Password: "12345678", Name: "Outra Bia", Role: "COLLABORATOR", SectorID: apptest.SectorPurchasing,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUsers_IDInvalido400(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "admin@org.br")
	resp := a.call(t, http.MethodGet, "/api/users/abc", tok, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUsers_ResetPasswordSoloITAdmin(t *testing.T) {
	a := newAPI(t)
	path := "/api/users/8/reset-password"

	resp := a.call(t, http.MethodPost, path, a.login(t, "admin@org.br"), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.call(t, http.MethodPost, path, a.login(t, "ti@org.br"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.ResetPasswordResponse
	decode(t, resp, &out)
	assert.Len(t, out.TemporaryPassword, 12)
}

func TestSectors_BorrarConMiembros409(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "admin@org.br")
	resp := a.call(t, http.MethodDelete, "/api/sectors/4", tok, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSectors_Ciclo409(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "admin@org.br")
	parent := apptest.SectorPurchasing
	resp := a.call(t, http.MethodPut, "/api/sectors/2", tok, dto.SectorRequest{Name: "DAF", ParentID: &parent})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAudit_SoloViewLogs(t *testing.T) {
	a := newAPI(t)
	resp := a.call(t, http.MethodGet, "/api/audit", a.login(t, "admin@org.br"), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.call(t, http.MethodGet, "/api/audit", a.login(t, "ti@org.br"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []dto.AuditEntryResponse
	decode(t, resp, &entries)
	assert.NotEmpty(t, entries, "los logins quedan en la bitácora")
}

// ─── Eventos ──────────────────────────────────────────────────────────────────

func TestEvents_FlujoCompleto(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "bia@org.br")

	resp := a.call(t, http.MethodPost, "/api/events", tok, map[string]interface{}{
		"type":      "ACTIVITY",
		"title":     "Cotação",
		"startDate": "2026-03-10T10:00:00Z",
		"assignees": []interface{}{9, map[string]interface{}{"userId": 7}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.EventMutationResponse
	decode(t, resp, &created)
	assert.Equal(t, []int64{9, 7}, created.Event.Assignees)
	id := created.Event.ID

	resp = a.call(t, http.MethodGet, "/api/events?categories=atividade&from=2026-03-01&to=2026-03-31", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []dto.EventResponse
	decode(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	resp = a.call(t, http.MethodPatch, "/api/events/"+itoa(id)+"/status", tok, dto.StatusChangeRequest{Column: "em-andamento"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var moved dto.EventResponse
	decode(t, resp, &moved)
	assert.Equal(t, "IN_PROGRESS", moved.Status)

	resp = a.call(t, http.MethodGet, "/api/events/board", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var board dto.BoardResponse
	decode(t, resp, &board)
	require.Len(t, board.Columns, 4)
	assert.Len(t, board.Columns[1].Events, 1)

	// Caio (TI) es asignado: ve el evento pero no puede editarlo.
	caio := a.login(t, "caio@org.br")
	resp = a.call(t, http.MethodGet, "/api/events/"+itoa(id), caio, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = a.call(t, http.MethodDelete, "/api/events/"+itoa(id), caio, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.call(t, http.MethodDelete, "/api/events/"+itoa(id), tok, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.call(t, http.MethodGet, "/api/events/"+itoa(id), tok, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEvents_ChoqueDeReuniones(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "ana@org.br")
	meeting := map[string]interface{}{
		"type": "MEETING", "title": "Orçamento",
		"startDate": "2026-03-10T10:00:00Z", "endDate": "2026-03-10T11:00:00Z",
	}
	resp := a.call(t, http.MethodPost, "/api/events", tok, meeting)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = a.call(t, http.MethodPost, "/api/events/conflicts", tok, map[string]interface{}{
		"startDate": "2026-03-10T10:30:00Z", "endDate": "2026-03-10T12:00:00Z",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var check dto.ConflictCheckResponse
	decode(t, resp, &check)
	assert.True(t, check.HasConflicts)
	assert.Equal(t, "Orçamento", check.Conflicts[0].Title)
}

func TestEvents_DirexProhibidaFueraDeSectorEjecutivo(t *testing.T) {
	a := newAPI(t)
	resp := a.call(t, http.MethodPost, "/api/events", a.login(t, "ana@org.br"), map[string]interface{}{
		"type": "MEETING", "title": "Direx", "startDate": "2026-03-10T10:00:00Z",
		"meeting": map[string]interface{}{"kind": "direx"},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEvents_ValidacionYParametros(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "bia@org.br")

	resp := a.call(t, http.MethodPost, "/api/events", tok, map[string]interface{}{"type": "MEETING", "startDate": "2026-03-10T10:00:00Z"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "título requerido")

	resp = a.call(t, http.MethodGet, "/api/events?from=ontem", tok, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.call(t, http.MethodGet, "/api/events/calendar?from=2026-03-10&to=2026-03-01", tok, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEvents_ExportPDF(t *testing.T) {
	a := newAPI(t)
	resp := a.call(t, http.MethodGet, "/api/events/export.pdf", a.login(t, "bia@org.br"), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "agenda_")
}

func TestEventTypes(t *testing.T) {
	a := newAPI(t)
	resp := a.call(t, http.MethodGet, "/api/event-types", a.login(t, "pres@org.br"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var opts []dto.EventTypeOption
	decode(t, resp, &opts)
	require.Len(t, opts, 4)
	assert.Contains(t, opts[0].Kinds, "direx")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
