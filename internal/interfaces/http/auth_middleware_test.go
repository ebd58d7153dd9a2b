package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dentalcloud-api/internal/application/audit"
	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	apphttp "github.com/jhoicas/dentalcloud-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/dentalcloud-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testLabID     = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "dentalcloud-test"
	testExpMin    = 60
)

// buildTestApp app mínima: JWT + RBAC delante de un handler que responde 200.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"role": apphttp.GetRole(c)})
		},
	)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testLabID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, method, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_MatrizDeRoles(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		role    string
		status  int
		code    string
	}{
		{"admin en ruta admin", []string{entity.RoleAdmin}, entity.RoleAdmin, http.StatusOK, ""},
		{"accountant en ruta contable", []string{entity.RoleAdmin, entity.RoleAccountant}, entity.RoleAccountant, http.StatusOK, ""},
		{"dentist en ruta de cualquier rol", []string{entity.RoleAdmin, entity.RoleAccountant, entity.RoleDentist}, entity.RoleDentist, http.StatusOK, ""},
		{"dentist en ruta admin", []string{entity.RoleAdmin}, entity.RoleDentist, http.StatusForbidden, "FORBIDDEN"},
		{"accountant en ruta admin", []string{entity.RoleAdmin}, entity.RoleAccountant, http.StatusForbidden, "FORBIDDEN"},
		{"dentist en ruta contable", []string{entity.RoleAdmin, entity.RoleAccountant}, entity.RoleDentist, http.StatusForbidden, "FORBIDDEN"},
		{"rol desconocido", []string{entity.RoleAdmin}, "superuser", http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", []string{entity.RoleAdmin}, "", http.StatusUnauthorized, "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testLabID, tc.role, testIssuer, testExpMin)
			require.NoError(t, err)

			resp := doRequest(t, buildTestApp(tc.allowed...), http.MethodGet, "/protected", "Bearer "+tok)
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.code != "" {
				assert.Equal(t, tc.code, errorCode(t, resp))
			} else {
				resp.Body.Close()
			}
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokensRechazados(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, testLabID, entity.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secret-completamente-distinto", testUserID, testLabID, entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"esquema Basic", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"sin esquema", "solo-un-token", "INVALID_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"token expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"firmado con otro secreto", "Bearer " + foreign, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, buildTestApp(entity.RoleAdmin), http.MethodGet, "/protected", tc.header)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.code, errorCode(t, resp))
		})
	}
}

func TestAuthMiddleware_CargaClaimsYAutorDeAuditoria(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":       apphttp.GetUserID(c),
			"laboratory_id": apphttp.GetLaboratoryID(c),
			"role":          apphttp.GetRole(c),
			"actor":         audit.ActorFrom(c.UserContext()),
		})
	})

	resp := doRequest(t, app, http.MethodGet, "/me", tokenForRole(t, entity.RoleAccountant))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testLabID, body["laboratory_id"])
	assert.Equal(t, entity.RoleAccountant, body["role"])
	assert.Equal(t, testUserID, body["actor"], "las entradas de auditoría llevan el usuario del token")
}

// ──────────────────────────────────────────────────────────────────────────────
// Permisos de las rutas reales
// ──────────────────────────────────────────────────────────────────────────────

// Los casos se cortan en el middleware: el router se monta sin casos de uso.
func TestRouter_PermisosPorRuta(t *testing.T) {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{JWTSecret: testJWTSecret})

	cases := []struct {
		method string
		path   string
		role   string
		status int
		code   string
	}{
		{http.MethodPost, "/api/certificates", entity.RoleAccountant, http.StatusForbidden, "FORBIDDEN"},
		{http.MethodPost, "/api/certificates", entity.RoleDentist, http.StatusForbidden, "FORBIDDEN"},
		{http.MethodPost, "/api/certificates", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{http.MethodGet, "/api/certificates/me", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{http.MethodPost, "/api/signatures", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{http.MethodGet, "/api/fiscal/fec?start=2024-01-01&end=2024-03-31", entity.RoleDentist, http.StatusForbidden, "FORBIDDEN"},
		{http.MethodGet, "/api/fiscal/reports/vat/2024", entity.RoleDentist, http.StatusForbidden, "FORBIDDEN"},
		{http.MethodGet, "/api/fiscal/periods", entity.RoleDentist, http.StatusForbidden, "FORBIDDEN"},
		{http.MethodPost, "/api/fiscal/periods", entity.RoleAccountant, http.StatusForbidden, "FORBIDDEN"},
		{http.MethodPost, "/api/fiscal/periods/p-1/seal", entity.RoleAccountant, http.StatusForbidden, "FORBIDDEN"},
		{http.MethodPost, "/api/fiscal/periods/p-1/seal", entity.RoleDentist, http.StatusForbidden, "FORBIDDEN"},
		{http.MethodGet, "/api/fiscal/periods/p-1/verify", entity.RoleDentist, http.StatusForbidden, "FORBIDDEN"},
		{http.MethodGet, "/api/audit", entity.RoleDentist, http.StatusForbidden, "FORBIDDEN"},
		{http.MethodGet, "/api/audit/verify", entity.RoleDentist, http.StatusForbidden, "FORBIDDEN"},
		{http.MethodGet, "/api/audit/verify", "", http.StatusUnauthorized, "MISSING_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path+" "+tc.role, func(t *testing.T) {
			header := ""
			if tc.role != "" {
				header = tokenForRole(t, tc.role)
			}
			resp := doRequest(t, app, tc.method, tc.path, header)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, errorCode(t, resp))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// pkg/jwt
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testLabID, entity.RoleAccountant, testIssuer, testExpMin)
	require.NoError(t, err)

	id, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, id.UserID)
	assert.Equal(t, testLabID, id.LaboratoryID)
	assert.Equal(t, entity.RoleAccountant, id.Role)
}
