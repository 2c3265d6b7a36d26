package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/chama/core/auth"
	"github.com/trezcool/chama/core/member"
)

func Test_memberApi(t *testing.T) {
	app := newTestApp(t)

	usr := app.createUser(t, "User", "awe", "awe@test.cd", "", true)
	mbr := app.createMember(t, usr, auth.RoleMember)
	editor := app.createUser(t, "Editor", "editor", "editor@test.cd", "", true)
	edMbr := app.createMember(t, editor, auth.RoleEditor)
	admin := app.createUser(t, "Admin", "admin", "admin@test.cd", "", true)
	admMbr := app.createMember(t, admin, auth.RoleAdmin)

	memberToken := app.getToken(t, usr, auth.RoleMember)
	editorToken := app.getToken(t, editor, auth.RoleEditor)
	adminToken := app.getToken(t, admin, auth.RoleAdmin)

	newMbr := marchallObj(t, member.NewMember{UserID: "some-user-id", DisplayName: "New Guy"})

	tests := []httpTest{
		{
			name: "auth required", path: "/v1/members",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "any member can browse the directory", path: "/v1/members", token: memberToken,
			wantData: marchallList(t, mbr, edMbr, admMbr),
		},
		{
			name: "filter by role", path: "/v1/members?role=editor", token: memberToken,
			wantData: marchallList(t, edMbr),
		},
		{
			name: "member retrieve", path: "/v1/members/" + editor.ID, token: memberToken,
			wantData: marchallObj(t, edMbr),
		},
		{
			name: "unknown member", path: "/v1/members/nope", token: memberToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "create takes a manager", method: http.MethodPost, path: "/v1/members", token: editorToken,
			body: newMbr, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "peer update forbidden", method: http.MethodPut, path: "/v1/members/" + editor.ID, token: memberToken,
			body:     marchallObj(t, map[string]string{"display_name": "Hax"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "self role change forbidden", method: http.MethodPut, path: "/v1/members/" + usr.ID, token: memberToken,
			body:     marchallObj(t, map[string]string{"role": auth.RoleAdmin}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "delete takes a manager", method: http.MethodDelete, path: "/v1/members/" + usr.ID, token: editorToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	runTable(t, app, tests)

	t.Run("self update", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"display_name": "Awe!", "bio": "hello there"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/members/"+usr.ID, memberToken, body)
		app.serve(req, rec)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}
	})

	t.Run("manager promotes a member", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"role": auth.RoleEditor})
		req, rec := newAuthRequest(http.MethodPut, "/v1/members/"+usr.ID, adminToken, body)
		app.serve(req, rec)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}
	})
}
