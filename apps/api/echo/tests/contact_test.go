package tests

import (
	"net/http"
	"testing"

	echoapi "github.com/trezcool/chama/apps/api/echo"
	"github.com/trezcool/chama/core/auth"
	"github.com/trezcool/chama/core/contact"
	emailsvc "github.com/trezcool/chama/services/email"
)

func Test_contactApi(t *testing.T) {
	emailsvc.ClearSentMessages()
	app := newTestApp(t)

	usr := app.createUser(t, "User", "awe", "awe@test.cd", "", true)
	admin := app.createUser(t, "Admin", "admin", "admin@test.cd", "", true)
	memberToken := app.getToken(t, usr, auth.RoleMember)
	adminToken := app.getToken(t, admin, auth.RoleAdmin)

	submission := marchallObj(t, contact.NewMessage{
		Name:    "Visitor",
		Email:   "visitor@test.cd",
		Subject: "Membership",
		Body:    "How do I join?",
	})

	tests := []httpTest{
		{
			name: "submit", method: http.MethodPost, path: "/v1/contact", body: submission,
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Thank you for reaching out. We will get back to you shortly."}),
		},
		{
			name: "invalid submission", method: http.MethodPost, path: "/v1/contact",
			body:     marchallObj(t, contact.NewMessage{Name: "X"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "inbox requires auth", path: "/v1/contact",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "inbox requires a manager", path: "/v1/contact", token: memberToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	runTable(t, app, tests)

	t.Run("manager reads the inbox", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/contact", adminToken)
		app.serve(req, rec)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}
	})

	t.Run("submission forwarded to org inbox", func(t *testing.T) {
		if len(emailsvc.SentMessages) == 0 {
			t.Fatal("no email sent")
		}
		sent := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
		if len(sent.To) != 1 || sent.To[0].Address != app.conf.ContactEmail.Address {
			t.Errorf("To = %+v, want the org contact inbox", sent.To)
		}
	})
}
