package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/chama/apps/api/echo"
	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/contact"
	"github.com/trezcool/chama/core/event"
	"github.com/trezcool/chama/core/member"
	"github.com/trezcool/chama/core/post"
	"github.com/trezcool/chama/core/user"
	emailsvc "github.com/trezcool/chama/services/email"
	inmemdb "github.com/trezcool/chama/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	conf    *core.Config
	server  *echoapi.Server
	usrRepo user.Repository
	usrSvc  user.ServiceInterface
	mbrSvc  member.ServiceInterface
	evtSvc  event.ServiceInterface
	pstSvc  post.ServiceInterface
	ctSvc   contact.ServiceInterface
}

func newTestConfig() *core.Config {
	return &core.Config{
		TestMode:         true,
		Env:              "TEST",
		AppName:          "Chama",
		SecretKey:        []byte("secret"),
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Chama", Address: "noreply@test.cd"},
		ContactEmail:     mail.Address{Name: "Chama", Address: "contact@test.cd"},

		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,

		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Auth: core.AuthConfig{
			AdminEmails:        []string{"boss@test.cd"},
			SessionLoadTimeout: time.Second,
		},
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}

	conf := newTestConfig()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	usrRepo := inmemdb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	mbrSvc := member.NewService(inmemdb.NewMemberRepository(db))
	evtSvc := event.NewService(inmemdb.NewEventRepository(db))
	pstSvc := post.NewService(inmemdb.NewPostRepository(db))
	ctSvc := contact.NewService(inmemdb.NewContactRepository(db), mailSvc, conf)

	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	member.InitValidators(validate, translator)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     core.NewNopLogger(),
		UserSvc:    usrSvc,
		MemberSvc:  mbrSvc,
		EventSvc:   evtSvc,
		PostSvc:    pstSvc,
		ContactSvc: ctSvc,
		Validate:   validate,
		Translator: translator,
	})

	return &testApp{
		conf:    conf,
		server:  server,
		usrRepo: usrRepo,
		usrSvc:  usrSvc,
		mbrSvc:  mbrSvc,
		evtSvc:  evtSvc,
		pstSvc:  pstSvc,
		ctSvc:   ctSvc,
	}
}

func (app *testApp) createUser(t *testing.T, name, username, email, pwd string, isActive bool) user.User {
	t.Helper()

	usr := user.User{
		Name:      name,
		Username:  username,
		Email:     email,
		IsActive:  isActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if pwd == "" {
		pwd = "password123"
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := app.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func (app *testApp) createMember(t *testing.T, usr user.User, role string) member.Member {
	t.Helper()

	mbr, err := app.mbrSvc.Create(context.Background(), member.NewMember{
		UserID:      usr.ID,
		DisplayName: usr.Name,
		Role:        role,
	})
	if err != nil {
		t.Fatalf("mbrSvc.Create(): %v", err)
	}
	return mbr
}

func (app *testApp) getToken(t *testing.T, usr user.User, role string) string {
	t.Helper()

	claims := echoapi.GetUserClaims(app.conf, usr, role)
	token, err := echoapi.GenerateToken(app.conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func (app *testApp) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	app.server.ServeHTTP(rec, req)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runTable(t *testing.T, app *testApp, tests []httpTest) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			if tt.wantCode == 0 {
				tt.wantCode = http.StatusOK
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.serve(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}
