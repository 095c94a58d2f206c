package echoapi

import (
	"bytes"
	"context"
	"io/ioutil"
	stdlog "log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/safeschool/drillready/core"
	"github.com/safeschool/drillready/core/account"
	"github.com/safeschool/drillready/services/logger"
	"github.com/safeschool/drillready/storage/database/inmem"
)

func newTestConfig() *core.Config {
	return &core.Config{
		TestMode:       true,
		Env:            "TEST",
		AppName:        "DrillReady",
		SecretKey:      []byte("secret"),
		FrontendOrigin: "http://localhost:3000",
		Server: core.ServerConfig{
			JWTExpirationDelta: 10 * time.Minute,
			ShutdownTimeout:    time.Second,
		},
	}
}

func newTestServer(t *testing.T) (Server, *account.Service, *Auth, *core.Config) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("newTestServer() failed: %v", err)
	}
	svc := account.NewService(inmemdb.NewAccountRepository(db), nil, "DrillReady")

	conf := newTestConfig()
	srv := NewServer(&Options{
		Conf:           conf,
		Logger:         logsvc.NewStdLogger(stdlog.New(ioutil.Discard, "", 0)),
		AccountSvc:     svc,
		DisableReqLogs: true,
	})
	return srv, svc, ConfigureAuth(conf), conf
}

func createAccount(t *testing.T, svc *account.Service, name, email, pwd, role, school string) account.Account {
	t.Helper()

	acct, err := svc.Register(context.Background(), account.NewAccount{
		Name:     name,
		Email:    email,
		Password: pwd,
		Role:     role,
		SchoolID: school,
	})
	if err != nil {
		t.Fatalf("createAccount() failed: %v", err)
	}
	return acct
}

func getToken(t *testing.T, auth *Auth, acct account.Account) string {
	t.Helper()

	token, err := auth.GenerateToken(auth.GetAccountClaims(acct))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func getExpiredToken(t *testing.T, auth *Auth, acct account.Account) string {
	t.Helper()

	claims := auth.GetAccountClaims(acct)
	claims.IssuedAt = time.Now().Add(-2 * time.Hour).Unix()
	claims.ExpiresAt = time.Now().Add(-time.Hour).Unix()
	token, err := auth.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getExpiredToken() failed: %v", err)
	}
	return token
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

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData string
}
