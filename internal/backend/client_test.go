package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/convergenps/sheetctl/internal/domain"
	"github.com/go-faker/faker/v4"
)

func testCreds() domain.Credentials {
	return domain.Credentials{
		Email:    faker.Email(),
		Password: faker.Password(),
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLogin_TopLevelToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad login body: %v", err)
		}
		if req["email"] == "" || req["password"] == "" {
			t.Errorf("missing credentials in body: %v", req)
		}
		json.NewEncoder(w).Encode(map[string]string{"accessToken": "tok-1"})
	})

	token, err := c.Login(context.Background(), testCreds())
	if err != nil {
		t.Fatal(err)
	}
	if token != "tok-1" {
		t.Fatalf("expected tok-1, got %q", token)
	}
}

func TestLogin_NestedToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"accessToken": "tok-2"},
		})
	})

	token, err := c.Login(context.Background(), testCreds())
	if err != nil {
		t.Fatal(err)
	}
	if token != "tok-2" {
		t.Fatalf("expected tok-2, got %q", token)
	}
}

func TestLogin_TopLevelShapeWinsOverNested(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"accessToken": "outer",
			"data":        map[string]string{"accessToken": "inner"},
		})
	})

	token, err := c.Login(context.Background(), testCreds())
	if err != nil {
		t.Fatal(err)
	}
	if token != "outer" {
		t.Fatalf("expected outer token to win, got %q", token)
	}
}

func TestLogin_NoTokenInResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "welcome"})
	})

	_, err := c.Login(context.Background(), testCreds())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Status != http.StatusOK {
		t.Fatalf("expected status 200 recorded, got %d", authErr.Status)
	}
	if authErr.Err == nil {
		t.Fatal("expected a descriptive error distinct from a transport failure")
	}
}

func TestLogin_Non200(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"bad credentials"}`, http.StatusUnauthorized)
	})

	_, err := c.Login(context.Background(), testCreds())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", authErr.Status)
	}
	if authErr.Body == "" {
		t.Fatal("expected raw body kept for diagnostics")
	}
}

func TestLogin_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Login(context.Background(), testCreds())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Err == nil {
		t.Fatal("expected underlying transport error kept")
	}
}

func TestLogin_EmptyCredentials(t *testing.T) {
	c, err := New("http://localhost:1")
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Login(context.Background(), domain.Credentials{})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError for empty credentials, got %v", err)
	}
}

func TestImport_DecodesResultVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/smartsheet/import/attendees" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header: %q", got)
		}
		w.Write([]byte(`{"data":{"imported":3,"updated":1,"failed":2,
			"errors":[{"row":5,"message":"bad date"},{"row":9,"message":"missing email"}]}}`))
	})

	res, err := c.Import(context.Background(), "tok", domain.CategoryAttendees)
	if err != nil {
		t.Fatal(err)
	}

	if res.Category != domain.CategoryAttendees {
		t.Errorf("category = %q", res.Category)
	}
	if res.Imported != 3 || res.Updated != 1 || res.Failed != 2 {
		t.Errorf("counts not reproduced: %+v", res)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %d", len(res.Errors))
	}
	if res.Errors[0].Row != "5" || res.Errors[0].Message != "bad date" {
		t.Errorf("first row error not reproduced: %+v", res.Errors[0])
	}
	if res.Errors[1].Row != "9" || res.Errors[1].Message != "missing email" {
		t.Errorf("second row error not reproduced: %+v", res.Errors[1])
	}
}

func TestImport_MissingFieldsDefaultToZero(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"imported":7}}`))
	})

	res, err := c.Import(context.Background(), "tok", domain.CategorySessions)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 7 || res.Updated != 0 || res.Failed != 0 || len(res.Errors) != 0 {
		t.Fatalf("expected omitted fields defaulted, got %+v", res)
	}
	if !res.OK() {
		t.Fatal("expected result with no failures to be OK")
	}
}

func TestImport_AuthRejectedKind(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusForbidden)
	})

	_, err := c.Import(context.Background(), "tok", domain.CategoryProjects)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Kind != KindAuthRejected {
		t.Fatalf("expected auth_rejected, got %s", terr.Kind)
	}
}

func TestImport_BackendErrorKind(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Import(context.Background(), "tok", domain.CategoryPartners)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Kind != KindBackendError {
		t.Fatalf("expected backend_error, got %s", terr.Kind)
	}
	if terr.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", terr.Status)
	}
}

func TestImport_NetworkErrorKind(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Import(context.Background(), "tok", domain.CategoryAttendees)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Kind != KindNetworkError {
		t.Fatalf("expected network_error, got %s", terr.Kind)
	}
}

func TestImportAll_OpaqueSummary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/smartsheet/import/all" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"data":{"attendees":12,"sessions":4,"notes":"done"}}`))
	})

	summary, err := c.ImportAll(context.Background(), "tok")
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(summary, &decoded); err != nil {
		t.Fatalf("summary not valid JSON: %v", err)
	}
	if decoded["notes"] != "done" {
		t.Fatalf("summary not surfaced as-is: %s", summary)
	}
}
