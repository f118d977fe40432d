package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freeark_web/internal/model"
	"freeark_web/internal/service"
	"freeark_web/pkg/token"

	"github.com/gin-gonic/gin"
)

type fakeUserService struct {
	service.UserService
	getProfileFn func(username string) (*model.User, error)
}

func (f *fakeUserService) GetProfile(username string) (*model.User, error) {
	return f.getProfileFn(username)
}

type fakeChecker struct {
	revoked map[string]bool
	err     error
}

func (f *fakeChecker) Contains(_ context.Context, tok string) (bool, error) {
	return f.revoked[tok], f.err
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func newJWT() *token.JWTManager {
	return token.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func userSvc(role string) *fakeUserService {
	return &fakeUserService{getProfileFn: func(username string) (*model.User, error) {
		return &model.User{ID: 1, Username: username, Role: role}, nil
	}}
}

func newRouter(jm *token.JWTManager, checker TokenChecker, svc service.UserService) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger())
	auth := r.Group("/", AuthMiddleware(jm, checker, svc))
	auth.GET("/me", func(c *gin.Context) {
		u, _ := c.Get(ContextUser)
		tok, _ := c.Get(ContextToken)
		if tok == "" {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, u.(*model.User).Username)
	})
	auth.GET("/admin", AdminAuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func get(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Success(t *testing.T) {
	jm := newJWT()
	access, _, _ := jm.GenerateToken(1, "alice", model.RoleUser)
	r := newRouter(jm, &fakeChecker{}, userSvc(model.RoleUser))

	w := get(r, "/me", "Bearer "+access)
	if w.Code != http.StatusOK || w.Body.String() != "alice" {
		t.Fatalf("expect 200 alice, got %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expect request id header")
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	jm := newJWT()
	access, refresh, _ := jm.GenerateToken(1, "alice", model.RoleUser)

	cases := []struct {
		name    string
		header  string
		checker *fakeChecker
		svc     *fakeUserService
		want    int
	}{
		{"missing header", "", &fakeChecker{}, userSvc(model.RoleUser), http.StatusUnauthorized},
		{"wrong scheme", "Token " + access, &fakeChecker{}, userSvc(model.RoleUser), http.StatusUnauthorized},
		{"garbage token", "Bearer abc", &fakeChecker{}, userSvc(model.RoleUser), http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, &fakeChecker{}, userSvc(model.RoleUser), http.StatusUnauthorized},
		{"revoked", "Bearer " + access, &fakeChecker{revoked: map[string]bool{access: true}}, userSvc(model.RoleUser), http.StatusUnauthorized},
		{"redis error", "Bearer " + access, &fakeChecker{err: errors.New("down")}, userSvc(model.RoleUser), http.StatusInternalServerError},
		{"user deleted", "Bearer " + access, &fakeChecker{}, &fakeUserService{getProfileFn: func(string) (*model.User, error) {
			return nil, service.ErrUserNotFound
		}}, http.StatusUnauthorized},
		{"db error", "Bearer " + access, &fakeChecker{}, &fakeUserService{getProfileFn: func(string) (*model.User, error) {
			return nil, service.ErrInternal
		}}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(jm, tc.checker, tc.svc)
			if w := get(r, "/me", tc.header); w.Code != tc.want {
				t.Fatalf("expect %d, got %d body=%s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	jm := newJWT()
	access, _, _ := jm.GenerateToken(1, "alice", model.RoleUser)

	if w := get(newRouter(jm, &fakeChecker{}, userSvc(model.RoleUser)), "/admin", "Bearer "+access); w.Code != http.StatusForbidden {
		t.Fatalf("expect 403 for normal user, got %d", w.Code)
	}
	if w := get(newRouter(jm, &fakeChecker{}, userSvc(model.RoleAdmin)), "/admin", "Bearer "+access); w.Code != http.StatusOK {
		t.Fatalf("expect 200 for admin, got %d", w.Code)
	}
}

func TestAdminAuthMiddleware_NoUser(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AdminAuthMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := get(r, "/admin", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expect 401, got %d", w.Code)
	}
}

func TestRequestLogger_KeepsIncomingID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expect request id abc-123, got %q", got)
	}
}
