package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	loans   *MockLoanService
	reviews *MockReviewService
	users   *MockReputationService
	items   *MockItemService
}

func newTestServer() *testServer {
	s := &testServer{
		loans:   new(MockLoanService),
		reviews: new(MockReviewService),
		users:   new(MockReputationService),
		items:   new(MockItemService),
	}

	s.router = SetupRoutes(Handlers{
		Items:   NewItemHandler(s.items),
		Loans:   NewLoanHandler(s.loans),
		Reviews: NewReviewHandler(s.reviews),
		Users:   NewUserHandler(s.users),
	}, NewAuthMiddleware(testSecret))

	return s
}

func signToken(t *testing.T, secret, userID string, ttl time.Duration) string {
	t.Helper()

	claims := JWTClaims{
		UserID: userID,
		Email:  userID + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// do выполняет запрос от имени userID. Пустой userID - запрос без токена.
func (s *testServer) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, userID, time.Hour))
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["error"]
}
