package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupSubscriptionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(nil, nil, nil, false)
	r.PUT("/api/subscriptions", handler.PutSubscription)
	return r
}

func TestPutSubscription_InvalidBody(t *testing.T) {
	router := setupSubscriptionRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())
}

func TestSubscriptionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	alice := env.token("sub-alice", "alice")
	bob := env.token("sub-bob", "bob")
	jsonHeader := map[string]string{"Content-Type": "application/json"}
	endpoint := "https://push.example.com/send/abc%3D"

	w := env.do(http.MethodPut, "/api/subscriptions", "", `{"endpoint":"`+endpoint+`","p256dh":"k","auth":"a"}`, jsonHeader)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPut, "/api/subscriptions", alice, `{"endpoint":"`+endpoint+`","p256dh":"k","auth":"a"}`, jsonHeader)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodGet, "/api/subscriptions?endpoint="+endpoint, alice, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), endpoint)

	w = env.do(http.MethodGet, "/api/subscriptions?endpoint="+endpoint, bob, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "subscriptions are private to their owner")

	w = env.do(http.MethodGet, "/api/subscriptions", alice, "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodDelete, "/api/subscriptions", alice, `{"endpoint":"`+endpoint+`"}`, jsonHeader)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/api/subscriptions?endpoint="+endpoint, alice, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
