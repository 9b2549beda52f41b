package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/bid_tracker/utils"
)

func newErrorRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/", handler)
	return router
}

func serve(t *testing.T, router *gin.Engine) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body
}

func TestErrorHandler_MapsDomainErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", utils.ErrNotFound, http.StatusNotFound, "RESOURCE_NOT_FOUND"},
		{"validation", utils.NewValidationError("title", "is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad request", utils.CreateBadRequestError("无效的请求参数"), http.StatusBadRequest, "BAD_REQUEST"},
		{"persistence", &utils.PersistenceError{Op: "save", Err: errors.New("disk full")}, http.StatusInternalServerError, "PERSISTENCE_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newErrorRouter(func(c *gin.Context) {
				_ = c.Error(tc.err)
			})

			status, body := serve(t, router)
			require.Equal(t, tc.status, status)
			require.Equal(t, false, body["success"])
			require.Equal(t, tc.code, body["code"])
		})
	}
}

func TestErrorHandler_UsesLastError(t *testing.T) {
	router := newErrorRouter(func(c *gin.Context) {
		_ = c.Error(errors.New("first"))
		_ = c.Error(utils.ErrNotFound)
	})

	status, _ := serve(t, router)
	require.Equal(t, http.StatusNotFound, status)
}

func TestErrorHandler_KeepsWrittenResponse(t *testing.T) {
	router := newErrorRouter(func(c *gin.Context) {
		_ = c.Error(utils.ErrNotFound)
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	status, body := serve(t, router)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
}

func TestErrorHandler_NoErrors(t *testing.T) {
	router := newErrorRouter(func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{"ok": true}, "")
	})

	status, body := serve(t, router)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
}
