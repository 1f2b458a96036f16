package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/examhub-dev/examhub/ecode"
	"github.com/examhub-dev/examhub/logging/logger"
	"github.com/examhub-dev/examhub/net/resp"

	"github.com/gin-gonic/gin"
)

func TestUpcomingTasksRejectsMalformedDays(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/tasks/upcoming?days=abc", nil)

	h := New(nil, logger.StdLogger())
	h.upcomingTasks(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body resp.Exception
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Code != ecode.RequestErr {
		t.Errorf("code = %d, want %d", body.Code, ecode.RequestErr)
	}
}
