package review

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
)

func validationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := func(c *gin.Context) { c.Set("user_id", "u-test") }
	r.POST("/rankings/session", auth, StartRankingSession)
	r.PUT("/reviews/:id", auth, UpdateReview)
	return r
}

func performJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStartRankingSession_RejectsBlankComment(t *testing.T) {
	r := validationRouter()

	w := performJSON(r, http.MethodPost, "/rankings/session",
		`{"name":"Jinmi Sikdang","comment":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Commentaire requis")
}

func TestStartRankingSession_RejectsLongComment(t *testing.T) {
	r := validationRouter()

	long := strings.Repeat("아", 31)
	w := performJSON(r, http.MethodPost, "/rankings/session",
		`{"name":"Jinmi Sikdang","comment":"`+long+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "trop long")
}

func TestUpdateReview_RejectsEmptyComment(t *testing.T) {
	r := validationRouter()
	id := gocql.TimeUUID().String()

	w := performJSON(r, http.MethodPut, "/reviews/"+id, `{"comment":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Commentaire requis")

	w = performJSON(r, http.MethodPut, "/reviews/"+id, `{"comment":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateReview_RejectsLongComment(t *testing.T) {
	r := validationRouter()
	id := gocql.TimeUUID().String()

	w := performJSON(r, http.MethodPut, "/reviews/"+id,
		`{"comment":"`+strings.Repeat("a", 31)+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "trop long")
}
