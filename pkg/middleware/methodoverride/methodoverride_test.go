package methodoverride

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/dataSiswa", func(c *gin.Context) { c.String(http.StatusOK, "post") })
	r.PUT("/dataSiswa", func(c *gin.Context) { c.String(http.StatusOK, "put:"+c.PostForm("nisn")) })
	r.DELETE("/dataSiswa", func(c *gin.Context) { c.String(http.StatusOK, "delete:"+c.PostForm("nisn")) })
	return Wrap(r)
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestOverrideFromQuery(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, formRequest("/dataSiswa?_method=DELETE", url.Values{"nisn": {"111"}}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "delete:111", rec.Body.String())
}

func TestOverrideFromFormField(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, formRequest("/dataSiswa", url.Values{"_method": {"put"}, "nisn": {"222"}}))

	assert.Equal(t, "put:222", rec.Body.String())
}

func TestOverrideFromHeader(t *testing.T) {
	req := formRequest("/dataSiswa", url.Values{"nisn": {"333"}})
	req.Header.Set(HeaderName, "DELETE")
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	assert.Equal(t, "delete:333", rec.Body.String())
}

func TestUnsupportedOverrideIgnored(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, formRequest("/dataSiswa?_method=TRACE", url.Values{}))
	assert.Equal(t, "post", rec.Body.String())

	rec = httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dataSiswa?_method=DELETE", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
