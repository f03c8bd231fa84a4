package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-siswa-web/internal/handler"
	"github.com/noah-isme/sma-siswa-web/internal/middleware"
	"github.com/noah-isme/sma-siswa-web/internal/models"
	"github.com/noah-isme/sma-siswa-web/internal/service"
	"github.com/noah-isme/sma-siswa-web/internal/web"
	"github.com/noah-isme/sma-siswa-web/pkg/config"
)

type memoryStore struct {
	mu        sync.Mutex
	siswa     []models.Siswa
	insertErr error
	deleteErr error
}

func (m *memoryStore) FindAll(context.Context) ([]models.Siswa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Siswa, len(m.siswa))
	copy(out, m.siswa)
	return out, nil
}

func (m *memoryStore) FindOne(_ context.Context, field models.SiswaField, value string) (*models.Siswa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.siswa {
		if (field == models.FieldNama && s.Nama == value) ||
			(field == models.FieldNISN && s.NISN == value) ||
			(field == models.FieldNIK && s.NIK == value) {
			found := s
			return &found, nil
		}
	}
	return nil, models.ErrSiswaNotFound
}

func (m *memoryStore) Insert(_ context.Context, s *models.Siswa) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.siswa = append(m.siswa, *s)
	return nil
}

func (m *memoryStore) UpdateByNISN(_ context.Context, nisn string, upd models.SiswaUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.siswa {
		if m.siswa[i].NISN == nisn {
			m.siswa[i].Tingkat = upd.Tingkat
			m.siswa[i].Rombel = upd.Rombel
			m.siswa[i].TglMasuk = upd.TglMasuk
			m.siswa[i].Terdaftar = upd.Terdaftar
		}
	}
	return nil
}

func (m *memoryStore) DeleteByNISN(_ context.Context, nisn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, s := range m.siswa {
		if s.NISN == nisn {
			m.siswa = append(m.siswa[:i], m.siswa[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.siswa)
}

type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) post(target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func newTestApp(t *testing.T, store *memoryStore) *browser {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:       config.EnvDevelopment,
		APIPrefix: "/api/v1",
		Session:   config.SessionConfig{Name: "siswa_session", Secret: "secret", MaxAge: 30 * time.Minute, Store: config.SessionStoreMemory},
		Metrics:   config.MetricsConfig{Enabled: true},
	}
	logr := zap.NewNop()
	metrics := service.NewMetricsService()
	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	authSvc := service.NewAuthService(service.AuthConfig{Username: "admin", Password: "admin"}, metrics, logr)
	siswaSvc := service.NewSiswaService(store, nil, metrics, validator.New(), logr)
	exportSvc := service.NewExportService(siswaSvc, logr, nil, nil)

	h := New(Options{
		Config:       cfg,
		Logger:       logr,
		Metrics:      metrics,
		Renderer:     renderer,
		SessionStore: middleware.NewSessionStore(cfg.Session, false),
	}, Handlers{
		Auth:     handler.NewAuthHandler(authSvc, logr),
		Pages:    handler.NewPageHandler(siswaSvc),
		Siswa:    handler.NewSiswaHandler(siswaSvc, exportSvc, logr),
		SiswaAPI: handler.NewSiswaAPIHandler(siswaSvc),
		Metrics:  handler.NewMetricsHandler(metrics, nil, logr),
	})
	return &browser{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

func budi() url.Values {
	return url.Values{
		"nama":      {"Budi"},
		"nisn":      {"111"},
		"nik":       {"999"},
		"tingkat":   {"10"},
		"rombel":    {"A"},
		"tgl_masuk": {"2024-01-01"},
		"terdaftar": {"yes"},
	}
}

func TestHomeRequiresLogin(t *testing.T) {
	app := newTestApp(t, &memoryStore{})

	rec := app.get("/home")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLoginSuccess(t *testing.T) {
	app := newTestApp(t, &memoryStore{siswa: []models.Siswa{{Nama: "Ani", NISN: "222"}}})

	rec := app.post("/login", url.Values{"username": {"admin"}, "password": {"admin"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/home", rec.Header().Get("Location"))

	rec = app.get("/home")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Selamat datang, admin!")
	assert.Contains(t, rec.Body.String(), "Ani")
}

func TestLoginFailureFlashesOnce(t *testing.T) {
	app := newTestApp(t, &memoryStore{})

	rec := app.post("/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = app.get("/")
	assert.Contains(t, rec.Body.String(), "Username atau password salah!")
	rec = app.get("/")
	assert.NotContains(t, rec.Body.String(), "Username atau password salah!")

	assert.Equal(t, http.StatusFound, app.get("/home").Code)
}

func TestLogoutEndsSession(t *testing.T) {
	app := newTestApp(t, &memoryStore{})

	app.post("/login", url.Values{"username": {"admin"}, "password": {"admin"}})
	require.Equal(t, http.StatusOK, app.get("/home").Code)

	rec := app.get("/logout")
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, http.StatusFound, app.get("/home").Code)
}

func TestCreateThenDuplicateNISN(t *testing.T) {
	store := &memoryStore{}
	app := newTestApp(t, store)

	rec := app.post("/dataSiswa", budi())
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dataSiswa", rec.Header().Get("Location"))

	rec = app.get("/dataSiswa")
	assert.Contains(t, rec.Body.String(), "Data Contact Berhasil Ditambahkan!")
	assert.Contains(t, rec.Body.String(), "2024-01-01")

	second := budi()
	second.Set("nama", "Budi Lain")
	second.Set("nik", "998")
	rec = app.post("/dataSiswa", second)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "NISN Sudah Terdaftar!")
	assert.NotContains(t, body, "Namamu Sudah Terdaftar!")
	assert.NotContains(t, body, "Budi Lain")
	assert.Equal(t, 1, store.count())
}

func TestCreateReportsEveryDuplicate(t *testing.T) {
	store := &memoryStore{siswa: []models.Siswa{{Nama: "Budi", NISN: "111", NIK: "999"}}}
	app := newTestApp(t, store)

	body := app.post("/dataSiswa", budi()).Body.String()
	nama := strings.Index(body, "Namamu Sudah Terdaftar!")
	nisn := strings.Index(body, "NISN Sudah Terdaftar!")
	nik := strings.Index(body, "NIK Sudah Terdaftar!")
	require.True(t, nama >= 0 && nisn >= 0 && nik >= 0)
	assert.Less(t, nama, nisn)
	assert.Less(t, nisn, nik)
	assert.Equal(t, 1, store.count())
}

func TestCreatePersistenceFailure(t *testing.T) {
	app := newTestApp(t, &memoryStore{insertErr: errors.New("write concern")})

	rec := app.post("/dataSiswa", budi())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Terjadi kesalahan saat menyimpan data.", rec.Body.String())
}

func TestEditFormNotFound(t *testing.T) {
	app := newTestApp(t, &memoryStore{})

	rec := app.get("/dataSiswa/edit/404")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Siswa tidak ditemukan", rec.Body.String())
}

func TestEditAndUpdate(t *testing.T) {
	masuk := time.Date(2023, 7, 17, 0, 0, 0, 0, time.UTC)
	store := &memoryStore{siswa: []models.Siswa{
		{Nama: "Budi", NISN: "111", NIK: "999", Tingkat: "10", TglMasuk: &masuk},
		{Nama: "Ani", NISN: "222", NIK: "888"},
	}}
	app := newTestApp(t, store)

	rec := app.get("/dataSiswa/edit/111")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="2023-07-17"`)

	form := url.Values{"nama": {"Budi"}, "nisn": {"111"}, "oldNisn": {"111"}, "nik": {"999"}, "tingkat": {"11"}, "rombel": {"B"}, "tgl_masuk": {"2023-07-17"}, "terdaftar": {"yes"}}
	rec = app.post("/dataSiswa?_method=PUT", form)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, app.get("/dataSiswa").Body.String(), "Selamat! Data Siswa Berhasil Diubah!")
	assert.Equal(t, "11", store.siswa[0].Tingkat)

	form.Set("nisn", "222")
	rec = app.post("/dataSiswa?_method=PUT", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nama Sudah Terdaftar!")
	assert.Contains(t, rec.Body.String(), `name="nisn" value="222"`)
}

func TestDelete(t *testing.T) {
	store := &memoryStore{siswa: []models.Siswa{{Nama: "Budi", NISN: "111"}, {Nama: "Ani", NISN: "222"}}}
	app := newTestApp(t, store)

	rec := app.post("/dataSiswa?_method=DELETE", url.Values{"nisn": {"111"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, 1, store.count())
	assert.Contains(t, app.get("/dataSiswa").Body.String(), "Data Siswa Berhasil Dihapus!")

	rec = app.post("/dataSiswa?_method=DELETE", url.Values{"nisn": {"404"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, 1, store.count())
}

func TestDeleteFailure(t *testing.T) {
	app := newTestApp(t, &memoryStore{deleteErr: errors.New("down")})

	rec := app.post("/dataSiswa?_method=DELETE", url.Values{"nisn": {"111"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Terjadi kesalahan pada server", rec.Body.String())
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t, &memoryStore{})

	for _, path := range []string{"/", "/about", "/dataSiswa", "/dataSiswa/add", "/static/css/style.css", "/health"} {
		assert.Equal(t, http.StatusOK, app.get(path).Code, path)
	}
}

func TestExportCSV(t *testing.T) {
	app := newTestApp(t, &memoryStore{siswa: []models.Siswa{{Nama: "Budi", NISN: "111"}}})

	rec := app.get("/dataSiswa/export?format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "Budi,111")
}

func TestSiswaAPI(t *testing.T) {
	app := newTestApp(t, &memoryStore{siswa: []models.Siswa{{Nama: "Budi", NISN: "111"}}})

	rec := app.get("/api/v1/siswa")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []models.Siswa         `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)
	assert.EqualValues(t, 1, list.Meta["total"])

	rec = app.get("/api/v1/siswa/404")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Siswa tidak ditemukan")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/siswa", nil)
	req.Header.Set("Origin", "http://example.com")
	rec = app.do(req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, &memoryStore{})
	app.get("/about")

	rec := app.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
