package router

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"apparel-designer/app/controller"
	"apparel-designer/models"
	"apparel-designer/repository"
	"apparel-designer/service"
)

type testServer struct {
	handler  http.Handler
	sessions *service.SessionService
	devices  *service.RelayDevices
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	catalog, err := repository.NewCatalogRepository()
	require.NoError(t, err)
	store := repository.NewMemoryKVStore()

	designer := service.NewSelectionService(catalog, nil)
	images := service.NewImageService(logger)
	devices := service.NewRelayDevices(time.Minute, logger)
	chats := repository.NewChatRepository(store)
	sessions := service.NewSessionService(
		repository.NewSelectionRepository(store),
		chats,
		designer,
		service.NewCaptureService(devices, images, logger),
		0,
		logger,
	)
	t.Cleanup(sessions.Close)

	previews := service.NewPreviewService(designer, service.NewRenderService(), nil, nil, 0)
	chat := service.NewChatService(chats, service.OfflineCompleter{}, sessions, time.Second, logger)

	handler := New(&Controllers{
		Catalog: controller.NewCatalogController(catalog, logger),
		Session: controller.NewSessionController(sessions, designer, logger),
		Image:   controller.NewImageController(sessions, designer, images, 1<<20, logger),
		Preview: controller.NewPreviewController(sessions, previews, logger),
		Capture: controller.NewCaptureController(sessions, designer, devices, images, logger),
		Chat:    controller.NewChatController(sessions, chat, logger),
	}, logger)

	return &testServer{handler: handler, sessions: sessions, devices: devices}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createSession(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var res models.SelectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.SessionID)
	return res.SessionID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[models.Catalog](t, rec)
	assert.Equal(t, models.ProductTypes, c.Products)
	assert.Len(t, c.TextColors, 6)

	rec = s.do(t, http.MethodGet, "/catalog/sports/basketball/leagues", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	leagues := decode[[]models.League](t, rec)
	require.Len(t, leagues, 3)
	assert.Equal(t, "NBA", leagues[0].Name)

	rec = s.do(t, http.MethodGet, "/catalog/sports/soccer/leagues/mls/teams", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	teams := decode[[]models.Team](t, rec)
	assert.Equal(t, "LA Galaxy", teams[1].Name)

	rec = s.do(t, http.MethodGet, "/catalog/sports/curling/leagues", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWizardFlow(t *testing.T) {
	s := newTestServer(t)
	id := s.createSession(t)
	base := "/sessions/" + id

	rec := s.do(t, http.MethodPut, base+"/product", models.SelectionValueRequest{Value: "hoodie"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, base+"/color", models.SelectionValueRequest{Value: "#0A2342"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPut, base+"/text-color", models.SelectionValueRequest{Value: "#FFD700"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, base+"/sport", models.SelectionValueRequest{Value: "soccer"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[models.SelectionResponse](t, rec)
	assert.Equal(t, "premier", res.Selection.LeagueID)
	assert.Len(t, res.Leagues, 3)

	rec = s.do(t, http.MethodPut, base+"/league", models.SelectionValueRequest{Value: "nba"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "not_descendant", decode[controller.ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodPut, base+"/league", models.SelectionValueRequest{Value: "mls"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPut, base+"/team", models.SelectionValueRequest{Value: "galaxy"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, base+"/name", models.SelectionValueRequest{Value: "ABCDEFGHIJKLMNOP"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = s.do(t, http.MethodPut, base+"/name", models.SelectionValueRequest{Value: "ALEX"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/step/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StepTeam, decode[models.SelectionResponse](t, rec).Selection.CurrentStep)
	rec = s.do(t, http.MethodPost, base+"/step/prev", nil)
	assert.Equal(t, models.StepProduct, decode[models.SelectionResponse](t, rec).Selection.CurrentStep)

	rec = s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode[models.SelectionResponse](t, rec)
	assert.Equal(t, "LA Galaxy hoodie in Navy with Gold text", res.Summary)
	require.NotNil(t, res.Capture)
	assert.False(t, res.Capture.Open)

	rec = s.do(t, http.MethodGet, base+"/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	preview := decode[models.PreviewResponse](t, rec)
	assert.False(t, preview.Loading)
	assert.Contains(t, preview.SVG, "LA Galaxy")
	assert.Contains(t, preview.SVG, "ALEX")

	rec = s.do(t, http.MethodGet, base+"/preview.svg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))

	rec = s.do(t, http.MethodPost, base+"/export", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInvalidInput(t *testing.T) {
	s := newTestServer(t)
	id := s.createSession(t)

	rec := s.do(t, http.MethodPut, "/sessions/"+id+"/color", models.SelectionValueRequest{Value: "#123456"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_choice", decode[controller.ErrorResponse](t, rec).Code)

	req := httptest.NewRequest(http.MethodPut, "/sessions/"+id+"/product", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rec = s.do(t, http.MethodGet, "/sessions/6f1c3f5e-8a53-4a43-9d36-3b1f3c2b8a10", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session_not_found", decode[controller.ErrorResponse](t, rec).Code)
}

func uploadRequest(t *testing.T, path, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImageUpload(t *testing.T) {
	s := newTestServer(t)
	id := s.createSession(t)
	path := "/sessions/" + id + "/image"

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, uploadRequest(t, path, "notes.txt", []byte("hello")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, uploadRequest(t, path, "logo.png", pngBytes(t, 40, 40)))
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[models.SelectionResponse](t, rec)
	assert.True(t, strings.HasPrefix(res.Selection.CustomImage, "data:image/jpeg;base64,"))

	rec = s.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[models.SelectionResponse](t, rec).Selection.CustomImage)
}

func TestCaptureFlow(t *testing.T) {
	s := newTestServer(t)
	id := s.createSession(t)
	base := "/sessions/" + id + "/capture"

	rec := s.do(t, http.MethodPost, base+"/shot", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[models.CaptureStatus](t, rec)
	require.True(t, status.StreamActive)
	assert.Equal(t, 1, s.devices.ActiveStreams())

	rec = s.do(t, http.MethodPost, base+"/accept", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, base+"/frames", bytes.NewReader(pngBytes(t, 64, 48)))
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rec = s.do(t, http.MethodPost, base+"/shot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[models.CaptureStatus](t, rec).CapturedImage)

	rec = s.do(t, http.MethodPost, base+"/retake", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[models.CaptureStatus](t, rec).CapturedImage)

	rec = s.do(t, http.MethodPost, base+"/shot", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/accept", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[models.SelectionResponse](t, rec)
	assert.True(t, strings.HasPrefix(res.Selection.CustomImage, "data:image/png;base64,"))
	assert.Equal(t, 0, s.devices.ActiveStreams())

	rec = s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.CaptureStatus](t, rec).Open)
}

func TestDeleteSessionClosesCamera(t *testing.T) {
	s := newTestServer(t)
	id := s.createSession(t)

	rec := s.do(t, http.MethodPost, "/sessions/"+id+"/capture/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, s.devices.ActiveStreams())

	rec = s.do(t, http.MethodDelete, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, s.devices.ActiveStreams())

	rec = s.do(t, http.MethodGet, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatRoutes(t *testing.T) {
	s := newTestServer(t)
	id := s.createSession(t)
	path := "/sessions/" + id + "/chat"

	rec := s.do(t, http.MethodPost, path, models.ChatSendRequest{Content: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, path, models.ChatSendRequest{Content: "Which font for a cap?"})
	require.Equal(t, http.StatusOK, rec.Code)
	log := decode[models.ChatLogResponse](t, rec)
	require.Len(t, log.Messages, 2)
	assert.Equal(t, service.ChatFallbackMessage, log.Messages[1].Content)

	rec = s.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)

	rec = s.do(t, http.MethodDelete, path+"?confirm=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[models.ChatLogResponse](t, rec).Messages)
}
