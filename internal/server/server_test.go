package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agenthands/scrivener/internal/core"
	"github.com/agenthands/scrivener/internal/core/common"
	"github.com/agenthands/scrivener/internal/core/model"
	"github.com/agenthands/scrivener/internal/export"
	"github.com/agenthands/scrivener/internal/logger"
)

type mockProcessor struct {
	Result *core.Result
	Err    error

	Uploads   []model.Upload
	RequestID string
}

func (m *mockProcessor) Process(ctx context.Context, upload model.Upload) (*core.Result, error) {
	m.Uploads = append(m.Uploads, upload)
	m.RequestID = logger.RequestIDFromContext(ctx)
	return m.Result, m.Err
}

func uploadRequest(t *testing.T, target, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file here"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func sampleResult() *core.Result {
	schema := model.CanonicalSchema{
		Artifacts:            []model.Artifact{{ArtifactID: 1, Subject: "Budget", Tags: []string{}}},
		People:               []model.Person{{PersonID: 1, FullName: "Mark Duvall"}},
		ArtifactParticipants: []model.ArtifactParticipant{{ArtifactID: 1, PersonID: 1, Role: model.RoleRecipient}},
		Entities:             []model.Entity{},
		ArtifactEntities:     []model.ArtifactEntity{},
		Locations:            []model.Location{},
		ArtifactLocations:    []model.ArtifactLocation{},
	}
	raw := model.RawExtraction{Recipients: []model.PersonReference{{Name: "Mark Duvall"}}}
	return &core.Result{
		ExtractedText: "Dear Mark",
		FinalSchema:   &schema,
		ParseResult:   &raw,
		PersonAnnotations: []model.PersonAnnotation{
			{PersonID: 1, Vertices: []model.Vertex{{X: 1, Y: 1}}},
		},
	}
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.SetupRouter().ServeHTTP(w, req)
	return w
}

func TestParseUpload_Success(t *testing.T) {
	proc := &mockProcessor{Result: sampleResult()}
	s := NewServer(proc, 20, nil)

	w := serve(s, uploadRequest(t, "/parse-upload", "letter.png", []byte("image")))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, proc.Uploads, 1)
	assert.Equal(t, "letter.png", proc.Uploads[0].Filename)
	assert.Equal(t, []byte("image"), proc.Uploads[0].Data)
	assert.NotEmpty(t, proc.RequestID)
	assert.Equal(t, proc.RequestID, w.Header().Get("X-Request-ID"))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "finalSchema")
	assert.Contains(t, body, "parseResult")
	assert.Contains(t, body, "personAnnotations")
	assert.NotContains(t, body, "error")

	var schema model.CanonicalSchema
	require.NoError(t, json.Unmarshal(body["finalSchema"], &schema))
	assert.Equal(t, "Mark Duvall", schema.People[0].FullName)
}

func TestParseUpload_KeepsCallerRequestID(t *testing.T) {
	proc := &mockProcessor{Result: sampleResult()}
	req := uploadRequest(t, "/parse-upload", "letter.png", []byte("image"))
	req.Header.Set("X-Request-ID", "req-42")

	w := serve(NewServer(proc, 0, nil), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", proc.RequestID)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestParseUpload_NoFile(t *testing.T) {
	proc := &mockProcessor{}

	w := serve(NewServer(proc, 20, nil), uploadRequest(t, "/parse-upload", "", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No file provided"}`, w.Body.String())
	assert.Empty(t, proc.Uploads)
}

func TestParseUpload_EmptyText(t *testing.T) {
	proc := &mockProcessor{Result: &core.Result{}}

	w := serve(NewServer(proc, 20, nil), uploadRequest(t, "/parse-upload", "blank.png", []byte("image")))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"extractedText":""}`, w.Body.String())
}

func TestParseUpload_ParseErrorCarriesRawOutput(t *testing.T) {
	// rawOutput is the provider response as received, code fence included,
	// not the fence-stripped text the decoder saw.
	raw := "```json\nnot json {\n```"
	proc := &mockProcessor{Err: &common.ParseError{Pass: "primary", Raw: raw, Err: errors.New("bad")}}

	w := serve(NewServer(proc, 20, nil), uploadRequest(t, "/parse-upload", "letter.png", []byte("image")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{
		"error":     "Failed to parse first-pass LLM output as JSON",
		"rawOutput": raw,
	}, body)
}

func TestParseUpload_OtherFailure(t *testing.T) {
	proc := &mockProcessor{Err: &common.ProviderError{Provider: "vision", Op: "text detection", Err: errors.New("quota")}}

	w := serve(NewServer(proc, 20, nil), uploadRequest(t, "/parse-upload", "letter.png", []byte("image")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
}

func TestParseUpload_XLSX(t *testing.T) {
	proc := &mockProcessor{Result: sampleResult()}

	w := serve(NewServer(proc, 20, nil), uploadRequest(t, "/parse-upload?format=xlsx", "letter.png", []byte("image")))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("People")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "Mark Duvall"}, rows[1])
}

func TestHealthz(t *testing.T) {
	w := serve(NewServer(&mockProcessor{}, 20, nil), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(&mockProcessor{}, 20, nil)
	serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	w := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "scrivener_http_request_duration_seconds")
}
