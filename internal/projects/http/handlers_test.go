package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-dash/folio-backend/internal/auth"
	"github.com/folio-dash/folio-backend/internal/projects/domain"
	"github.com/folio-dash/folio-backend/internal/projects/form"
)

const projectID = "2f6d5a4e-8c1b-4b7a-9e1d-3c5f7a9b1d2e"

type fakeService struct {
	projects  map[string]domain.Project
	err       error
	created   []domain.ProjectInsert
	updates   []domain.ProjectUpdate
	deletedID string
}

func newFakeService() *fakeService {
	return &fakeService{projects: map[string]domain.Project{}}
}

func (f *fakeService) List(_ context.Context, ownerID string) ([]domain.Project, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if f.err != nil {
		return nil, f.err
	}
	out := []domain.Project{}
	for _, p := range f.projects {
		if p.UserID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeService) Summary(ctx context.Context, ownerID string) (domain.Summary, error) {
	list, err := f.List(ctx, ownerID)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(list), nil
}

func (f *fakeService) Get(_ context.Context, ownerID, id string) (*domain.Project, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	p, ok := f.projects[id]
	if !ok || p.UserID != ownerID {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeService) Create(_ context.Context, ownerID string, in domain.ProjectInsert) (*domain.Project, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if f.err != nil {
		return nil, f.err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	f.created = append(f.created, in)
	p := domain.Project{ID: projectID, Name: in.Name, Category: in.Category, Status: in.Status, ImageURL: in.ImageURL, UserID: ownerID}
	return &p, nil
}

func (f *fakeService) Update(_ context.Context, ownerID, id string, u domain.ProjectUpdate) (*domain.Project, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	p, ok := f.projects[id]
	if !ok || p.UserID != ownerID {
		return nil, domain.ErrNoRowMatched
	}
	f.updates = append(f.updates, u)
	if u.Name.Set {
		p.Name = u.Name.Value
	}
	if u.ImageURL.Set {
		p.ImageURL = u.ImageURL.Value
	}
	return &p, nil
}

func (f *fakeService) Delete(_ context.Context, ownerID, id string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	p, ok := f.projects[id]
	if !ok || p.UserID != ownerID {
		return domain.ErrNoRowMatched
	}
	f.deletedID = id
	return nil
}

type fakeUploader struct {
	calls int
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, name, _ string, body io.Reader, _ int64) (string, error) {
	f.calls++
	_, _ = io.Copy(io.Discard, body)
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example/projects/" + name, nil
}

// withUser mimics the dev header auth middleware.
func withUser(c *gin.Context) {
	if uid := c.GetHeader("X-User-Id"); uid != "" {
		c.Set(auth.CtxFirebaseUID, uid)
	}
}

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1/projects", withUser)
	h.Register(g)
	return r
}

func do(r *gin.Engine, method, path, user string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestList(t *testing.T) {
	svc := newFakeService()
	svc.projects[projectID] = domain.Project{ID: projectID, Name: "Folio", Status: domain.StatusInProgress, UserID: "u1"}
	svc.projects["other"] = domain.Project{ID: "other", Name: "Theirs", UserID: "u2"}
	r := setupRouter(New(svc, nil, nil, 0))

	w := do(r, http.MethodGet, "/api/v1/projects", "u1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Len(t, body["projects"], 1)
	assert.Equal(t, map[string]any{"total": 1.0, "inProgress": 1.0, "completed": 0.0, "onHold": 0.0}, body["summary"])

	w = do(r, http.MethodGet, "/api/v1/projects", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestList_StorageError(t *testing.T) {
	svc := newFakeService()
	svc.err = errors.New("failed to fetch projects: connection reset")
	r := setupRouter(New(svc, nil, nil, 0))

	w := do(r, http.MethodGet, "/api/v1/projects", "u1", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to fetch projects: connection reset", decode(t, w)["error"])
}

func TestSummary(t *testing.T) {
	svc := newFakeService()
	svc.projects[projectID] = domain.Project{ID: projectID, Status: domain.StatusOnHold, UserID: "u1"}
	r := setupRouter(New(svc, nil, nil, 0))

	w := do(r, http.MethodGet, "/api/v1/projects/summary", "u1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["summary"].(map[string]any)["onHold"])
}

func TestGet(t *testing.T) {
	svc := newFakeService()
	svc.projects[projectID] = domain.Project{ID: projectID, Name: "Folio", UserID: "u1"}
	r := setupRouter(New(svc, nil, nil, 0))

	w := do(r, http.MethodGet, "/api/v1/projects/"+projectID, "u1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Folio", decode(t, w)["project"].(map[string]any)["name"])

	w = do(r, http.MethodGet, "/api/v1/projects/"+projectID, "u2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Nil(t, body["project"])
}

func TestCreate(t *testing.T) {
	svc := newFakeService()
	r := setupRouter(New(svc, nil, nil, 0))

	w := do(r, http.MethodPost, "/api/v1/projects", "u1",
		strings.NewReader(`{"name":"Folio","category":"Web","dueDate":"2026-12-31","imageUrl":["https://cdn.example/a.png"]}`), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, svc.created, 1)
	assert.Equal(t, "2026-12-31", *svc.created[0].DueDate)
	assert.Equal(t, []string{"https://cdn.example/a.png"}, svc.created[0].ImageURL)

	w = do(r, http.MethodPost, "/api/v1/projects", "u1", strings.NewReader(`{"name":`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid body", decode(t, w)["error"])

	w = do(r, http.MethodPost, "/api/v1/projects", "u1", strings.NewReader(`{"category":"Web"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "name is required")

	w = do(r, http.MethodPost, "/api/v1/projects", "", strings.NewReader(`{"name":"x"}`), "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdate_PartialBody(t *testing.T) {
	svc := newFakeService()
	svc.projects[projectID] = domain.Project{ID: projectID, Name: "Folio", UserID: "u1"}
	r := setupRouter(New(svc, nil, nil, 0))

	w := do(r, http.MethodPatch, "/api/v1/projects/"+projectID, "u1",
		strings.NewReader(`{"name":"Renamed","githubUrl":null}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", decode(t, w)["project"].(map[string]any)["name"])

	require.Len(t, svc.updates, 1)
	u := svc.updates[0]
	assert.True(t, u.Name.Set)
	assert.True(t, u.GithubURL.Set)
	assert.Nil(t, u.GithubURL.Value)
	assert.False(t, u.Description.Set)
	assert.False(t, u.Progress.Set)

	w = do(r, http.MethodPatch, "/api/v1/projects/"+projectID, "u2", strings.NewReader(`{"name":"x"}`), "application/json")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDelete(t *testing.T) {
	svc := newFakeService()
	svc.projects[projectID] = domain.Project{ID: projectID, UserID: "u1"}
	r := setupRouter(New(svc, nil, nil, 0))

	w := do(r, http.MethodDelete, "/api/v1/projects/"+projectID, "u2", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, svc.deletedID)

	w = do(r, http.MethodDelete, "/api/v1/projects/"+projectID, "u1", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, projectID, svc.deletedID)
}

type part struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, payload string, files ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if payload != "" {
		require.NoError(t, w.WriteField("payload", payload))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, f.name))
		h.Set("Content-Type", f.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreateForm_RejectsFilesIndividually(t *testing.T) {
	svc := newFakeService()
	up := &fakeUploader{}
	r := setupRouter(New(svc, up, nil, form.MaxImageSize))

	body, ct := multipartBody(t, `{"name":"Folio","category":"Web","imageUrl":["https://example.com/existing.png"]}`,
		part{"shot.png", "image/png", make([]byte, 5<<20)},
		part{"notes.txt", "text/plain", make([]byte, 1<<10)},
		part{"huge.jpeg", "image/jpeg", make([]byte, 11<<20)},
	)
	w := do(r, http.MethodPost, "/api/v1/projects/form", "u1", body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode(t, w)
	warnings := resp["warnings"].([]any)
	require.Len(t, warnings, 2)
	assert.Equal(t, "notes.txt", warnings[0].(map[string]any)["name"])
	assert.Equal(t, "huge.jpeg", warnings[1].(map[string]any)["name"])

	assert.Equal(t, 1, up.calls)
	require.Len(t, svc.created, 1)
	images := svc.created[0].ImageURL
	require.Len(t, images, 2)
	assert.Equal(t, "https://example.com/existing.png", images[0])
	assert.True(t, strings.HasPrefix(images[1], "https://cdn.example/projects/"))
	assert.True(t, strings.HasSuffix(images[1], ".png"))
	assert.Equal(t, domain.StatusPlanning, svc.created[0].Status, "form defaults apply")
}

func TestCreateForm_UploadFailureAborts(t *testing.T) {
	svc := newFakeService()
	up := &fakeUploader{err: errors.New("bucket unavailable")}
	r := setupRouter(New(svc, up, nil, 0))

	body, ct := multipartBody(t, `{"name":"Folio","category":"Web"}`,
		part{"a.png", "image/png", []byte("png")},
		part{"b.png", "image/png", []byte("png")},
	)
	w := do(r, http.MethodPost, "/api/v1/projects/form", "u1", body, ct)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "image upload failed", decode(t, w)["error"])
	assert.Equal(t, 1, up.calls)
	assert.Empty(t, svc.created)
}

func TestCreateForm_Errors(t *testing.T) {
	svc := newFakeService()
	r := setupRouter(New(svc, nil, nil, 0))

	body, ct := multipartBody(t, `{"name":"Folio","category":"Web"}`, part{"a.png", "image/png", []byte("png")})
	w := do(r, http.MethodPost, "/api/v1/projects/form", "u1", body, ct)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	body, ct = multipartBody(t, `{"name":`)
	w = do(r, http.MethodPost, "/api/v1/projects/form", "u1", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/projects/form", "u1", strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct = multipartBody(t, `{"name":"Folio","category":"Web"}`)
	w = do(r, http.MethodPost, "/api/v1/projects/form", "", body, ct)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	body, ct = multipartBody(t, `{"name":"Folio","category":"Web"}`)
	w = do(r, http.MethodPost, "/api/v1/projects/form", "u1", body, ct)
	assert.Equal(t, http.StatusCreated, w.Code, "no files needs no uploader")
	assert.Equal(t, []any{}, decode(t, w)["warnings"])
}

func TestUpdateForm(t *testing.T) {
	svc := newFakeService()
	svc.projects[projectID] = domain.Project{
		ID:       projectID,
		Name:     "Folio",
		Category: "Web",
		Status:   domain.StatusInProgress,
		Priority: domain.PriorityHigh,
		ImageURL: []string{"https://cdn.example/projects/old.png"},
		UserID:   "u1",
	}
	up := &fakeUploader{}
	r := setupRouter(New(svc, up, nil, 0))

	body, ct := multipartBody(t, `{"name":"Folio v2"}`, part{"new.jpg", "image/jpeg", []byte{0xff, 0xd8, 0xff}})
	w := do(r, http.MethodPut, "/api/v1/projects/"+projectID+"/form", "u1", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, svc.updates, 1)
	u := svc.updates[0]
	assert.Equal(t, "Folio v2", u.Name.Value)
	assert.Equal(t, domain.PriorityHigh, u.Priority.Value, "unchanged fields come from the stored project")
	require.Len(t, u.ImageURL.Value, 2)
	assert.Equal(t, "https://cdn.example/projects/old.png", u.ImageURL.Value[0])

	body, ct = multipartBody(t, `{"name":"x"}`)
	w = do(r, http.MethodPut, "/api/v1/projects/"+projectID+"/form", "u2", body, ct)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateForm_NullClearsText(t *testing.T) {
	svc := newFakeService()
	desc := "Portfolio site"
	repo := "https://github.com/folio"
	svc.projects[projectID] = domain.Project{
		ID:           projectID,
		Name:         "Folio",
		Description:  &desc,
		Category:     "Web",
		Status:       domain.StatusInProgress,
		Priority:     domain.PriorityHigh,
		GithubURL:    &repo,
		Technologies: []string{"Go", "Redis"},
		UserID:       "u1",
	}
	r := setupRouter(New(svc, nil, nil, 0))

	body, ct := multipartBody(t, `{"description":null,"removeTechnologies":[1]}`)
	w := do(r, http.MethodPut, "/api/v1/projects/"+projectID+"/form", "u1", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, svc.updates, 1)
	u := svc.updates[0]
	require.True(t, u.Description.Set)
	assert.Nil(t, u.Description.Value, "null clears the stored description")
	require.NotNil(t, u.GithubURL.Value, "absent fields keep the stored value")
	assert.Equal(t, repo, *u.GithubURL.Value)
	assert.Equal(t, []string{"Go"}, u.Technologies.Value)

	body, ct = multipartBody(t, `{"removeImages":[0]}`)
	w = do(r, http.MethodPut, "/api/v1/projects/"+projectID+"/form", "u1", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, svc.updates, 1)
}

func TestCreateForm_CoverAndSkippedFiles(t *testing.T) {
	svc := newFakeService()
	up := &fakeUploader{}
	r := setupRouter(New(svc, up, nil, 0))

	body, ct := multipartBody(t, `{"name":"Folio","category":"Web","imageUrl":["https://example.com/a.png"],"coverImageUrl":"https://example.com/other.png"}`,
		part{"a.png", "image/png", []byte("png")},
	)
	w := do(r, http.MethodPost, "/api/v1/projects/form", "u1", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, up.calls, "an invalid cover is refused before anything is uploaded")
	assert.Empty(t, svc.created)

	body, ct = multipartBody(t, `{"name":"Folio","category":"Web","imageUrl":["https://example.com/a.png"],"coverImageUrl":"https://example.com/a.png","skipImages":["drop.png"]}`,
		part{"keep.png", "image/png", []byte("png")},
		part{"drop.png", "image/png", []byte("png")},
	)
	w = do(r, http.MethodPost, "/api/v1/projects/form", "u1", body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, up.calls, "skipped files are not uploaded")

	require.Len(t, svc.created, 1)
	in := svc.created[0]
	require.NotNil(t, in.CoverImageURL)
	assert.Equal(t, "https://example.com/a.png", *in.CoverImageURL)
	assert.Len(t, in.ImageURL, 2)
}

func TestCreateForm_BodyTooLarge(t *testing.T) {
	svc := newFakeService()
	up := &fakeUploader{}
	r := setupRouter(New(svc, up, nil, 1<<10))

	body, ct := multipartBody(t, `{"name":"Folio","category":"Web"}`,
		part{"big.png", "image/png", make([]byte, 256<<10)},
	)
	w := do(r, http.MethodPost, "/api/v1/projects/form", "u1", body, ct)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
	assert.Zero(t, up.calls)
	assert.Empty(t, svc.created)
}
