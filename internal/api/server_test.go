package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/learnaloud/internal/apistats"
	"github.com/dgallion1/learnaloud/internal/arxiv"
	"github.com/dgallion1/learnaloud/internal/config"
	"github.com/dgallion1/learnaloud/internal/document"
	"github.com/dgallion1/learnaloud/internal/outline"
	"github.com/dgallion1/learnaloud/internal/pipeline"
	"github.com/dgallion1/learnaloud/internal/session"
	"github.com/dgallion1/learnaloud/internal/uploads"
	"github.com/dgallion1/learnaloud/internal/vocalbridge"
)

func span(text string, y, size float64, font string) document.Span {
	return document.Span{Text: text, BBox: document.BBox{72, y, 300, y + size}, FontName: font, FontSize: size}
}

// testDoc is a two-page paper with an Introduction heading and two references.
func testDoc() *document.Document {
	p1 := document.Page{PageNum: 1, Width: 612, Height: 792, ImageBlocks: []document.ImageBlock{}}
	p1.Spans = append(p1.Spans, span("Introduction", 60, 16, "Times-Bold"))
	for i := range 6 {
		p1.Spans = append(p1.Spans, span("Transformers use self-attention.", 100+float64(i)*12, 10, "Times-Roman"))
	}
	p2 := document.Page{PageNum: 2, Width: 612, Height: 792, ImageBlocks: []document.ImageBlock{}, Spans: []document.Span{
		span("References", 60, 10, "Times-Roman"),
		span("[1] Vaswani et al. Attention is all you need.", 80, 10, "Times-Roman"),
		span("[2] He et al. Deep residual learning.", 92, 10, "Times-Roman"),
	}}
	return &document.Document{Pages: []document.Page{p1, p2}}
}

type stubParser struct{ doc *document.Document }

func (p stubParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	return p.doc, nil
}

type stubFetcher struct{}

func (stubFetcher) Download(ctx context.Context, id string) ([]byte, error) {
	return []byte("%PDF-1.4 " + id), nil
}

type fakeLibrarian struct {
	papers []arxiv.Paper
	err    error
	query  string
	limit  int
}

func (f *fakeLibrarian) Search(ctx context.Context, query string, maxResults int) ([]arxiv.Paper, arxiv.APIInfo, error) {
	f.query, f.limit = query, maxResults
	if f.err != nil {
		return nil, arxiv.APIInfo{}, f.err
	}
	return f.papers, arxiv.APIInfo{Server: "arxiv-api", Tool: "search_arxiv"}, nil
}

func (f *fakeLibrarian) Lookup(ctx context.Context, id string) (*arxiv.Paper, error) {
	for i := range f.papers {
		if f.papers[i].ID == id {
			return &f.papers[i], nil
		}
	}
	return nil, arxiv.ErrNotFound
}

type fakeVoice struct {
	participant string
	err         error
}

func (f *fakeVoice) Token(ctx context.Context, participant string) (json.RawMessage, error) {
	f.participant = participant
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"livekit_url":"wss://lk","token":"tok"}`), nil
}

func (f *fakeVoice) Agent(ctx context.Context) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"name":"tutor"}`), nil
}

type testEnv struct {
	srv       *Server
	sessions  *session.MemoryStore
	librarian *fakeLibrarian
	voice     *fakeVoice
}

func newTestEnv(t *testing.T, apiKey string) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	up, err := uploads.NewDir(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("uploads: %v", err)
	}
	sessions := session.NewMemoryStore(time.Hour)
	cfg := config.Config{
		APIKey:          apiKey,
		MaxUploadBytes:  1 << 20,
		WorkerCount:     1,
		MaxQueueSize:    4,
		JobTTL:          time.Hour,
		CleanupInterval: time.Hour,
		Outline:         outline.DefaultConfig(),
	}
	orch := pipeline.NewOrchestrator(cfg, pipeline.Deps{
		Sessions: sessions,
		Uploads:  up,
		Parser:   stubParser{doc: testDoc()},
		Fetcher:  stubFetcher{},
	}, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	env := &testEnv{
		sessions: sessions,
		librarian: &fakeLibrarian{papers: []arxiv.Paper{
			{ID: "1706.03762", Title: "Attention Is All You Need", Authors: []string{"Vaswani"}},
		}},
		voice: &fakeVoice{},
	}
	env.srv = NewServer(Deps{
		Orchestrator: orch,
		Sessions:     sessions,
		Uploads:      up,
		Librarian:    env.librarian,
		Voice:        env.voice,
		Stats:        apistats.NewRegistry(time.Hour),
	}, log, cfg)
	return env
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(data)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/upload-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// upload ingests the test paper and returns its session ID.
func (e *testEnv) upload(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, uploadRequest(t, "file", "attention.pdf", []byte("%PDF-1.4 test")))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SessionID string `json:"session_id"`
	}
	decode(t, rec, &resp)
	if resp.SessionID == "" {
		t.Fatal("expected session_id in upload response")
	}
	return resp.SessionID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	decode(t, rec, &resp)
	return resp.Error
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "secret")
	rec := env.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, "secret")

	rec := env.do(t, http.MethodGet, "/api/agents/librarian/tools", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/agents/librarian/tools", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/agents/librarian/tools", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with key, got %d", rec.Code)
	}
}

func TestUploadPDF(t *testing.T) {
	env := newTestEnv(t, "")
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, uploadRequest(t, "file", "attention.pdf", []byte("%PDF-1.4 test")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SessionID  string          `json:"session_id"`
		Filename   string          `json:"filename"`
		TotalPages int             `json:"total_pages"`
		Outline    outline.Outline `json:"outline"`
	}
	decode(t, rec, &resp)
	if resp.Filename != "attention.pdf" {
		t.Errorf("expected filename attention.pdf, got %q", resp.Filename)
	}
	if resp.TotalPages != 2 {
		t.Errorf("expected 2 pages, got %d", resp.TotalPages)
	}
	if len(resp.Outline.Sections) == 0 || resp.Outline.Sections[0].Heading != "Introduction" {
		t.Errorf("expected Introduction section, got %+v", resp.Outline.Sections)
	}
	if _, err := env.sessions.Get(context.Background(), resp.SessionID); err != nil {
		t.Errorf("expected stored session, got %v", err)
	}
}

func TestUploadPDF_Rejections(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"wrong field", uploadRequest(t, "document", "a.pdf", []byte("x")), "No file provided"},
		{"not pdf", uploadRequest(t, "file", "notes.txt", []byte("x")), "Only PDF files are accepted"},
		{"not multipart", httptest.NewRequest(http.MethodPost, "/api/upload-pdf", strings.NewReader("{}")), "No file provided"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.srv.ServeHTTP(rec, tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if got := errorMessage(t, rec); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUploadPDF_TooLarge(t *testing.T) {
	env := newTestEnv(t, "")
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, uploadRequest(t, "file", "big.pdf", bytes.Repeat([]byte("a"), 1<<20+10)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestUploadPDF_Async(t *testing.T) {
	env := newTestEnv(t, "")
	req := uploadRequest(t, "file", "attention.pdf", []byte("%PDF-1.4 test"))
	req.URL.RawQuery = "async=true"
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var resp struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	decode(t, rec, &resp)
	if resp.PollURL != fmt.Sprintf("/api/ingest/%s/status", resp.JobID) {
		t.Errorf("unexpected poll_url %q", resp.PollURL)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = env.do(t, http.MethodGet, resp.PollURL, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status: expected 200, got %d", rec.Code)
		}
		var snap pipeline.JobSnapshot
		decode(t, rec, &snap)
		if snap.Status == pipeline.StatusCompleted {
			break
		}
		if snap.Status == pipeline.StatusFailed || time.Now().After(deadline) {
			t.Fatalf("expected completed job, got %s", snap.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec = env.do(t, http.MethodGet, "/api/ingest/nope/status", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rec.Code)
	}
}

func TestServeAndDeletePDF(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.upload(t)

	rec := env.do(t, http.MethodGet, "/api/pdf/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if rec.Body.String() != "%PDF-1.4 test" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}

	rec = env.do(t, http.MethodDelete, "/api/session/"+id+"/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/pdf/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
	if got := errorMessage(t, rec); got != "Session not found" {
		t.Errorf("expected Session not found, got %q", got)
	}
}

func TestSearchText(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.upload(t)

	rec := env.do(t, http.MethodPost, "/api/search-text", map[string]any{"session_id": id, "text": "SELF-ATTENTION"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var pos struct {
		Found bool      `json:"found"`
		Text  string    `json:"text"`
		Page  int       `json:"page"`
		BBox  []float64 `json:"bbox"`
	}
	decode(t, rec, &pos)
	if !pos.Found || pos.Page != 1 || len(pos.BBox) != 4 {
		t.Errorf("expected hit on page 1 with bbox, got %+v", pos)
	}

	rec = env.do(t, http.MethodPost, "/api/search-text", map[string]any{"session_id": id, "text": "residual", "page": 1})
	decode(t, rec, &pos)
	if pos.Found {
		t.Errorf("expected miss on page 1, got %+v", pos)
	}

	rec = env.do(t, http.MethodPost, "/api/search-text", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without body, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/search-text", map[string]any{"session_id": "missing", "text": "x"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown session, got %d", rec.Code)
	}
}

func TestOutlineFormats(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.upload(t)

	rec := env.do(t, http.MethodGet, "/api/outline/"+id, nil)
	var out outline.Outline
	decode(t, rec, &out)
	if len(out.Sections) == 0 {
		t.Errorf("expected sections in json outline")
	}

	rec = env.do(t, http.MethodGet, "/api/outline/"+id+"?format=markdown", nil)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("expected markdown content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "# attention.pdf") {
		t.Errorf("expected title in markdown, got %q", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/outline/"+id+"?format=html", nil)
	if !strings.Contains(rec.Body.String(), "<h2>References</h2>") {
		t.Errorf("expected references heading in html, got %q", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/outline/"+id+"?format=pdf", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", rec.Code)
	}
}

func TestNavigator(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.upload(t)

	rec := env.do(t, http.MethodGet, "/api/agents/navigator/references?session_id="+id, nil)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, rec, &list)
	if list.Count != 2 {
		t.Errorf("expected 2 references, got %d", list.Count)
	}

	rec = env.do(t, http.MethodPost, "/api/agents/navigator/find-citation", map[string]any{"session_id": id, "reference": "[2]"})
	var hit map[string]any
	decode(t, rec, &hit)
	if hit["found"] != true || hit["number"] != float64(2) {
		t.Errorf("expected reference 2, got %v", hit)
	}

	rec = env.do(t, http.MethodPost, "/api/agents/navigator/find-citation", map[string]any{"session_id": id, "reference": "[9]"})
	var miss map[string]any
	decode(t, rec, &miss)
	if miss["found"] != false || miss["reference"] != "[9]" {
		t.Errorf("expected miss echoing query, got %v", miss)
	}
}

func TestSessionState(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.upload(t)

	rec := env.do(t, http.MethodPut, "/api/session/"+id+"/state", map[string]any{
		"current_page":       2,
		"add_concepts":       []string{"attention", "Attention", "residual"},
		"transcript_summary": "covered intro",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var st session.State
	decode(t, rec, &st)
	if st.CurrentPage != 2 {
		t.Errorf("expected page 2, got %d", st.CurrentPage)
	}
	if len(st.DiscussedConcepts) != 2 {
		t.Errorf("expected 2 concepts, got %v", st.DiscussedConcepts)
	}

	rec = env.do(t, http.MethodPut, "/api/session/"+id+"/state", map[string]any{"current_page": 3, "quiz_active": true})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for out of range page, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/session/"+id+"/state", nil)
	decode(t, rec, &st)
	if st.CurrentPage != 2 || st.QuizActive {
		t.Errorf("expected rejected update to leave state alone, got %+v", st)
	}

	rec = env.do(t, http.MethodGet, "/api/paper-context/"+id, nil)
	var pc map[string]any
	decode(t, rec, &pc)
	if pc["current_page"] != float64(2) || pc["transcript_summary"] != "covered intro" {
		t.Errorf("unexpected paper context %v", pc)
	}

	rec = env.do(t, http.MethodPut, "/api/session/missing/state", map[string]any{"current_page": 1})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestQuiz(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.upload(t)

	rec := env.do(t, http.MethodPost, "/api/session/"+id+"/quiz/start", nil)
	var start map[string]any
	decode(t, rec, &start)
	if start["status"] != "quiz_started" || start["session_id"] != id {
		t.Errorf("unexpected quiz start %v", start)
	}
	sess, _ := env.sessions.Get(context.Background(), id)
	if !sess.State.QuizActive {
		t.Error("expected quiz active")
	}

	rec = env.do(t, http.MethodPost, "/api/session/"+id+"/quiz/end", nil)
	var end map[string]any
	decode(t, rec, &end)
	if end["status"] != "quiz_ended" || end["was_active"] != true {
		t.Errorf("unexpected quiz end %v", end)
	}
	sess, _ = env.sessions.Get(context.Background(), id)
	if sess.State.QuizActive {
		t.Error("expected quiz inactive")
	}
}

func TestLibrarian(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodPost, "/api/agents/librarian/search", map[string]any{"query": " attention ", "max_results": 500})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.librarian.query != "attention" || env.librarian.limit != maxSearchResults {
		t.Errorf("expected trimmed query and clamped limit, got %q %d", env.librarian.query, env.librarian.limit)
	}

	rec = env.do(t, http.MethodPost, "/api/agents/librarian/search", map[string]any{"query": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty query, got %d", rec.Code)
	}

	env.librarian.err = errors.New("upstream down")
	rec = env.do(t, http.MethodPost, "/api/agents/librarian/search", map[string]any{"query": "x"})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/agents/librarian/papers/1706.03762", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/agents/librarian/papers/0000.00000", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestLibrarianDownload(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodPost, "/api/agents/librarian/download", map[string]any{"arxiv_id": "1706.03762"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	decode(t, rec, &resp)
	if resp["filename"] != "arxiv-1706.03762.pdf" {
		t.Errorf("unexpected filename %v", resp["filename"])
	}
	if _, ok := resp["outline"]; ok {
		t.Error("expected no outline in download response")
	}

	rec = env.do(t, http.MethodPost, "/api/agents/librarian/download", map[string]any{"arxiv_id": "../etc"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestVoice(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/api/voice-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.voice.participant != "student" {
		t.Errorf("expected default participant student, got %q", env.voice.participant)
	}
	if !strings.Contains(rec.Body.String(), `"token":"tok"`) {
		t.Errorf("expected passthrough body, got %q", rec.Body.String())
	}

	env.do(t, http.MethodGet, "/api/voice-token?participant=ada", nil)
	if env.voice.participant != "ada" {
		t.Errorf("expected participant ada, got %q", env.voice.participant)
	}

	env.voice.err = vocalbridge.ErrNotConfigured
	rec = env.do(t, http.MethodGet, "/api/voice-agent", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}

	env.voice.err = errors.New("boom")
	rec = env.do(t, http.MethodGet, "/api/voice-agent", nil)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestRemoteStats(t *testing.T) {
	env := newTestEnv(t, "")
	env.srv.stats.Observe("arxiv", time.Now().Add(-50*time.Millisecond), nil)

	rec := env.do(t, http.MethodGet, "/api/stats/remote", nil)
	var resp struct {
		Remotes map[string]apistats.Snapshot `json:"remotes"`
	}
	decode(t, rec, &resp)
	if _, ok := resp.Remotes["arxiv"]; !ok {
		t.Errorf("expected arxiv in remotes, got %v", resp.Remotes)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"paper.pdf", "paper.pdf"},
		{"../../etc/paper.pdf", "paper.pdf"},
		{`C:\Users\me\paper.pdf`, "paper.pdf"},
		{"a..b.pdf", "a_b.pdf"},
		{"", "unnamed.pdf"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
