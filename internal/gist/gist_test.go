package gist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gistfav/gistfav/internal/favorites"
)

const (
	testOwner = "octo"
	testID    = "abc123"
	testFile  = "data.json"
	testToken = "secret"
)

// fakeGist serves both the raw content path and the REST API for one gist.
type fakeGist struct {
	t *testing.T

	mu      sync.Mutex
	content string

	calls      atomic.Int32
	rawStatus  int
	getStatus  int
	editStatus int
	omitFile   bool

	// getBarrier, when set, holds every API read until all expected reads arrived.
	getBarrier *sync.WaitGroup
}

func newFakeGist(t *testing.T, content string) (*fakeGist, *httptest.Server) {
	t.Helper()
	f := &fakeGist{t: t, content: content}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeGist) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)

	switch {
	case r.URL.Path == "/"+testOwner+"/"+testID+"/raw/"+testFile && r.Method == http.MethodGet:
		if f.rawStatus != 0 {
			w.WriteHeader(f.rawStatus)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Write([]byte(f.content))

	case r.URL.Path == "/gists/"+testID && r.Method == http.MethodGet:
		if got := r.Header.Get("Authorization"); got != "token "+testToken {
			f.t.Errorf("Authorization = %q, want %q", got, "token "+testToken)
		}
		if f.getStatus != 0 {
			w.WriteHeader(f.getStatus)
			w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}
		f.mu.Lock()
		content := f.content
		barrier := f.getBarrier
		f.mu.Unlock()
		if barrier != nil {
			barrier.Done()
			barrier.Wait()
		}
		files := map[string]any{}
		if !f.omitFile {
			files[testFile] = map[string]any{"filename": testFile, "content": content}
		}
		json.NewEncoder(w).Encode(map[string]any{"id": testID, "files": files})

	case r.URL.Path == "/gists/"+testID && r.Method == http.MethodPatch:
		if got := r.Header.Get("Authorization"); got != "token "+testToken {
			f.t.Errorf("Authorization = %q, want %q", got, "token "+testToken)
		}
		if f.editStatus != 0 {
			w.WriteHeader(f.editStatus)
			w.Write([]byte(`{"message":"nope"}`))
			return
		}
		var body struct {
			Files map[string]struct {
				Content *string `json:"content"`
			} `json:"files"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			f.t.Errorf("decoding PATCH body: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, ok := body.Files[testFile]
		if !ok || file.Content == nil {
			f.t.Errorf("PATCH body has no content for %s", testFile)
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		f.mu.Lock()
		f.content = *file.Content
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"id": testID})

	default:
		f.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeGist) Content() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content
}

func newTestClient(srv *httptest.Server) *Client {
	return New(Config{
		Owner:      testOwner,
		GistID:     testID,
		Filename:   testFile,
		RawBaseURL: srv.URL,
		APIBaseURL: srv.URL,
		HTTPClient: srv.Client(),
	})
}

func TestRawURL_CacheBuster(t *testing.T) {
	c := New(Config{Owner: testOwner, GistID: testID, Filename: testFile})
	c.now = func() time.Time { return time.UnixMilli(1700000000123) }

	want := "https://gist.githubusercontent.com/octo/abc123/raw/data.json?t=1700000000123"
	if got := c.RawURL(); got != want {
		t.Errorf("RawURL() = %q, want %q", got, want)
	}
}

func TestFetchAll_Success(t *testing.T) {
	_, srv := newFakeGist(t, `[{"name":"Go","url":"https://go.dev","description":"lang"},{"name":"Gist","url":"https://gist.github.com"}]`)
	c := newTestClient(srv)

	got, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error: %v", err)
	}
	want := []favorites.Entry{
		{Name: "Go", URL: "https://go.dev", Description: "lang"},
		{Name: "Gist", URL: "https://gist.github.com"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FetchAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchAll_EmptyArray(t *testing.T) {
	_, srv := newFakeGist(t, `[]`)
	got, err := newTestClient(srv).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("FetchAll() = %#v, want empty non-nil slice", got)
	}
}

func TestFetchAll_BadStatus(t *testing.T) {
	f, srv := newFakeGist(t, `[]`)
	f.rawStatus = http.StatusNotFound

	_, err := newTestClient(srv).FetchAll(context.Background())
	if !errors.Is(err, ErrRemoteRead) {
		t.Fatalf("FetchAll() error = %v, want ErrRemoteRead", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %q, want to mention 404", err.Error())
	}
}

func TestFetchAll_NotAnArray(t *testing.T) {
	for _, body := range []string{`{"name":"x"}`, `null`, `not json`} {
		_, srv := newFakeGist(t, body)
		_, err := newTestClient(srv).FetchAll(context.Background())
		if !errors.Is(err, ErrMalformedRemoteData) {
			t.Errorf("FetchAll(%s) error = %v, want ErrMalformedRemoteData", body, err)
		}
	}
}

func TestFetchAll_Cancelled(t *testing.T) {
	_, srv := newFakeGist(t, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv).FetchAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FetchAll() error = %v, want context.Canceled", err)
	}
}

func TestAppend_MissingTokenMakesNoCalls(t *testing.T) {
	f, srv := newFakeGist(t, `[]`)
	c := newTestClient(srv)

	for _, tok := range []string{"", "   "} {
		err := c.Append(context.Background(), favorites.Entry{Name: "x", URL: "https://x"}, tok)
		if !errors.Is(err, ErrMissingToken) {
			t.Errorf("Append(token=%q) error = %v, want ErrMissingToken", tok, err)
		}
	}
	if n := f.calls.Load(); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestAppend_ReadYourWrite(t *testing.T) {
	_, srv := newFakeGist(t, `[{"name":"Go","url":"https://go.dev"}]`)
	c := newTestClient(srv)

	added := favorites.Entry{Name: "Search", URL: "https://example.com/?a=1&b=2", Description: "q"}
	if err := c.Append(context.Background(), added, testToken); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	got, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error: %v", err)
	}
	want := []favorites.Entry{{Name: "Go", URL: "https://go.dev"}, added}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("after Append (-want +got):\n%s", diff)
	}
}

func TestAppend_PrettyPrintsAndKeepsUnknownFields(t *testing.T) {
	f, srv := newFakeGist(t, `[{"name":"Go","url":"https://go.dev","tags":["lang"]}]`)
	c := newTestClient(srv)

	if err := c.Append(context.Background(), favorites.Entry{Name: "A&B", URL: "https://a.example/?x=1&y=2"}, testToken); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	content := f.Content()
	if !strings.HasPrefix(content, "[\n    {\n        \"name\": \"Go\"") {
		t.Errorf("content not indented with four spaces:\n%s", content)
	}
	if !strings.Contains(content, `"tags": [`) {
		t.Errorf("unknown field lost:\n%s", content)
	}
	if !strings.Contains(content, `"https://a.example/?x=1&y=2"`) {
		t.Errorf("URL was escaped:\n%s", content)
	}
	if strings.HasSuffix(content, "\n") {
		t.Error("content should not end with a newline")
	}
}

func TestAppend_WritesEmptyDescription(t *testing.T) {
	f, srv := newFakeGist(t, `[]`)
	c := newTestClient(srv)

	if err := c.Append(context.Background(), favorites.Entry{Name: "Go", URL: "https://go.dev"}, testToken); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	want := "[\n    {\n        \"name\": \"Go\",\n        \"url\": \"https://go.dev\",\n        \"description\": \"\"\n    }\n]"
	if got := f.Content(); got != want {
		t.Errorf("content =\n%s\nwant\n%s", got, want)
	}
}

func TestAppend_AuthError(t *testing.T) {
	f, srv := newFakeGist(t, `[]`)
	f.getStatus = http.StatusUnauthorized

	err := newTestClient(srv).Append(context.Background(), favorites.Entry{Name: "x", URL: "https://x"}, testToken)
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("Append() error = %v, want ErrAuth", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want to mention 401", err.Error())
	}
}

func TestAppend_MalformedContent(t *testing.T) {
	for _, content := range []string{`{"not":"array"}`, `null`, ``, `garbage`} {
		f, srv := newFakeGist(t, content)
		err := newTestClient(srv).Append(context.Background(), favorites.Entry{Name: "x", URL: "https://x"}, testToken)
		if !errors.Is(err, ErrMalformedRemoteData) {
			t.Errorf("Append(content=%q) error = %v, want ErrMalformedRemoteData", content, err)
		}
		if f.Content() != content {
			t.Errorf("content changed after malformed read: %q", f.Content())
		}
	}
}

func TestAppend_MissingFile(t *testing.T) {
	f, srv := newFakeGist(t, `[]`)
	f.omitFile = true

	err := newTestClient(srv).Append(context.Background(), favorites.Entry{Name: "x", URL: "https://x"}, testToken)
	if !errors.Is(err, ErrMalformedRemoteData) {
		t.Errorf("Append() error = %v, want ErrMalformedRemoteData", err)
	}
}

func TestAppend_WriteError(t *testing.T) {
	f, srv := newFakeGist(t, `[]`)
	f.editStatus = http.StatusForbidden

	err := newTestClient(srv).Append(context.Background(), favorites.Entry{Name: "x", URL: "https://x"}, testToken)
	if !errors.Is(err, ErrRemoteWrite) {
		t.Fatalf("Append() error = %v, want ErrRemoteWrite", err)
	}
	if f.Content() != `[]` {
		t.Errorf("content = %q, want unchanged", f.Content())
	}
}

// Two appends that read the same starting state each write back a document
// missing the other's entry. This is the current behaviour, not a goal.
func TestAppend_ConcurrentAppendsLoseAnEntry(t *testing.T) {
	f, srv := newFakeGist(t, `[{"name":"base","url":"https://base.example"}]`)
	var barrier sync.WaitGroup
	barrier.Add(2)
	f.getBarrier = &barrier

	c := newTestClient(srv)
	entries := []favorites.Entry{
		{Name: "first", URL: "https://first.example"},
		{Name: "second", URL: "https://second.example"},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(entries))
	for i, e := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = c.Append(context.Background(), e, testToken)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Append #%d error: %v", i, err)
		}
	}

	f.mu.Lock()
	f.getBarrier = nil
	f.mu.Unlock()
	got, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2 (one append lost): %+v", len(got), got)
	}
	if got[0].Name != "base" {
		t.Errorf("got[0] = %q, want base", got[0].Name)
	}
	if got[1].Name != "first" && got[1].Name != "second" {
		t.Errorf("got[1] = %q, want one of the appended entries", got[1].Name)
	}
}
