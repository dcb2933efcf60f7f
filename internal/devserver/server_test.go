package devserver

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"iviweb/internal/markup"
	tu "iviweb/internal/testutil"
)

func newRouter(t *testing.T, contentDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r, err := (&Server{ContentDir: contentDir}).Router()
	if err != nil {
		t.Fatalf("Router error: %v", err)
	}
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIndexServesForm(t *testing.T) {
	w := serve(newRouter(t, ""), httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	doc, err := markup.ParseString(w.Body.String())
	if err != nil {
		t.Fatalf("index is not parseable: %v", err)
	}
	form := doc.FindTag("form")
	if form == nil {
		t.Fatalf("no form in index")
	}
	if action, _ := form.Attr("action"); action != "/post_data" {
		t.Fatalf("unexpected action %q", action)
	}
}

func TestPostDataRedirects(t *testing.T) {
	r := newRouter(t, "")
	body := url.Values{"first_name": {"Ada"}, "last_name": {"Lovelace"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/post_data", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(r, req)
	if w.Code != http.StatusFound {
		t.Fatalf("status %d", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/display_data?") || !strings.Contains(loc, "first_name=Ada") {
		t.Fatalf("unexpected redirect %q", loc)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, loc, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("display status %d", w.Code)
	}
	out := w.Body.String()
	if !strings.Contains(out, "first_name: Ada") || !strings.Contains(out, "last_name: Lovelace") {
		t.Fatalf("fields missing from results: %s", out)
	}
	if strings.Index(out, "first_name") > strings.Index(out, "last_name") {
		t.Fatalf("fields should be sorted")
	}
}

func TestNoData(t *testing.T) {
	r := newRouter(t, "")
	cases := []*http.Request{
		httptest.NewRequest(http.MethodPost, "/post_data", nil),
		httptest.NewRequest(http.MethodGet, "/display_data", nil),
		httptest.NewRequest(http.MethodPost, "/display_data", nil),
	}
	for _, req := range cases {
		w := serve(r, req)
		if w.Code != http.StatusOK || w.Body.String() != noData {
			t.Fatalf("%s %s: %d %q", req.Method, req.URL, w.Code, w.Body.String())
		}
	}
}

func TestContentDir(t *testing.T) {
	dir := t.TempDir()
	tu.WriteFile(t, dir, "hello.html", "<html><body><p>hi</p></body></html>")
	r := newRouter(t, dir)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/pages/hello.html", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<p>hi</p>") {
		t.Fatalf("content page: %d %q", w.Code, w.Body.String())
	}
	w = serve(newRouter(t, ""), httptest.NewRequest(http.MethodGet, "/pages/hello.html", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("pages should 404 without a content dir, got %d", w.Code)
	}
}
