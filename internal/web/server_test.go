package web

import (
	"encoding/json"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"image-prompt-builder/internal/metrics"
	"image-prompt-builder/internal/promptbuilder"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func exampleForm() url.Values {
	return url.Values{
		"aspect_ratio": {"1:1"},
		"style":        {"anime"},
		"environment":  {"urban"},
		"lighting":     {"neon"},
		"colors":       {"pastel"},
		"camera_angle": {"close-up"},
		"details":      {""},
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestFormListsEveryOption(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := html.UnescapeString(readBody(t, resp))

	for _, spec := range promptbuilder.DefaultCatalog().Fields() {
		for _, o := range spec.Extended() {
			if !strings.Contains(body, `<option value="`+o+`"`) {
				t.Errorf("%s: option %q missing", spec.Key(), o)
			}
		}
	}
	if !strings.Contains(body, `<option value="16:9" selected>`) {
		t.Error("default aspect ratio not selected")
	}
	if strings.Contains(body, "Generated Prompt") {
		t.Error("result rendered without generate")
	}
}

func TestGenerate(t *testing.T) {
	ts := newTestServer(t)

	form := exampleForm()
	form.Set("action", "generate")
	resp, err := http.PostForm(ts.URL+"/", form)
	if err != nil {
		t.Fatal(err)
	}
	body := html.UnescapeString(readBody(t, resp))

	want := "anime style, neon lighting, pastel color scheme, close-up, set in urban, aspect ratio 1:1"
	if !strings.Contains(body, want) {
		t.Fatalf("prompt missing from page")
	}
	if !strings.Contains(body, `"custom_elements": "None"`) {
		t.Fatal("details json missing from page")
	}
}

func TestGenerateCustomValue(t *testing.T) {
	ts := newTestServer(t)

	form := exampleForm()
	form.Set("lighting", promptbuilder.CustomOption)
	form.Set("lighting_custom", "candle light")
	form.Set("action", "generate")
	resp, err := http.PostForm(ts.URL+"/", form)
	if err != nil {
		t.Fatal(err)
	}
	body := html.UnescapeString(readBody(t, resp))

	if !strings.Contains(body, "candle light lighting") {
		t.Fatal("custom lighting not used")
	}
	if !strings.Contains(body, `value="candle light"`) {
		t.Fatal("custom text not kept in the form")
	}
}

func TestRandomizeKeepsValues(t *testing.T) {
	ts := newTestServer(t)

	form := exampleForm()
	form.Set("action", "randomize")
	resp, err := http.PostForm(ts.URL+"/", form)
	if err != nil {
		t.Fatal(err)
	}
	body := html.UnescapeString(readBody(t, resp))

	if !strings.Contains(body, `<option value="anime" selected>`) {
		t.Fatal("submitted style not kept")
	}
	if strings.Contains(body, "Generated Prompt") {
		t.Fatal("randomize rendered a result")
	}
}

func TestDownload(t *testing.T) {
	ts := newTestServer(t)

	form := exampleForm()
	form.Set("details", "a <b> tag")
	resp, err := http.PostForm(ts.URL+"/download", form)
	if err != nil {
		t.Fatal(err)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, `filename="image_prompt.json"`) {
		t.Fatalf("content-disposition = %q", cd)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content-type = %q", ct)
	}

	rec, err := promptbuilder.ParseRecord([]byte(readBody(t, resp)))
	if err != nil {
		t.Fatal(err)
	}
	if rec.CustomElements != "a <b> tag" || !strings.HasPrefix(rec.FullPrompt, "a <b> tag, anime style") {
		t.Fatalf("record = %+v", rec)
	}
}

func TestDownloadExportsRenderedRecord(t *testing.T) {
	ts := newTestServer(t)

	form := exampleForm()
	form.Set("action", "generate")
	resp, err := http.PostForm(ts.URL+"/", form)
	if err != nil {
		t.Fatal(err)
	}
	page := readBody(t, resp)
	const marker = `name="record" value="`
	i := strings.Index(page, marker)
	if i < 0 {
		t.Fatal("rendered record missing from page")
	}
	rest := page[i+len(marker):]
	rendered := html.UnescapeString(rest[:strings.Index(rest, `"`)])

	// The user changed the form after generating.
	form.Set("style", "sketch")
	form.Set("details", "something else")
	form.Set("record", rendered)
	resp, err = http.PostForm(ts.URL+"/download", form)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := promptbuilder.ParseRecord([]byte(readBody(t, resp)))
	if err != nil {
		t.Fatal(err)
	}
	want, err := promptbuilder.ParseRecord([]byte(rendered))
	if err != nil {
		t.Fatal(err)
	}
	if rec != want || rec.Style != "anime" || rec.CustomElements != "None" {
		t.Fatalf("record = %+v, want %+v", rec, want)
	}
}

func TestDownloadRejectsBadRecord(t *testing.T) {
	ts := newTestServer(t)

	form := exampleForm()
	form.Set("record", `{"style":"anime"}`)
	resp, err := http.PostForm(ts.URL+"/download", form)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestUnmatchedPathsShareOneSeries(t *testing.T) {
	ts := newTestServer(t)

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")
	before := testutil.ToFloat64(counter)
	series := testutil.CollectAndCount(metrics.HTTPRequestsTotal)

	for _, p := range []string{"/nope-a-1", "/nope-b-2"} {
		resp, err := http.Get(ts.URL + p)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: status = %d", p, resp.StatusCode)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Fatalf("unmatched count grew by %v, want 2", got)
	}
	if got := testutil.CollectAndCount(metrics.HTTPRequestsTotal); got != series {
		t.Fatalf("series = %d, want %d", got, series)
	}
}

func TestAPIPrompt(t *testing.T) {
	ts := newTestServer(t)

	body := `{"style":{"value":"ukiyo-e","custom":true},"lighting":{"value":"neon"},"details":"koi"}`
	resp, err := http.Post(ts.URL+"/api/prompt", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var rec promptbuilder.Record
	if err := json.Unmarshal([]byte(readBody(t, resp)), &rec); err != nil {
		t.Fatal(err)
	}
	want := "koi, ukiyo-e style, neon lighting, vibrant color scheme, front view, set in studio, aspect ratio 16:9"
	if rec.FullPrompt != want {
		t.Fatalf("FullPrompt = %q, want %q", rec.FullPrompt, want)
	}
}

func TestAPIPromptRejectsBadJSON(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{`{`, `{"mood":{"value":"calm"}}`} {
		resp, err := http.Post(ts.URL+"/api/prompt", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		got := readBody(t, resp)
		if resp.StatusCode != http.StatusBadRequest || !strings.Contains(got, `"error"`) {
			t.Fatalf("%s: status %d body %s", body, resp.StatusCode, got)
		}
	}
}

func TestAPICatalog(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/catalog")
	if err != nil {
		t.Fatal(err)
	}
	var fields []catalogField
	if err := json.Unmarshal([]byte(readBody(t, resp)), &fields); err != nil {
		t.Fatal(err)
	}
	if len(fields) != 6 {
		t.Fatalf("fields = %d", len(fields))
	}
	if fields[0].Key != "aspect_ratio" || fields[0].DefaultIndex != 0 || fields[0].Column != "Basic Settings" {
		t.Fatalf("first field = %+v", fields[0])
	}
	if last := fields[5].Options[len(fields[5].Options)-1]; last != promptbuilder.CustomOption {
		t.Fatalf("last option = %q", last)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	if got := readBody(t, resp); !strings.Contains(got, `"ok"`) {
		t.Fatalf("healthz = %s", got)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	if got := readBody(t, resp); !strings.Contains(got, "image_prompt_builder_http_requests_total") {
		t.Fatal("http metrics not exported")
	}
}

func TestSelectionFromFormDefaults(t *testing.T) {
	cat := promptbuilder.DefaultCatalog()
	sel := selectionFromForm(cat, url.Values{"style": {"sketch"}})

	if sel.Resolve(promptbuilder.Style) != "sketch" {
		t.Fatalf("style = %q", sel.Resolve(promptbuilder.Style))
	}
	if sel.Resolve(promptbuilder.Lighting) != "natural" {
		t.Fatalf("lighting = %q", sel.Resolve(promptbuilder.Lighting))
	}
}
