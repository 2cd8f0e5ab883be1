package raw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
	"lotwatch/pkg/models"
)

const testVIN = "XTA210990Y2696785"

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Sites.KonfiskatURL = baseURL
	cfg.Scraper.RequestTimeout = 5 * time.Second
	cfg.Scraper.UserAgent = "test-agent"
	cfg.Scraper.AcceptLanguage = "ru-RU,ru;q=0.9"
	return cfg
}

func newProber(t *testing.T, baseURL string) *KonfiskatProber {
	t.Helper()
	return NewKonfiskatProber(testConfig(baseURL), logging.GetGlobalLogger())
}

// pad grows a page past the small-response threshold so it reads as a real
// page rather than a verification interstitial.
func pad(html string) string {
	return html + strings.Repeat("<!-- filler -->", 400)
}

func TestProbeFindsMatch(t *testing.T) {
	searchPage := pad(`<html><form id="js-search-form" method="POST">
		<input type="hidden" name="_token" value="tok123">
		<input name="query"></form></html>`)
	resultPage := pad(`<html><div class="property-listing"><div class="listing-content">
		VIN: ` + testVIN + `</div></div></html>`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(searchPage))
			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "tok123", r.PostForm.Get("_token"))
		assert.Equal(t, testVIN, r.PostForm.Get("query"))
		assert.Equal(t, "1", r.PostForm.Get("page"))
		w.Write([]byte(resultPage))
	}))
	defer server.Close()

	verdict := newProber(t, server.URL).Probe(context.Background(), models.Identifier{VIN: testVIN})

	assert.True(t, verdict.Found)
	assert.Contains(t, verdict.URL, server.URL)
	assert.Contains(t, verdict.Details, testVIN)
}

func TestProbeNoMatchOnEchoedQuery(t *testing.T) {
	// The site echoes the query back in the form even with zero results.
	// Without the result-container markers that echo must not count.
	searchPage := pad(`<input name="_token" value="tok123">`)
	echoPage := pad(`<html><form><input name="query" value="` + testVIN + `"></form>
		<p>Ничего не найдено</p></html>`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(searchPage))
			return
		}
		w.Write([]byte(echoPage))
	}))
	defer server.Close()

	verdict := newProber(t, server.URL).Probe(context.Background(), models.Identifier{VIN: testVIN})

	assert.False(t, verdict.Found)
	assert.Equal(t, "No matching listings", verdict.Details)
}

func TestProbeSmallTokenlessPageReadsAsVerification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Checking your browser</body></html>`))
	}))
	defer server.Close()

	verdict := newProber(t, server.URL).Probe(context.Background(), models.Identifier{VIN: testVIN})

	assert.False(t, verdict.Found)
	assert.Contains(t, verdict.Details, "bot verification")
}

func TestProbeLargeTokenlessPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pad(`<html><body>Regular page without the form</body></html>`)))
	}))
	defer server.Close()

	verdict := newProber(t, server.URL).Probe(context.Background(), models.Identifier{VIN: testVIN})

	assert.False(t, verdict.Found)
	assert.Equal(t, "Could not extract CSRF token", verdict.Details)
}

func TestProbeNetworkErrorProducesVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	verdict := newProber(t, server.URL).Probe(context.Background(), models.Identifier{VIN: testVIN})

	assert.False(t, verdict.Found)
	assert.Contains(t, verdict.Details, "Request failed")
}

func TestProbeAllSearchesFailSurfacesError(t *testing.T) {
	var gotToken bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gotToken = true
			w.Write([]byte(pad(`<input name="_token" value="tok123">`)))
			return
		}
		// Kill the connection mid-response for every search POST
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer server.Close()

	verdict := newProber(t, server.URL).Probe(context.Background(), models.Identifier{VIN: testVIN, Plate: "А123БВ777"})

	assert.True(t, gotToken)
	assert.False(t, verdict.Found)
	assert.Contains(t, verdict.Details, "Request failed")
}

func TestProbeTriesPlateAfterVINMiss(t *testing.T) {
	var queries []string
	resultPage := pad(`<div class="property-listing"><div class="listing-content">А123БВ777</div></div>`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(pad(`<input name="_token" value="tok123">`)))
			return
		}
		require.NoError(t, r.ParseForm())
		q := r.PostForm.Get("query")
		queries = append(queries, q)
		if q == "А123БВ777" {
			w.Write([]byte(resultPage))
			return
		}
		w.Write([]byte(pad(`<p>Ничего не найдено</p>`)))
	}))
	defer server.Close()

	verdict := newProber(t, server.URL).Probe(context.Background(), models.Identifier{VIN: testVIN, Plate: "А123БВ777"})

	assert.True(t, verdict.Found)
	assert.Equal(t, []string{testVIN, "А123БВ777"}, queries)
	assert.Contains(t, verdict.Details, "А123БВ777")
}
