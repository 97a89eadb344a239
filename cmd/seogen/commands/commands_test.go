package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/seogen/internal/config"
	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
)

const shellDoc = `<!doctype html>
<html lang="ru">
  <head>
    <meta charset="UTF-8" />
    <title>FloRustic</title>
    <meta name="description" content="Доставка цветов" />
  </head>
  <body><div id="root"></div></body>
</html>
`

func newSourceServer(t *testing.T, productsStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/cities", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Москва"}, {"id": 2, "name": "Курск"}]`))
	})
	mux.HandleFunc("/products", func(w http.ResponseWriter, _ *http.Request) {
		if productsStatus != http.StatusOK {
			w.WriteHeader(productsStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products": [{"id": 42, "name": "Букет роз", "price": "3500"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestConfig(t *testing.T, srv *httptest.Server) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	cfg.Sources.CitiesURL = srv.URL + "/cities"
	cfg.Sources.ProductsURL = srv.URL + "/products"
	cfg.Sources.Timeout = config.Duration(5 * time.Second)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Output.Dir, "index.html"), []byte(shellDoc), 0o644))
	return cfg
}

func TestParseDefaultsToGenerate(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, "generate"},
		{"generate flags without command", []string{"-o", "out", "--concurrency", "2"}, "generate"},
		{"verify", []string{"verify", "--samples", "3"}, "verify"},
		{"history", []string{"history", "-n", "5"}, "history"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cli CLI
			parser, err := kong.New(&cli, kong.Vars{"version": "test"})
			require.NoError(t, err)
			ctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ctx.Command())
		})
	}
}

func TestGenerateFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cmd := GenerateCmd{Output: "public", Shell: "public/shell.html", Concurrency: 3, Report: "r.json"}
	cmd.apply(cfg)

	assert.Equal(t, "public", cfg.Output.Dir)
	assert.Equal(t, "public/shell.html", cfg.Output.ShellPath())
	assert.Equal(t, 3, cfg.Generation.Concurrency)
	assert.Equal(t, "r.json", cfg.Output.Report)

	untouched := config.Default()
	(&GenerateCmd{}).apply(untouched)
	assert.Equal(t, config.Default(), untouched)
}

func TestRunGenerateThenVerifyAndHistory(t *testing.T) {
	srv := newSourceServer(t, http.StatusOK)
	cfg := newTestConfig(t, srv)
	state := t.TempDir()
	cfg.History.DB = filepath.Join(state, "history.db")
	cfg.Metrics.Textfile = filepath.Join(state, "seogen.prom")

	var out bytes.Buffer
	report, err := RunGenerate(t.Context(), cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, report.CityCount)
	assert.Equal(t, 1, report.ProductCount)
	assert.Equal(t, 5, report.StaticCount)
	assert.Contains(t, out.String(), "cities:   2")
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "city", "moskva", "index.html"))
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "product", "42", "index.html"))

	prom, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "seogen_")

	out.Reset()
	require.NoError(t, RunVerify(cfg, &out))
	assert.Contains(t, out.String(), "city:    2")
	assert.Contains(t, out.String(), "other:   1")
	assert.Contains(t, out.String(), "OK")

	out.Reset()
	require.NoError(t, RunHistory(context.Background(), cfg, 5, &out))
	assert.Contains(t, out.String(), report.RunID)
	assert.Contains(t, out.String(), "success")
}

func TestRunGenerateSourceOutageExitCode(t *testing.T) {
	srv := newSourceServer(t, http.StatusServiceUnavailable)
	cfg := newTestConfig(t, srv)

	var out bytes.Buffer
	report, err := RunGenerate(t.Context(), cfg, &out)

	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, errors.ExitSourceUnavailable, exit.Code)
	assert.Equal(t, 2, report.CityCount)
	assert.Zero(t, report.ProductCount)
	assert.Contains(t, out.String(), "Unavailable sources:")
}

func TestRunGenerateBadProductRowsFailAlone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cities", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"name": "Москва"}]`))
	})
	mux.HandleFunc("/products", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": "12a", "name": "Розы", "price": "3500"},
			{"id": 13, "name": "Тюльпаны", "price": "abc"},
			{"id": 42, "name": "Пионы", "price": "2500"}
		]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	cfg := newTestConfig(t, srv)

	report, err := RunGenerate(t.Context(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.ProductCount)
	assert.Empty(t, report.ClassErrors)
	require.Len(t, report.Failures, 2)
	for _, f := range report.Failures {
		assert.Equal(t, "products", f.Class)
		assert.Equal(t, string(errors.CategoryValidation), f.Code)
	}
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "product", "42", "index.html"))
}

func TestRunGenerateMissingShellIsFatal(t *testing.T) {
	srv := newSourceServer(t, http.StatusOK)
	cfg := newTestConfig(t, srv)
	require.NoError(t, os.Remove(filepath.Join(cfg.Output.Dir, "index.html")))

	_, err := RunGenerate(t.Context(), cfg, &bytes.Buffer{})
	require.Error(t, err)
	var exit *ExitError
	assert.NotErrorAs(t, err, &exit)
	assert.Equal(t, errors.ExitBuildFailure, errors.ExitCode(err))
}

func TestRunVerifyEmptyTree(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()

	err := RunVerify(cfg, &bytes.Buffer{})
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, errors.ExitNoSuccess, exit.Code)
}

func TestRunHistoryRequiresDatabase(t *testing.T) {
	err := RunHistory(context.Background(), config.Default(), 5, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestWatchLoopDebouncesTargetEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	shell := filepath.Join(t.TempDir(), "index.html")
	events := make(chan fsnotify.Event, 8)
	errs := make(chan error)

	events <- fsnotify.Event{Name: filepath.Join(filepath.Dir(shell), "sitemap.xml"), Op: fsnotify.Write}
	events <- fsnotify.Event{Name: shell, Op: fsnotify.Chmod}
	events <- fsnotify.Event{Name: shell, Op: fsnotify.Write}
	events <- fsnotify.Event{Name: shell, Op: fsnotify.Create}

	runs := 0
	regenerate := func(context.Context) {
		runs++
		cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, events, errs, map[string]bool{shell: true}, 20*time.Millisecond, regenerate)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not regenerate")
	}
	assert.Equal(t, 1, runs)
}

func TestWatchLoopIgnoresOtherFiles(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	events := make(chan fsnotify.Event, 1)
	events <- fsnotify.Event{Name: "/tmp/dist/robots.txt", Op: fsnotify.Write}

	runs := 0
	err := watchLoop(ctx, events, make(chan error), map[string]bool{"/tmp/dist/index.html": true},
		time.Millisecond, func(context.Context) { runs++ })
	require.NoError(t, err)
	assert.Zero(t, runs)
}
