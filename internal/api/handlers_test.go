package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmrzaf/datalchemy/internal/app"
	"github.com/mmrzaf/datalchemy/internal/assets"
	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/exec"
	"github.com/mmrzaf/datalchemy/internal/infra/repos/plans"
	"github.com/mmrzaf/datalchemy/internal/infra/repos/runs"
	"github.com/mmrzaf/datalchemy/internal/logging"
	"github.com/mmrzaf/datalchemy/internal/registry"
)

const runBody = `{
  "schema": {
    "schema_version": "0.2",
    "engine": "postgres",
    "schemas": [{"name": "public", "tables": [
      {"name": "users",
       "columns": [
         {"ordinal_position": 1, "name": "id", "column_type": {"data_type": "integer", "udt_name": "int4"}, "is_nullable": false},
         {"ordinal_position": 2, "name": "name", "column_type": {"data_type": "text", "udt_name": "text"}, "is_nullable": true}
       ],
       "constraints": [{"kind": "primary_key", "columns": ["id"]}]}
    ]}],
    "enums": []
  },
  "plan": {
    "plan_version": "0.1",
    "seed": 5,
    "schema_ref": {"schema_version": "0.2", "engine": "postgres"},
    "targets": [{"schema": "public", "table": "users", "rows": 4}],
    "rules": [{"type": "column_generator", "schema": "public", "table": "users", "column": "name", "generator": "semantic.br.name"}]
  }
}`

func newTestHandler(t *testing.T) (http.Handler, *runs.SQLiteRepository) {
	t.Helper()

	runRepo := runs.NewSQLiteRepository(filepath.Join(t.TempDir(), "runs.db"))
	if err := runRepo.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = runRepo.Close() })

	opts := exec.DefaultOptions()
	opts.OutDir = t.TempDir()
	svc := app.NewRunService(
		plans.NewFileRepository(t.TempDir()),
		runRepo,
		registry.DefaultGeneratorRegistry(assets.NewLoader(t.TempDir())),
		logging.NewNop(),
		opts,
	)
	return NewHandler(svc).Routes(), runRepo
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateRun_GeneratesAndRecords(t *testing.T) {
	h, runRepo := newTestHandler(t)

	rec := do(h, http.MethodPost, "/api/v1/runs", runBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	var got struct {
		Run    domain.Run              `json:"run"`
		Report domain.GenerationReport `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Run.Status != domain.RunStatusSuccess || got.Run.Seed != 5 {
		t.Fatalf("unexpected run: %#v", got.Run)
	}
	if len(got.Report.Tables) != 1 || got.Report.Tables[0].RowsGenerated != 4 {
		t.Fatalf("unexpected report tables: %#v", got.Report.Tables)
	}

	stored, err := runRepo.Get(got.Run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.RunStatusSuccess {
		t.Fatalf("expected stored success, got %s", stored.Status)
	}

	rec = do(h, http.MethodGet, "/api/v1/runs/"+got.Run.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = do(h, http.MethodGet, "/api/v1/runs?status=success", "")
	var list []*domain.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != got.Run.ID {
		t.Fatalf("unexpected run list: %#v", list)
	}
}

func TestCreateRun_RejectsBadInput(t *testing.T) {
	h, _ := newTestHandler(t)

	if rec := do(h, http.MethodPost, "/api/v1/runs", `{"nope": 1}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}

	bad := strings.Replace(runBody, `"column": "name"`, `"column": "missing"`, 1)
	rec := do(h, http.MethodPost, "/api/v1/runs", bad)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid plan, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPlanRun_ReturnsTasks(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(h, http.MethodPost, "/api/v1/runs/plan", runBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var got app.PlanResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Rows != 4 || got.ConfigHash == "" {
		t.Fatalf("unexpected plan: %#v", got)
	}
}

func TestGetRun_UnknownIs404(t *testing.T) {
	h, _ := newTestHandler(t)
	if rec := do(h, http.MethodGet, "/api/v1/runs/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListGenerators(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(h, http.MethodGet, "/api/v1/generators", "")
	var infos []registry.Info
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, info := range infos {
		if info.ID == "semantic.person.email" && info.Kind == "generator" {
			found = true
		}
	}
	if !found {
		t.Fatalf("semantic.person.email missing from %d entries", len(infos))
	}
}

func TestLoggingMiddleware_LogsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLoggerWithWriter("info", &buf)
	h := LoggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	do(h, http.MethodGet, "/x", "")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected one json line, got %q", buf.String())
	}
	if rec["level"] != "warn" || rec["msg"] != "request.completed" || rec["status"] != float64(http.StatusTeapot) {
		t.Fatalf("unexpected record: %#v", rec)
	}
}
