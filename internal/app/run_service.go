package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/exec"
	"github.com/mmrzaf/datalchemy/internal/hashing"
	"github.com/mmrzaf/datalchemy/internal/infra/repos/plans"
	"github.com/mmrzaf/datalchemy/internal/infra/repos/runs"
	"github.com/mmrzaf/datalchemy/internal/logging"
	"github.com/mmrzaf/datalchemy/internal/planner"
	"github.com/mmrzaf/datalchemy/internal/registry"
	"github.com/mmrzaf/datalchemy/internal/validation"
)

// GenerateRequest names its inputs either by path (resolved through the plan
// repository) or inline. Inline values win.
type GenerateRequest struct {
	PlanPath     string                 `json:"plan_path,omitempty"`
	Plan         *domain.Plan           `json:"plan,omitempty"`
	SchemaPath   string                 `json:"schema_path,omitempty"`
	Schema       *domain.DatabaseSchema `json:"schema,omitempty"`
	OutDir       string                 `json:"out_dir,omitempty"`
	Strict       *bool                  `json:"strict,omitempty"`
	SeedOverride *uint64                `json:"seed,omitempty"`
	SQLiteExport bool                   `json:"sqlite_export,omitempty"`
}

type GenerateResult struct {
	Run    *domain.Run  `json:"run"`
	Result *exec.Result `json:"-"`
}

// PlanResult is the dry-run view of a request.
type PlanResult struct {
	Tasks      []domain.GenerationTask `json:"tasks" yaml:"tasks"`
	Seed       uint64                  `json:"seed" yaml:"seed"`
	Strict     bool                    `json:"strict" yaml:"strict"`
	ConfigHash string                  `json:"config_hash" yaml:"config_hash"`
}

type RunService struct {
	planRepo    plans.Repository
	runRepo     runs.Repository
	genRegistry *registry.GeneratorRegistry
	validator   *validation.Validator
	logger      *logging.Logger
	opts        exec.Options
}

// NewRunService wires the service. runRepo may be nil, in which case runs
// are executed without being recorded.
func NewRunService(
	planRepo plans.Repository,
	runRepo runs.Repository,
	genRegistry *registry.GeneratorRegistry,
	logger *logging.Logger,
	opts exec.Options,
) *RunService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &RunService{
		planRepo:    planRepo,
		runRepo:     runRepo,
		genRegistry: genRegistry,
		validator:   validation.NewValidator(genRegistry),
		logger:      logger.WithComponent("app"),
		opts:        opts,
	}
}

type resolvedRequest struct {
	plan   *domain.Plan
	schema *domain.DatabaseSchema
	strict bool
	auto   bool
}

func (s *RunService) resolve(req *GenerateRequest) (*resolvedRequest, error) {
	schema := req.Schema
	if schema == nil {
		if req.SchemaPath == "" {
			return nil, domain.InvalidPlanf("schema is required")
		}
		loaded, err := s.planRepo.LoadSchema(req.SchemaPath)
		if err != nil {
			return nil, err
		}
		schema = loaded
	}

	plan := req.Plan
	if plan == nil {
		if req.PlanPath == "" {
			return nil, domain.InvalidPlanf("plan is required")
		}
		loaded, err := s.planRepo.LoadPlan(req.PlanPath)
		if err != nil {
			return nil, err
		}
		plan = loaded
	}
	if req.SeedOverride != nil {
		copied := *plan
		copied.Seed = *req.SeedOverride
		plan = &copied
	}

	r := &resolvedRequest{plan: plan, schema: schema, strict: s.opts.Strict, auto: s.opts.AutoGenerateParents}
	if v, ok := plan.Strict(); ok {
		r.strict = v
	}
	if req.Strict != nil {
		r.strict = *req.Strict
	}
	if v, ok := plan.AutoGenerateParents(); ok {
		r.auto = v
	}
	return r, nil
}

// Validate loads and validates the request inputs without generating.
func (s *RunService) Validate(req *GenerateRequest) error {
	r, err := s.resolve(req)
	if err != nil {
		return err
	}
	return s.validator.ValidatePlan(r.schema, r.plan, r.strict)
}

// Plan validates the request and returns the table order with row counts.
func (s *RunService) Plan(req *GenerateRequest) (*PlanResult, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePlan(r.schema, r.plan, r.strict); err != nil {
		return nil, err
	}
	tasks, err := planner.PlanTables(r.schema, r.plan, r.auto)
	if err != nil {
		return nil, err
	}
	hash, err := hashing.HashRunConfig(r.plan, r.schema, r.strict, tasks, r.plan.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to hash run config: %w", err)
	}
	return &PlanResult{Tasks: tasks, Seed: r.plan.Seed, Strict: r.strict, ConfigHash: hash}, nil
}

// Generate validates and executes the request synchronously, recording the
// run in the history before and after execution.
func (s *RunService) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePlan(r.schema, r.plan, r.strict); err != nil {
		return nil, err
	}

	// Planning errors are reported by the executor on the recorded run.
	tasks, _ := planner.PlanTables(r.schema, r.plan, r.auto)
	hash, err := hashing.HashRunConfig(r.plan, r.schema, r.strict, tasks, r.plan.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to hash run config: %w", err)
	}

	opts := s.opts
	opts.Strict = r.strict
	opts.StrictOverride = req.Strict
	if req.OutDir != "" {
		opts.OutDir = req.OutDir
	}
	opts.SQLiteExport = opts.SQLiteExport || req.SQLiteExport

	run := &domain.Run{
		ConfigHash: hash,
		PlanPath:   req.PlanPath,
		SchemaPath: req.SchemaPath,
		Seed:       r.plan.Seed,
		Status:     domain.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	if s.runRepo != nil {
		if err := s.runRepo.Create(run); err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
	}
	s.logger.Infow("run.recorded", map[string]any{"run_id": run.ID, "seed": run.Seed, "config_hash": hash})

	opts.RunID = run.ID
	result, execErr := exec.NewExecutor(s.genRegistry, s.logger, opts).Execute(ctx, r.schema, r.plan)
	if run.ID == "" && result != nil {
		run.ID = result.RunID
	}
	s.finish(run, result, execErr)
	return &GenerateResult{Run: run, Result: result}, execErr
}

func (s *RunService) finish(run *domain.Run, result *exec.Result, execErr error) {
	now := time.Now().UTC()
	run.CompletedAt = &now
	run.Status = domain.RunStatusSuccess
	if execErr != nil {
		run.Status = domain.RunStatusFailed
		run.Error = execErr.Error()
	}
	if result != nil {
		run.OutDir = result.RunDir
		if result.Report != nil {
			if b, err := json.Marshal(result.Report.Stats()); err == nil {
				run.Stats = b
			}
		}
	}
	if s.runRepo == nil {
		return
	}
	if err := s.runRepo.Update(run); err != nil {
		s.logger.Errorw("run.update_failed", map[string]any{"run_id": run.ID, "error": err.Error()})
	}
}

func (s *RunService) GetRun(id string) (*domain.Run, error) {
	if s.runRepo == nil {
		return nil, runs.ErrNotFound
	}
	return s.runRepo.Get(id)
}

func (s *RunService) ListRuns(limit int, status string) ([]*domain.Run, error) {
	if s.runRepo == nil {
		return []*domain.Run{}, nil
	}
	return s.runRepo.List(limit, status)
}

func (s *RunService) ListPlans() ([]*plans.PlanSummary, error) {
	return s.planRepo.ListPlans()
}

func (s *RunService) Generators() []registry.Info {
	return s.genRegistry.Describe()
}

// IsNotFound reports whether err names a missing run.
func IsNotFound(err error) bool {
	return errors.Is(err, runs.ErrNotFound)
}
