package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/wliublackruvy/agent-based-dev/internal/ai"
	"github.com/wliublackruvy/agent-based-dev/internal/changeset"
	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/cycle"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	"github.com/wliublackruvy/agent-based-dev/internal/orchestrator"
	"github.com/wliublackruvy/agent-based-dev/internal/planner"
	"github.com/wliublackruvy/agent-based-dev/internal/prompts"
	"github.com/wliublackruvy/agent-based-dev/internal/review"
	"github.com/wliublackruvy/agent-based-dev/internal/tui"
	"github.com/wliublackruvy/agent-based-dev/internal/verify"
	"github.com/wliublackruvy/agent-based-dev/internal/workitem"
	"github.com/wliublackruvy/agent-based-dev/internal/workspace"
)

// project is the configuration and store of one project root. Commands that
// only touch the work-item list stop here and never build providers.
type project struct {
	cfg   *config.Config
	store *workitem.FileStore
}

func openProject(ctx context.Context, flags *GlobalFlags, overrides *config.Overrides) (*project, error) {
	root := flags.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	if overrides == nil {
		overrides = &config.Overrides{}
	}
	overrides.Root = abs

	cfg, err := config.LoadWithOverrides(ctx, overrides)
	if err != nil {
		return nil, err
	}
	store, err := workitem.NewFileStore(cfg.Paths.StorePath())
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("root", abs).
		Str("store", store.Path()).
		Msg("project opened")
	return &project{cfg: cfg, store: store}, nil
}

func (p *project) root() string {
	return p.cfg.Paths.Root
}

// engine is a project with every stage wired.
type engine struct {
	*project
	scanner  *workspace.Scanner
	prompts  *prompts.Library
	router   *ai.Router
	verifier *verify.Runner
}

func openEngine(ctx context.Context, flags *GlobalFlags, overrides *config.Overrides) (*engine, error) {
	p, err := openProject(ctx, flags, overrides)
	if err != nil {
		return nil, err
	}

	registry, err := ai.NewRegistryFromConfig(p.cfg)
	if err != nil {
		return nil, err
	}

	return &engine{
		project: p,
		scanner: workspace.NewScanner(p.root(), p.cfg.Paths.IgnoreDirs),
		prompts: prompts.NewLibrary(p.cfg.Paths.PromptsPath()),
		router: ai.NewRouter(p.cfg.Roles, registry,
			ai.WithWorkDir(p.root()),
			ai.WithRetry(constants.MaxRetryAttempts, constants.InitialBackoff),
		),
		verifier: verify.NewRunner(p.root(),
			verify.WithTimeout(p.cfg.Verification.Timeout),
			verify.WithEcosystems(ecosystemCatalog(p.cfg.Verification)),
		),
	}, nil
}

// ecosystemCatalog converts configured ecosystems. An empty list keeps the
// built-in catalog.
func ecosystemCatalog(v config.VerificationConfig) verify.Catalog {
	if len(v.Ecosystems) == 0 {
		return verify.Catalog(verify.DefaultEcosystems())
	}
	c := make(verify.Catalog, 0, len(v.Ecosystems))
	for _, e := range v.Ecosystems {
		c = append(c, verify.Ecosystem{
			Name:         e.Name,
			Extensions:   e.Extensions,
			TestSuffixes: e.TestSuffixes,
			Command:      e.Command,
		})
	}
	return c
}

func (e *engine) planner() *planner.Planner {
	return planner.New(e.router, e.prompts, e.store, planner.Paths{
		Requirements: e.cfg.Paths.RequirementsPath(),
		DesignPath:   e.cfg.Paths.DesignPath,
	})
}

func (e *engine) controller(opts ...cycle.Option) *cycle.Controller {
	return cycle.NewController(e.router, e.prompts, e.verifier, e.scanner, cycle.Config{
		MaxAttempts:        e.cfg.Engine.MaxAttempts,
		AllowNoChecks:      e.cfg.Engine.AllowNoChecks,
		FeedbackLimit:      e.cfg.Engine.FeedbackLimit,
		RequirementsPath:   e.cfg.Paths.RequirementsPath(),
		DesignPath:         e.cfg.Paths.DesignPath,
		SnapshotDirs:       e.cfg.Paths.SnapshotDirs,
		SnapshotExtensions: e.cfg.Paths.SnapshotExtensions,
	}, opts...)
}

func (e *engine) gate() *review.Gate {
	return review.NewGate(e.router, e.prompts, e.verifier, e.scanner, review.Policy{
		StrictVerdict:  e.cfg.Review.StrictVerdict,
		RequireChecks:  e.cfg.Review.RequireChecks,
		FeedbackLimit:  e.cfg.Engine.FeedbackLimit,
		TreeExtensions: e.cfg.Paths.TreeExtensions,
	})
}

func (e *engine) loop(coder orchestrator.Generator, opts ...orchestrator.Option) *orchestrator.Loop {
	opts = append([]orchestrator.Option{orchestrator.WithMaxTicks(e.cfg.Engine.MaxTicks)}, opts...)
	return orchestrator.NewLoop(e.store, coder, e.gate(), opts...)
}

// confirmChanges shows the change set preview and asks before it is
// written. Without a terminal the prompt is canceled and the cycle stops.
func confirmChanges(w io.Writer, out tui.Output, verbose bool) cycle.ConfirmFunc {
	return func(_ context.Context, item *domain.WorkItem, preview []changeset.FileDiff) (bool, error) {
		out.Info(fmt.Sprintf("Change set for %s:", item.ID))
		tui.RenderPreview(w, preview, verbose)
		return tui.Confirm("Apply and test these changes?", true)
	}
}
