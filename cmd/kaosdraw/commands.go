package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/scrypster/kaosdraw/internal/evaluate"
	"github.com/scrypster/kaosdraw/internal/kaosxml"
	"github.com/scrypster/kaosdraw/internal/logic"
	"github.com/scrypster/kaosdraw/internal/notify"
	"github.com/scrypster/kaosdraw/internal/render"
	"github.com/scrypster/kaosdraw/internal/server"
	"github.com/scrypster/kaosdraw/internal/workspace"
	"github.com/scrypster/kaosdraw/pkg/types"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// modelArg parses fs and returns its single positional model path.
func modelArg(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return "", errUsage
	}
	return fs.Arg(0), nil
}

func (a *app) newWorkspace() *workspace.Workspace {
	return workspace.New(a.cfg.Model.Identifier,
		workspace.WithHistorySize(a.cfg.History.MaxEntries),
		workspace.WithLogger(a.logger),
		workspace.WithLogicOptions(
			logic.WithMaxDepth(a.cfg.Logic.MaxDepth),
			logic.WithMaxNodes(a.cfg.Logic.MaxNodes),
		),
	)
}

func (a *app) openModel(path string) (*workspace.Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	ws := a.newWorkspace()
	if err := ws.Open(data); err != nil {
		return nil, err
	}
	return ws, nil
}

func describe(item *types.Item) string {
	if item.Description == "" {
		return item.Identifier
	}
	return item.Identifier + "  " + item.Description
}

func runValidate(_ context.Context, a *app, args []string) error {
	path, err := modelArg(newFlagSet("validate"), args)
	if err != nil {
		return err
	}
	ws, err := a.openModel(path)
	if err != nil {
		return err
	}

	m := ws.Model()
	violations := ws.Validate()
	if len(violations) == 0 {
		a.out.success("%s: no violations", m.Identifier)
		return nil
	}
	for _, v := range violations {
		where := m.Identifier
		if item := m.Lookup(v.Reference); item != nil {
			where = item.Identifier
		}
		a.out.printf("%s  %s\n", a.out.bad.Render(where), v.Message)
	}
	a.out.failure("%s: %d violation(s)", m.Identifier, len(violations))
	return errFailed
}

func runLogic(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("logic")
	asXML := fs.Bool("xml", false, "Print Logic XML instead of text")
	path, err := modelArg(fs, args)
	if err != nil {
		return err
	}
	ws, err := a.openModel(path)
	if err != nil {
		return err
	}

	if *asXML {
		data, err := ws.LogicXML()
		if err != nil {
			return err
		}
		a.out.println(string(data))
		return nil
	}
	text, err := ws.LogicText()
	if err != nil {
		return err
	}
	a.out.println(text)
	return nil
}

func runEvaluate(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("evaluate")
	var states stringList
	fs.Var(&states, "state", "YAML system state file; repeat for successive steps")
	threshold := fs.Float64("threshold", a.cfg.Evaluate.Threshold, "Satisfaction threshold")
	shortCircuit := fs.Bool("shortcircuit", a.cfg.Evaluate.ShortCircuit, "Skip children once a connective is decided")
	path, err := modelArg(fs, args)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return errUsage
	}

	label, nodes, ids, err := a.loadLogic(path)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		a.out.failure("%s: no logic to evaluate", label)
		return errFailed
	}

	ev := evaluate.New(nodes, evaluate.WithThreshold(*threshold), evaluate.WithShortCircuit(*shortCircuit))
	for _, statePath := range states {
		values, err := evaluate.LoadState(statePath)
		if err != nil {
			return err
		}
		scores, err := ev.Evaluate(values)
		if err != nil {
			return fmt.Errorf("%s: %w", statePath, err)
		}
		a.out.println(a.out.heading.Render(fmt.Sprintf("step %d", ev.Step())) + a.out.dim.Render("  "+statePath))
		for i, id := range ids {
			a.out.printf("  %-6s %s\n", id, a.out.score(scores[i], *threshold))
		}
	}

	a.out.println(a.out.heading.Render("satisfied"))
	for i, s := range ev.Satisfied() {
		a.out.printf("  %-6s %s\n", ids[i], a.out.score(s, *threshold))
	}
	violated := ev.Violated()
	if len(violated) == 0 {
		a.out.success("no violated nodes")
		return nil
	}
	a.out.failure("violated: %s", strings.Join(violated, " "))
	return nil
}

// loadLogic reads the logic trees to evaluate from path, which holds either
// a structural model or an exported Logic document. It returns the document
// label and one tree per root with the root's identifier.
func (a *app) loadLogic(path string) (string, []*types.LogicNode, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, nil, fmt.Errorf("read model: %w", err)
	}

	var (
		nodes []*types.LogicNode
		ids   []string
	)
	if kaosxml.IsLogicDocument(data) {
		doc, err := kaosxml.UnmarshalLogic(data)
		if err != nil {
			return "", nil, nil, err
		}
		for _, n := range doc.Roots {
			id := n.Identifier
			if n.IsLeaf() {
				id = n.Leaf.Identifier
			}
			nodes = append(nodes, n)
			ids = append(ids, id)
		}
		return doc.ID, nodes, ids, nil
	}

	ws := a.newWorkspace()
	if err := ws.Open(data); err != nil {
		return "", nil, nil, err
	}
	roots, err := ws.Logic()
	if err != nil {
		return "", nil, nil, err
	}
	for _, r := range roots {
		if r.Logic != nil {
			nodes = append(nodes, r.Logic)
			ids = append(ids, r.Root.Identifier)
		}
	}
	return ws.Model().Identifier, nodes, ids, nil
}

func runFormat(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("format")
	write := fs.Bool("w", false, "Write the result back to the model file")
	path, err := modelArg(fs, args)
	if err != nil {
		return err
	}
	ws, err := a.openModel(path)
	if err != nil {
		return err
	}
	data, err := ws.KAOSXML()
	if err != nil {
		return err
	}

	if !*write {
		a.out.println(string(data))
		return nil
	}
	if err := notify.WriteFile(path, data); err != nil {
		return err
	}
	a.logger.Info().Str("path", path).Int("items", ws.Model().Len()).Msg("CLI: model formatted")
	return nil
}

func runRoots(_ context.Context, a *app, args []string) error {
	path, err := modelArg(newFlagSet("roots"), args)
	if err != nil {
		return err
	}
	ws, err := a.openModel(path)
	if err != nil {
		return err
	}
	for _, root := range ws.Model().FindRoots() {
		a.out.printf("%s %s\n", describe(root), a.out.dim.Render("("+string(root.Kind)+")"))
	}
	return nil
}

func runRender(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("render")
	outPath := fs.String("o", "", "Output PNG path (default: model path with .png)")
	path, err := modelArg(fs, args)
	if err != nil {
		return err
	}
	ws, err := a.openModel(path)
	if err != nil {
		return err
	}

	target := *outPath
	if target == "" {
		target = strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	}
	d := render.Layout(ws.Model())
	if err := render.SavePNG(target, d); err != nil {
		return err
	}
	a.out.success("wrote %s (%d elements, %d relationships)", target, len(d.Nodes), len(d.Edges))
	return nil
}

func runServe(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", "", "Listen address host:port (overrides config)")
	path, err := modelArg(fs, args)
	if err != nil {
		return err
	}

	cfg := a.cfg.Server
	if *addr != "" {
		host, port, err := net.SplitHostPort(*addr)
		if err != nil {
			return fmt.Errorf("%w: invalid -addr: %v", errUsage, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%w: invalid -addr port %q", errUsage, port)
		}
		cfg.Host, cfg.Port = host, p
	}

	source := server.NewModelSource(path, a.newWorkspace(),
		evaluate.WithThreshold(a.cfg.Evaluate.Threshold),
		evaluate.WithShortCircuit(a.cfg.Evaluate.ShortCircuit),
	)
	if err := source.Reload(); err != nil {
		return err
	}

	srv := server.New(cfg, source, a.logger)
	listenAddr, err := srv.Start(ctx)
	if err != nil {
		return err
	}

	watcher := notify.NewModelWatcher(path, srv.HandleModelChange, notify.WithWatcherLogger(a.logger))
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	a.out.success("serving %s at http://%s", path, listenAddr)
	<-ctx.Done()
	a.logger.Info().Msg("CLI: shutting down")
	return nil
}
