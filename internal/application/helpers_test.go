package application

import (
	"context"
	"sync"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// testBlock is a configurable ports.Block. When runFunc is nil it returns
// a copy of outputs.
type testBlock struct {
	spec    domain.BlockSpec
	outputs domain.Artifacts
	runFunc func(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error)

	mu     sync.Mutex
	calls  int
	inputs []domain.Artifacts
}

var _ ports.Block = (*testBlock)(nil)

func (b *testBlock) Spec() domain.BlockSpec { return b.spec }

func (b *testBlock) Run(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error) {
	b.mu.Lock()
	b.calls++
	b.inputs = append(b.inputs, inputs)
	b.mu.Unlock()

	if b.runFunc != nil {
		return b.runFunc(ctx, inputs)
	}

	outputs := make(domain.Artifacts, len(b.outputs))
	for port, artifact := range b.outputs {
		outputs[port] = artifact.Clone()
	}
	return outputs, nil
}

func (b *testBlock) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *testBlock) lastInputs() domain.Artifacts {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.inputs) == 0 {
		return nil
	}
	return b.inputs[len(b.inputs)-1]
}

// newStaticBlock returns a block that always emits outputs.
func newStaticBlock(id domain.BlockID, outputs domain.Artifacts) *testBlock {
	return &testBlock{
		spec:    domain.BlockSpec{ID: id, Name: string(id)},
		outputs: outputs,
	}
}

// newPassthroughBlock returns a block that copies "in" to "out" and fails
// with InvalidInput when "in" is absent.
func newPassthroughBlock(id domain.BlockID) *testBlock {
	b := &testBlock{spec: domain.BlockSpec{ID: id, Name: string(id)}}
	b.runFunc = func(_ context.Context, inputs domain.Artifacts) (domain.Artifacts, error) {
		in, ok := inputs["in"]
		if !ok {
			return nil, domain.NewInvalidInputError("missing 'in'")
		}
		out := in.Clone()
		out.Port = "out"
		return domain.Artifacts{"out": out}, nil
	}
	return b
}

// newFailingBlock returns a block whose Run always fails with err.
func newFailingBlock(id domain.BlockID, err error) *testBlock {
	b := &testBlock{spec: domain.BlockSpec{ID: id, Name: string(id)}}
	b.runFunc = func(context.Context, domain.Artifacts) (domain.Artifacts, error) {
		return nil, err
	}
	return b
}

// artifact builds an artifact on port with path.
func artifact(port domain.PortID, path string) domain.Artifact {
	return domain.Artifact{Port: port, Path: path}
}

// edge builds an edge from.fromPort -> to.toPort.
func edge(from domain.BlockID, fromPort domain.PortID, to domain.BlockID, toPort domain.PortID) domain.Edge {
	return domain.Edge{FromBlock: from, FromPort: fromPort, ToBlock: to, ToPort: toPort}
}

// chainSpec returns the spec A.out->B.in->C.in.
func chainSpec() domain.GraphSpec {
	return domain.GraphSpec{
		Blocks: []domain.BlockID{"A", "B", "C"},
		Edges: []domain.Edge{
			edge("A", "out", "B", "in"),
			edge("B", "out", "C", "in"),
		},
	}
}

// orderRecorder records the order in which wrapped blocks start and finish.
type orderRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *orderRecorder) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *orderRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *orderRecorder) index(event string) int {
	for i, e := range r.snapshot() {
		if e == event {
			return i
		}
	}
	return -1
}

// middleware returns a BlockMiddleware that records "start:<id>" and
// "end:<id>" around every Run.
func (r *orderRecorder) middleware() ports.BlockMiddleware {
	return func(id domain.BlockID, next ports.Block) ports.Block {
		return &recordedBlock{id: id, next: next, recorder: r}
	}
}

type recordedBlock struct {
	id       domain.BlockID
	next     ports.Block
	recorder *orderRecorder
}

func (b *recordedBlock) Spec() domain.BlockSpec { return b.next.Spec() }

func (b *recordedBlock) Run(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error) {
	b.recorder.record("start:" + string(b.id))
	defer b.recorder.record("end:" + string(b.id))
	return b.next.Run(ctx, inputs)
}
