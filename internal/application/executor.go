package application

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// executionPlan is a GraphSpec that has been ordered and resolved against
// the registry.
type executionPlan struct {
	order []domain.BlockID
	graph *blockGraph
	// blocks holds the resolved instance for every block in order.
	blocks map[domain.BlockID]ports.Block
	// incoming lists, per block, the edges that target it in spec order.
	incoming map[domain.BlockID][]domain.Edge
}

// plan orders spec and resolves every participating block up front, so a
// missing block fails the run before any block executes.
func (e *Engine) plan(spec domain.GraphSpec) (*executionPlan, error) {
	graph := newBlockGraph(spec)
	order, err := graph.topologicalSort()
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	blocks := make(map[domain.BlockID]ports.Block, len(order))
	for _, id := range order {
		block, ok := e.blocks[id]
		if !ok || block == nil {
			e.mu.RUnlock()
			return nil, domain.NewMissingBlockError(id)
		}
		blocks[id] = block
	}
	e.mu.RUnlock()

	incoming := make(map[domain.BlockID][]domain.Edge)
	for _, edge := range spec.Edges {
		if graph.contains(edge.ToBlock) {
			incoming[edge.ToBlock] = append(incoming[edge.ToBlock], edge)
		}
	}

	return &executionPlan{
		order:    order,
		graph:    graph,
		blocks:   blocks,
		incoming: incoming,
	}, nil
}

// collectInputs assembles the input map for id from the outputs recorded so
// far. An edge whose producer has no recorded output, or whose producer did
// not emit the edge's port, contributes nothing. When several edges target
// the same port the last one in spec order wins.
func (p *executionPlan) collectInputs(id domain.BlockID, results domain.Results) domain.Artifacts {
	inputs := make(domain.Artifacts)
	for _, edge := range p.incoming[id] {
		produced, ok := results[edge.FromBlock]
		if !ok {
			continue
		}
		if artifact, ok := produced[edge.FromPort]; ok {
			inputs[edge.ToPort] = artifact.Clone()
		}
	}
	return inputs
}

// invoke runs a single block and takes a private copy of its outputs.
func invoke(
	ctx context.Context,
	block ports.Block,
	inputs domain.Artifacts,
) (domain.Artifacts, error) {
	outputs, err := block.Run(ctx, inputs)
	if err != nil {
		return nil, err
	}

	recorded := make(domain.Artifacts, len(outputs))
	for port, artifact := range outputs {
		recorded[port] = artifact.Clone()
	}
	return recorded, nil
}

// runSequential executes the plan one block at a time in topological order.
func (e *Engine) runSequential(
	ctx context.Context,
	plan *executionPlan,
	opts domain.ExecutionOptions,
	report *RunReport,
	logger *slog.Logger,
) error {
	for _, id := range plan.order {
		if err := ctx.Err(); err != nil {
			return err
		}

		inputs := plan.collectInputs(id, report.Results)
		logger.Debug("block started", "block_id", id, "inputs", len(inputs))

		outputs, err := invoke(ctx, plan.blocks[id], inputs)
		if err != nil {
			report.Failures[id] = err
			logger.Warn("block failed", "block_id", id, "error", err)
			if opts.StopOnError {
				return domain.NewBlockFailedError(id, err)
			}
			continue
		}

		report.Results[id] = outputs
		logger.Debug("block succeeded", "block_id", id, "outputs", len(outputs))
	}

	return nil
}

// runConcurrent executes independent blocks in parallel. A block is started
// only once every block with an edge into it has finished, whether it
// succeeded or not, and at most opts.Concurrency blocks run at a time.
func (e *Engine) runConcurrent(
	ctx context.Context,
	plan *executionPlan,
	opts domain.ExecutionOptions,
	report *RunReport,
	logger *slog.Logger,
) error {
	g, gctx := errgroup.WithContext(ctx)

	// Semaphore to limit concurrency. Goroutines are spawned freely and
	// wait here, because a finishing block starts its successors from
	// inside the group.
	semaphore := make(chan struct{}, opts.Concurrency)

	// mu guards report and remaining.
	var mu sync.Mutex
	remaining := make(map[domain.BlockID]int, len(plan.graph.inDegree))
	for id, degree := range plan.graph.inDegree {
		remaining[id] = degree
	}

	var start func(id domain.BlockID)
	start = func(id domain.BlockID) {
		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			if err := gctx.Err(); err != nil {
				<-semaphore
				return err
			}

			mu.Lock()
			inputs := plan.collectInputs(id, report.Results)
			mu.Unlock()

			logger.Debug("block started", "block_id", id, "inputs", len(inputs))
			outputs, err := invoke(gctx, plan.blocks[id], inputs)
			<-semaphore

			mu.Lock()
			if err != nil {
				report.Failures[id] = err
				logger.Warn("block failed", "block_id", id, "error", err)
				if opts.StopOnError {
					mu.Unlock()
					return domain.NewBlockFailedError(id, err)
				}
			} else {
				report.Results[id] = outputs
				logger.Debug("block succeeded", "block_id", id, "outputs", len(outputs))
			}

			var ready []domain.BlockID
			for _, next := range plan.graph.successors[id] {
				remaining[next]--
				if remaining[next] == 0 {
					ready = append(ready, next)
				}
			}
			mu.Unlock()

			for _, next := range ready {
				start(next)
			}
			return nil
		})
	}

	for _, id := range plan.order {
		if plan.graph.inDegree[id] == 0 {
			start(id)
		}
	}

	return g.Wait()
}
