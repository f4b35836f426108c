// Package agent layers planner-driven multi-turn search over the engine.
//
// A Planner proposes tool-call batches; the agent clamps each batch to the
// configured parallelism, dispatches it through the engine's executor, and
// folds the outputs into one accumulating result. Every degraded path (no
// planner, planner unavailable, planning error) lands on the engine's
// deterministic single-shot search so the caller-facing contract never
// changes shape.
package agent
