// Package executor schedules batches of tool calls under a fixed
// concurrency ceiling.
//
// Each call gets its own timeout and panic isolation, and every failure is
// reported as a structured result in the slot matching the call's input
// position. The batch as a whole never fails: callers always receive one
// result per call and decide per-slot how to proceed.
package executor
