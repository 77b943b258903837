// Package dispatch drives the search: it walks each worker's ordinal
// range, decodes candidates in batches, fans verification out across CPU
// threads, and stops everything once any candidate matches.
//
// One driver goroutine owns each worker. Within a driver, a batch of
// ordinals is decoded and split into chunks verified concurrently through
// an errgroup with a thread limit. Cancellation, whether from a sibling's
// match or from the caller's context, is observed at batch boundaries, so
// at most one batch of redundant work happens after a match is found.
//
// Progress is durable: each driver checkpoints through the partition
// package on a count/time cadence, and a match is written to the result
// store before the stop signal fans out.
package dispatch
