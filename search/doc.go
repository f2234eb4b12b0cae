// Package search ranks packages against free-text patterns.
//
// It exists to:
//   - Keep index small and dependency-light
//   - Enable stronger ranking strategies without forcing heavier search
//     dependencies on every consumer
//
// # Strategies
//
// [Ranker] is the default: a tiered substring matcher where an exact name
// match outranks a name substring match, which outranks a tag match, then
// synopsis, then description, with ties kept in candidate order. Its
// ordering is fully deterministic and cheap once metadata is materialized.
//
// [BleveSearcher] is the heavier alternative: BM25 full-text scoring over
// the same fields, with the bleve index cached by a fingerprint of the
// candidate set and rebuilt only when the set changes.
//
// [Progressive] chains the two, falling back to full-text only when the
// substring tiers match nothing.
//
// # Cost
//
// All strategies force the metadata handle of every candidate, so the
// first search after an index refresh parses every candidate's definition
// file. Later searches over the same index reuse the memoized metadata.
package search
