// Package state owns the running task tree and keeps its stored snapshot
// in step with every change.
//
// A snapshot is stored wholesale under a single key:
//
//	{
//	  "root": { "id": "...", "title": "Tap to name goal", ... },
//	  "showCompleted": true
//	}
//
// # Loading
//
// The snapshot is read once at startup. A missing key, undecodable JSON or
// a snapshot that fails validation is replaced by a fresh single-root tree;
// the reason is logged and reported in LoadResult, not returned as an error.
//
// # Validation
//
// Validation runs in two passes:
//
// 1. JSON Schema (embedded snapshot.schema.json): types and required fields.
//
// 2. Structural checks the schema cannot express:
//   - the root has depth 0 and every child is one level below its parent
//   - leaves have gridCols 1, split nodes have gridCols equal to their child count
//   - node IDs are unique
//
// Out-of-range difficulty or priority values and nodes deeper than the
// configured maximum depth only produce warnings; ranges are clamped on load.
package state
