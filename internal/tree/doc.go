// Package tree models a goal broken down into a bounded tree of tasks.
//
// A tree starts as a single root leaf. Splitting a leaf turns it into a
// split node with exactly two child leaves one level deeper; unsplitting a
// node drops every descendant and makes it a leaf again.
//
// # Split Rules
//
// A node may be split only when all of the following hold:
//   - it is not completed
//   - its depth is below Limits.MaxDepth
//   - the title font size one level deeper, round(BaseFont * DepthScale^depth),
//     is still at least Limits.MinFont
//
// Split on a node that fails these checks is a no-op.
//
// # Field Ranges
//
//   - difficulty: 1 (easy) to 5 (hard), default 3
//   - priority: 1 to the total number of nodes in the tree, default 1
//
// Edits outside these ranges are clamped rather than rejected.
//
// # Wire Format
//
// Nodes marshal with the keys used by the original browser storage:
//
//	{
//	  "id": "6f0c1e9a-...",
//	  "title": "Tap to name goal",
//	  "desc": "",
//	  "diff": 3,
//	  "pri": 1,
//	  "completed": false,
//	  "depth": 0,
//	  "gridCols": 2,
//	  "children": [ ... ]
//	}
package tree
