package optimizer

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/oveo-dev/oveo/pkg/edit"
)

// walkAll visits every node in the tree rooted at n, named and anonymous
// alike, in pre-order.
func walkAll(n *ts.Node, fn func(*ts.Node)) {
	if n == nil {
		return
	}
	fn(n)
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		walkAll(n.Child(i), fn)
	}
}

// sameNode compares two nodes by byte range, a stand-in for identity that
// holds as long as both come from the same parse tree.
func sameNode(a, b *ts.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

// stripWrapper removes a call's callee/parens collar around a single
// argument without touching the argument's own byte range, as two edits
// either side of it: [call.Start, arg.Start) and [arg.End, call.End). This
// is what lets an intrinsic wrapper (scope(), a failed/disabled hoist(),
// a disabled/singleton dedupe()) unwrap to its argument even when that
// argument's interior was itself rewritten by another edit in the same
// pass run — replacing the whole call span at once would silently discard,
// or overlap-conflict with, any such nested edit.
func stripWrapper(call, arg *ts.Node) []edit.Edit {
	return []edit.Edit{
		{Start: call.StartByte(), End: arg.StartByte(), Replacement: ""},
		{Start: arg.EndByte(), End: call.EndByte(), Replacement: ""},
	}
}

// callArgs returns call's ordered argument expressions.
func callArgs(call *ts.Node) []*ts.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	count := args.NamedChildCount()
	out := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		out = append(out, args.NamedChild(i))
	}
	return out
}
