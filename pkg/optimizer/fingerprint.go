package optimizer

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/oveo-dev/oveo/pkg/ast"
)

// fpKey identifies one node's fingerprint cache entry. gen distinguishes
// nodes from different reparses that happen to share a byte range (every
// pass re-parses its input, per RenderChunk/Transform), so a cache hit only
// ever comes from the tree the caller is currently walking.
type fpKey struct {
	gen        uint64
	start, end uint32
}

// newFingerprintCache bounds the per-node fingerprint memo: the dedupe pass
// re-fingerprints every occurrence of every dedupe() candidate, and a hoist
// pass chained ahead of it (§4.2 note 4) can re-present the same materialized
// subtree many times, so caching by node identity turns that into an O(1)
// lookup instead of a full re-walk per comparison.
func newFingerprintCache() *lru.Cache[fpKey, string] {
	c, _ := lru.New[fpKey, string](4096)
	return c
}

// fingerprint computes §3's canonical structural hash of expr: identical
// shape, identical literal leaves, and identifiers compared by the
// declaration they resolve to rather than by spelling — so `(x) => x + 1`
// and `(y) => y + 1` fingerprint identically (alpha-equivalence), while two
// reads of genuinely different outer bindings that happen to share a name do
// not.
//
// A local counter numbers bindings introduced *inside* expr in the order
// their first reference is encountered, standing in for a real de Bruijn
// index; a reference whose resolved declaration lies outside expr is
// instead hashed by that declaration's stable binding index, which is what
// makes two occurrences in different scopes but resolving to the *same*
// outer variable fingerprint-equal.
func (o *Optimizer) fingerprint(expr *ts.Node, st *ast.SymbolTable, source []byte) string {
	key := fpKey{gen: o.parseGen, start: expr.StartByte(), end: expr.EndByte()}
	if cached, ok := o.fpCache.Get(key); ok {
		return cached
	}
	fp := fingerprintUncached(expr, st, source)
	o.fpCache.Add(key, fp)
	return fp
}

func fingerprintUncached(expr *ts.Node, st *ast.SymbolTable, source []byte) string {
	local := make(map[int]int)
	var walk func(*ts.Node) string
	walk = func(n *ts.Node) string {
		if n == nil {
			return "_"
		}
		if n.Kind() == "identifier" {
			if bidx, ok := st.Resolve(n); ok {
				decl := st.Bindings[bidx].Node
				if decl != nil && ast.NodeWithinScope(decl, expr) {
					idx, seen := local[bidx]
					if !seen {
						idx = len(local)
						local[bidx] = idx
					}
					return "local#" + strconv.Itoa(idx)
				}
				return "ext#" + strconv.Itoa(bidx)
			}
			return "free#" + n.Utf8Text(source)
		}

		count := n.NamedChildCount()
		if count == 0 {
			return n.Kind() + ":" + n.Utf8Text(source)
		}

		var b strings.Builder
		b.WriteString(n.Kind())
		b.WriteByte('(')
		for i := uint(0); i < count; i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(walk(n.NamedChild(i)))
		}
		b.WriteByte(')')
		return b.String()
	}
	return walk(expr)
}
