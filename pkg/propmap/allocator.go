package propmap

// alphabetStart and alphabetRest are the shortlex generation alphabet: identifier-start characters
// first (so every generated name is itself a valid single-token property
// name), then digits once names grow past one character.
const alphabetStart = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_$"
const alphabetRest = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_$0123456789"

// reservedWords is the ECMAScript keyword/reserved-word set the allocator
// will never emit — the safety net beyond the map's own uniqueness
// invariant, per §4.6.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "export": true, "extends": true, "finally": true, "for": true,
	"function": true, "if": true, "import": true, "in": true, "instanceof": true,
	"new": true, "return": true, "super": true, "switch": true, "this": true,
	"throw": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "let": true, "static": true,
	"enum": true, "await": true, "implements": true, "package": true,
	"protected": true, "interface": true, "private": true, "public": true,
	"null": true, "true": true, "false": true, "undefined": true, "arguments": true,
	"eval": true,
}

// Allocator produces fresh short identifier-syntax names in a totally
// ordered shortlex sequence (single letters, then two-letter combinations,
// …), skipping reserved words and any name already committed. Allocation
// state is a counter, so output is deterministic given the starting state.
type Allocator struct {
	counter int
}

// NewAllocator returns an allocator starting from the beginning of the
// sequence.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// NewAllocatorSeeded returns an allocator whose counter starts at the first
// name in the sequence that is neither reserved nor present as a value in
// taken. Names present in taken further along the sequence are skipped by
// Next when their turn comes, so importing a property map never leads to
// reallocating a name the file already uses.
func NewAllocatorSeeded(taken map[string]string) *Allocator {
	a := &Allocator{}
	for {
		candidate := a.nameAt(a.counter)
		if _, used := taken[candidate]; !used && !reservedWords[candidate] {
			return a
		}
		a.counter++
	}
}

// Next returns the next unused, non-reserved name in the sequence, advancing
// the allocator's internal counter past it. taken is consulted in addition
// to the allocator's own history so a name already present as some other
// key's renamed value in the map is skipped too.
func (a *Allocator) Next(taken map[string]string) string {
	for {
		name := a.nameAt(a.counter)
		a.counter++
		if reservedWords[name] {
			continue
		}
		if _, used := taken[name]; used {
			continue
		}
		return name
	}
}

// nameAt computes the n-th name in shortlex order over the identifier
// alphabet: first character from alphabetStart, subsequent characters from
// alphabetRest (which includes digits).
func (a *Allocator) nameAt(n int) string {
	// Shortlex: enumerate by length, then lexicographically within length.
	length := 1
	count := len(alphabetStart)
	for n >= count {
		n -= count
		length++
		count = len(alphabetStart) * pow(len(alphabetRest), length-1)
	}

	indices := make([]int, length)
	remaining := n
	for i := length - 1; i >= 1; i-- {
		indices[i] = remaining % len(alphabetRest)
		remaining /= len(alphabetRest)
	}
	indices[0] = remaining

	b := make([]byte, length)
	b[0] = alphabetStart[indices[0]]
	for i := 1; i < length; i++ {
		b[i] = alphabetRest[indices[i]]
	}
	return string(b)
}

func pow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
