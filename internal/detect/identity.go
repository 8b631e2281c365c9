package detect

import (
	"iter"
	"strings"
)

var pathNormalizer = strings.NewReplacer("/", "_", ":", "_", "{", "", "}", "")

// Identify derives the stable identity of a candidate from its semantic fields.
// Line, file and function never participate.
func Identify(c Candidate) string {
	if c.Kind == KindRPC {
		return "rpc_" + c.ServiceName() + "_" + c.Name
	}
	return "http_" + c.Method + "_" + pathNormalizer.Replace(c.Path)
}

// Entry pairs an identity with the first candidate seen for it.
type Entry struct {
	ID        string    `json:"id"`
	Candidate Candidate `json:"candidate"`
}

// Deduper keeps the first-seen candidate per identity, in arrival order.
type Deduper struct {
	seen    map[string]struct{}
	entries []Entry
}

func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// Add records c unless its identity was already seen. It reports whether c was kept.
func (d *Deduper) Add(c Candidate) bool {
	id := Identify(c)
	if _, ok := d.seen[id]; ok {
		return false
	}
	d.seen[id] = struct{}{}
	d.entries = append(d.entries, Entry{ID: id, Candidate: c})
	return true
}

func (d *Deduper) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

func (d *Deduper) Len() int {
	return len(d.entries)
}

// Dedupe drains candidates and returns one entry per identity.
func Dedupe(candidates iter.Seq[Candidate]) []Entry {
	d := NewDeduper()
	for c := range candidates {
		d.Add(c)
	}
	return d.Entries()
}
