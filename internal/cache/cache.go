package cache

import (
	"bytes"
	"unsafe"

	"github.com/go-dnnf/compiler/internal/satstate"
	"github.com/go-dnnf/compiler/internal/telemetry"
	"github.com/go-dnnf/compiler/internal/vtree"
)

// entrySize approximates sizeof(VtreeCE) from cache.c's memory accounting
// (cache->memory += sizeof(VtreeCE) + sizeof(BYTE)*key_size).
var entrySize = int(unsafe.Sizeof(entry{}))

type entry struct {
	vtreeID int
	key     Key
	value   interface{}

	bucketIdx  int
	bucketNext int // arena index, -1 if none
	bucketPrev int // arena index, -1 if this entry is its bucket's head
	vtreeNext  int // arena index, -1 if none
}

// Cache is the per-manager component cache: a fixed-size hash table of
// chained entries, plus a secondary per-vtree-node chain so an entire
// subtree's entries can be dropped in one pass (DropSubtree), mirroring
// cache.c's VtreeCache/VtreeCE.
type Cache struct {
	capacity int
	buckets  []int // arena index of each bucket's head entry, -1 if empty
	vtrees   map[int]int // vtree node id -> arena index of its entry chain head

	entries []entry
	free    []int // reusable arena slots left by DropSubtree

	Count   int
	Hits    int
	Misses  int
	Lookups int
	Memory  int // bytes, sum of entrySize+len(key.Bytes) over live entries
}

// New constructs a Cache with capacity buckets.
func New(capacity int) *Cache {
	buckets := make([]int, capacity)
	for i := range buckets {
		buckets[i] = -1
	}
	return &Cache{
		capacity: capacity,
		buckets:  buckets,
		vtrees:   make(map[int]int),
	}
}

// Stats snapshots the cache's counters for telemetry reporting.
func (c *Cache) Stats() telemetry.CacheStats {
	return telemetry.CacheStats{
		Count:   c.Count,
		Memory:  c.Memory,
		Hits:    c.Hits,
		Misses:  c.Misses,
		Lookups: c.Lookups,
	}
}

// shouldCache mirrors cache.c's should_cache: only live Shannon nodes whose
// decision variable is not yet instantiated are worth caching.
func shouldCache(node *vtree.Node, sat satstate.State) bool {
	return node.LiveCache && node.IsShannonNode() && !sat.IsInstantiated(node.ShannonVar())
}

// Lookup returns the cached value for node's current context, if any.
func (c *Cache) Lookup(node *vtree.Node, sat satstate.State) (interface{}, bool) {
	if !shouldCache(node, sat) {
		return nil, false
	}
	key := BuildKey(node, sat)
	c.Lookups++

	idx := int(key.Hash % uint64(c.capacity))
	for i := c.buckets[idx]; i != -1; i = c.entries[i].bucketNext {
		e := &c.entries[i]
		if e.vtreeID == node.ID() && bytes.Equal(e.key.Bytes, key.Bytes) {
			c.Hits++
			return e.value, true
		}
	}
	c.Misses++
	return nil, false
}

// Insert records value for node's current context. Like lookup_cache /
// insert_cache in the original, this recomputes should_cache rather than
// trusting a prior Lookup call, so callers need not coordinate key reuse.
func (c *Cache) Insert(node *vtree.Node, sat satstate.State, value interface{}) {
	if !shouldCache(node, sat) {
		return
	}
	key := BuildKey(node, sat)
	idx := int(key.Hash % uint64(c.capacity))

	i := c.allocEntry()
	c.entries[i] = entry{
		vtreeID:    node.ID(),
		key:        key,
		value:      value,
		bucketIdx:  idx,
		bucketNext: c.buckets[idx],
		bucketPrev: -1,
		vtreeNext:  c.vtreeHead(node.ID()),
	}
	if head := c.buckets[idx]; head != -1 {
		c.entries[head].bucketPrev = i
	}
	c.buckets[idx] = i
	c.vtrees[node.ID()] = i
	c.Count++
	c.Memory += entrySize + len(key.Bytes)
}

func (c *Cache) vtreeHead(id int) int {
	if head, ok := c.vtrees[id]; ok {
		return head
	}
	return -1
}

func (c *Cache) allocEntry() int {
	if n := len(c.free); n > 0 {
		i := c.free[n-1]
		c.free = c.free[:n-1]
		return i
	}
	c.entries = append(c.entries, entry{})
	return len(c.entries) - 1
}

// dropEntry unlinks entry i from its bucket's collision list and returns
// its slot to the free list, mirroring drop_cache_entry.
func (c *Cache) dropEntry(i int) {
	e := &c.entries[i]
	if e.bucketPrev == -1 {
		c.buckets[e.bucketIdx] = e.bucketNext
	} else {
		c.entries[e.bucketPrev].bucketNext = e.bucketNext
	}
	if e.bucketNext != -1 {
		c.entries[e.bucketNext].bucketPrev = e.bucketPrev
	}
	c.Count--
	c.Memory -= entrySize + len(e.key.Bytes)
	c.entries[i] = entry{}
	c.free = append(c.free, i)
}

// DropSubtree drops every cache entry associated with node or one of its
// descendants, mirroring drop_vtree_cache_entries. The driver calls it when a
// learned clause comes back through a decomposition node, since entries
// cached under that node may no longer be sound.
func (c *Cache) DropSubtree(node *vtree.Node) {
	if node == nil || node.IsLeaf() {
		return
	}
	for i := c.vtreeHead(node.ID()); i != -1; {
		next := c.entries[i].vtreeNext
		c.dropEntry(i)
		i = next
	}
	delete(c.vtrees, node.ID())

	c.DropSubtree(node.Left)
	c.DropSubtree(node.Right)
}
