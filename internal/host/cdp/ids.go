package cdp

import (
	"sort"

	"github.com/chromedp/cdproto/target"
)

// idMap assigns stable integer tab ids to protocol target ids. Ids are
// never reused within a session.
type idMap struct {
	byID     map[int]target.ID
	byTarget map[target.ID]int
	next     int
}

func newIDMap() *idMap {
	return &idMap{
		byID:     make(map[int]target.ID),
		byTarget: make(map[target.ID]int),
		next:     1,
	}
}

func (m *idMap) intern(tid target.ID) int {
	if id, ok := m.byTarget[tid]; ok {
		return id
	}
	id := m.next
	m.next++
	m.byID[id] = tid
	m.byTarget[tid] = id
	return id
}

func (m *idMap) lookup(tid target.ID) (int, bool) {
	id, ok := m.byTarget[tid]
	return id, ok
}

func (m *idMap) forget(tid target.ID) {
	id, ok := m.byTarget[tid]
	if !ok {
		return
	}
	delete(m.byTarget, tid)
	delete(m.byID, id)
}

// sortEntries orders tabs by discovery, which is also id order.
func sortEntries(entries []*tabEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].tab.ID < entries[j].tab.ID
	})
}
