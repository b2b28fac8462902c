package engine

import (
	"sort"
	"time"

	"loadctl/internal/domain"
)

// sortInfo is the per-name cached sort key, mirroring the original
// pluginComparator's PluginSortInfo: master-ness is read eagerly (cheap),
// mtimes are read lazily (deferred until a comparison actually needs one).
type sortInfo struct {
	isMaster bool
	modTime  time.Time
	hasTime  bool
}

// comparator sorts plugins masters-first, then by ascending mtime, caching
// both per name so a given plugin's header/mtime is read at most once
// during a sort.
type comparator struct {
	profile domain.GameProfile
	cache   map[string]*sortInfo
}

func newComparator(profile domain.GameProfile) *comparator {
	return &comparator{profile: profile, cache: make(map[string]*sortInfo)}
}

func (c *comparator) infoFor(p domain.Plugin) *sortInfo {
	if info, ok := c.cache[p.Key()]; ok {
		return info
	}
	info := &sortInfo{isMaster: IsMasterNoThrow(c.profile, p)}
	c.cache[p.Key()] = info
	return info
}

func (c *comparator) modTimeFor(p domain.Plugin, info *sortInfo) time.Time {
	if !info.hasTime {
		t, err := ModTime(c.profile, p)
		if err != nil {
			t = time.Time{}
		}
		info.modTime = t
		info.hasTime = true
	}
	return info.modTime
}

// less reports whether p1 sorts before p2: masters first, then ascending
// mtime among plugins of the same master-ness.
func (c *comparator) less(p1, p2 domain.Plugin) bool {
	i1, i2 := c.infoFor(p1), c.infoFor(p2)
	if i1.isMaster != i2.isMaster {
		return i1.isMaster
	}
	return c.modTimeFor(p1, i1).Before(c.modTimeFor(p2, i2))
}

// sortByMasterThenTime sorts plugins in place using the masters-first,
// mtime-ascending comparator (§4.3.4). Not a stable sort: ties (equal
// mtimes within the same master-ness group) are broken arbitrarily.
func sortByMasterThenTime(profile domain.GameProfile, plugins []domain.Plugin) {
	c := newComparator(profile)
	sort.Slice(plugins, func(i, j int) bool {
		return c.less(plugins[i], plugins[j])
	})
}
