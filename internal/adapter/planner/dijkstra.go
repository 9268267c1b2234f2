package planner

import (
	"container/heap"
	"context"
	"fmt"
	"sort"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/robot"
	"streetbuilder/internal/domain/world"
)

type hop struct {
	from   world.Point
	action mission.Action
}

// Dijkstra plans over the discovered tiles only. Edge weights are the walk
// cost of the tile entered; known teleport pads are linked to each other.
type Dijkstra struct {
	known     world.KnownMap
	index     map[world.Content][]world.Point
	teleports []world.Point

	origin world.Point
	dist   map[world.Point]int
	prev   map[world.Point]hop
}

func NewDijkstra() *Dijkstra {
	return &Dijkstra{
		known: world.KnownMap{},
		index: map[world.Content][]world.Point{},
	}
}

func (d *Dijkstra) Build(_ context.Context, known world.KnownMap) {
	d.known = known.Clone()
	d.index = map[world.Content][]world.Point{}
	d.teleports = nil
	for _, p := range d.known.Points() {
		t := d.known[p]
		if t.Content != world.ContentNone {
			d.index[t.Content] = append(d.index[t.Content], p)
		}
		if t.Kind == world.TileTeleport {
			d.teleports = append(d.teleports, p)
		}
	}
	d.dist = nil
	d.prev = nil
}

func (d *Dijkstra) UpdateCosts(_ context.Context, from world.Point) {
	d.origin = from
	d.dist = map[world.Point]int{from: 0}
	d.prev = map[world.Point]hop{}

	pq := &queue{{p: from}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(item)
		if cur.cost > d.dist[cur.p] {
			continue
		}
		for _, dir := range world.Directions {
			next := cur.p.Step(dir)
			t, ok := d.known.At(next)
			if !ok || !t.Passable {
				continue
			}
			d.relax(pq, cur, next, cur.cost+t.Kind.WalkCost(), mission.Move(dir))
		}
		if t, ok := d.known.At(cur.p); ok && t.Kind == world.TileTeleport {
			for _, pad := range d.teleports {
				if pad != cur.p {
					d.relax(pq, cur, pad, cur.cost+robot.TeleportCost, mission.Teleport(pad))
				}
			}
		}
	}
}

func (d *Dijkstra) relax(pq *queue, cur item, next world.Point, cost int, action mission.Action) {
	if old, seen := d.dist[next]; seen && old <= cost {
		return
	}
	d.dist[next] = cost
	d.prev[next] = hop{from: cur.p, action: action}
	heap.Push(pq, item{p: next, cost: cost})
}

// Locate lists known tiles holding the content, cheapest to approach first.
// Tiles that cannot be approached come last in row-major order.
func (d *Dijkstra) Locate(content world.Content) []world.Point {
	out := append([]world.Point(nil), d.index[content]...)
	sort.SliceStable(out, func(i, j int) bool {
		ci, oki := d.approachCost(out[i])
		cj, okj := d.approachCost(out[j])
		if oki != okj {
			return oki
		}
		return oki && ci < cj
	})
	return out
}

// Route returns the actions that end by stepping onto the target. For
// impassable targets that last step is only a facing move.
func (d *Dijkstra) Route(_ context.Context, target world.Point) ([]mission.Action, error) {
	if d.dist == nil {
		return nil, fmt.Errorf("route to %s: costs not computed", target)
	}
	if target == d.origin {
		return nil, nil
	}
	if _, ok := d.dist[target]; ok {
		return d.path(target), nil
	}
	via, ok := d.bestNeighbour(target)
	if !ok {
		return nil, fmt.Errorf("route to %s: %w", target, ports.ErrUnreachable)
	}
	dir, _ := world.DirectionTo(via, target)
	return append(d.path(via), mission.Move(dir)), nil
}

func (d *Dijkstra) path(to world.Point) []mission.Action {
	var rev []mission.Action
	for p := to; p != d.origin; {
		h := d.prev[p]
		rev = append(rev, h.action)
		p = h.from
	}
	out := make([]mission.Action, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

func (d *Dijkstra) approachCost(target world.Point) (int, bool) {
	if c, ok := d.dist[target]; ok {
		return c, true
	}
	via, ok := d.bestNeighbour(target)
	if !ok {
		return 0, false
	}
	return d.dist[via], true
}

func (d *Dijkstra) bestNeighbour(target world.Point) (world.Point, bool) {
	best, found := world.Point{}, false
	for _, dir := range world.Directions {
		n := target.Step(dir)
		c, ok := d.dist[n]
		if !ok {
			continue
		}
		if !found || c < d.dist[best] {
			best, found = n, true
		}
	}
	return best, found
}

type item struct {
	p    world.Point
	cost int
}

type queue []item

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	if q[i].p.Y != q[j].p.Y {
		return q[i].p.Y < q[j].p.Y
	}
	return q[i].p.X < q[j].p.X
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(item)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
