package robot

import "streetbuilder/internal/domain/world"

type Energy struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

func (e Energy) Has(cost int) bool {
	return cost <= e.Current
}

func (e *Energy) Consume(cost int) bool {
	if cost < 0 || cost > e.Current {
		return false
	}
	e.Current -= cost
	return true
}

func (e *Energy) Recharge(amount int) {
	if amount <= 0 {
		return
	}
	e.Current += amount
	if e.Max > 0 && e.Current > e.Max {
		e.Current = e.Max
	}
}

type Backpack struct {
	Capacity int                   `json:"capacity"`
	Contents map[world.Content]int `json:"contents"`
}

func NewBackpack(capacity int) Backpack {
	return Backpack{Capacity: capacity, Contents: map[world.Content]int{}}
}

func (b Backpack) Used() int {
	n := 0
	for _, v := range b.Contents {
		n += v
	}
	return n
}

func (b Backpack) Free() int {
	free := b.Capacity - b.Used()
	if free < 0 {
		return 0
	}
	return free
}

func (b Backpack) Count(c world.Content) int {
	return b.Contents[c]
}

// Add stores up to amount items and returns how many fit.
func (b *Backpack) Add(c world.Content, amount int) int {
	if amount <= 0 || c == world.ContentNone {
		return 0
	}
	if b.Contents == nil {
		b.Contents = map[world.Content]int{}
	}
	if free := b.Free(); amount > free {
		amount = free
	}
	b.Contents[c] += amount
	return amount
}

func (b *Backpack) Remove(c world.Content, amount int) bool {
	if amount <= 0 || b.Contents == nil || b.Contents[c] < amount {
		return false
	}
	b.Contents[c] -= amount
	if b.Contents[c] == 0 {
		delete(b.Contents, c)
	}
	return true
}

// Robot is the authoritative agent state owned by the mission controller and
// mutated by world collaborators on its behalf.
type Robot struct {
	Energy     Energy      `json:"energy"`
	Coordinate world.Point `json:"coordinate"`
	Backpack   Backpack    `json:"backpack"`
}

func New(spawn world.Point) *Robot {
	return &Robot{
		Energy:     Energy{Current: MaxEnergy, Max: MaxEnergy},
		Coordinate: spawn,
		Backpack:   NewBackpack(BackpackCapacity),
	}
}
