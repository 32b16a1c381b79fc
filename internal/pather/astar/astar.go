package astar

import (
	"container/heap"
	"math"
)

type Point struct {
	X int
	Y int
}

var directions = []Point{
	{X: 0, Y: 1},   // Down
	{X: 1, Y: 0},   // Right
	{X: 0, Y: -1},  // Up
	{X: -1, Y: 0},  // Left
	{X: 1, Y: 1},   // Down-Right
	{X: -1, Y: 1},  // Down-Left
	{X: 1, Y: -1},  // Up-Right
	{X: -1, Y: -1}, // Up-Left
}

type CollisionType uint8

const (
	CollisionTypeWalkable CollisionType = iota
	CollisionTypeNonWalkable
	CollisionTypeWater
	CollisionTypeObject
	CollisionTypeLowPriority
)

// Grid is a rasterized collision map of one zone.
type Grid struct {
	Width  int
	Height int
	Tiles  []CollisionType // row-major, index = y*Width + x
}

func (g *Grid) Get(x, y int) CollisionType {
	return g.Tiles[y*g.Width+x]
}

type Node struct {
	Point
	Cost     int
	Priority int
	Index    int
}

// Buffers holds reusable search arrays so repeated path queries on the same
// grid do not allocate.
type Buffers struct {
	costSoFar []int
	cameFrom  []Point
	width     int
	height    int
}

func (b *Buffers) ensure(width, height int) {
	size := width * height
	if len(b.costSoFar) < size || b.width != width || b.height != height {
		b.costSoFar = make([]int, size)
		b.cameFrom = make([]Point, size)
		b.width = width
		b.height = height
	}
	for i := 0; i < size; i++ {
		b.costSoFar[i] = math.MaxInt32
	}
}

func (b *Buffers) index(x, y int) int {
	return y*b.width + x
}

// CalculatePath finds a path using A*. If buffers is nil, temporary arrays
// are allocated; reuse a Buffers across calls for repeated queries.
func CalculatePath(g *Grid, start, goal Point, buffers *Buffers) ([]Point, bool) {
	inBounds := func(p Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < g.Width && p.Y < g.Height
	}

	if g == nil || g.Width == 0 || g.Height == 0 {
		return nil, false
	}
	if !inBounds(start) || !inBounds(goal) {
		return nil, false
	}

	var costSoFar []int
	var cameFrom []Point
	var idx func(x, y int) int

	if buffers != nil {
		buffers.ensure(g.Width, g.Height)
		costSoFar = buffers.costSoFar
		cameFrom = buffers.cameFrom
		idx = buffers.index
	} else {
		size := g.Width * g.Height
		costSoFar = make([]int, size)
		cameFrom = make([]Point, size)
		for i := range costSoFar {
			costSoFar[i] = math.MaxInt32
		}
		width := g.Width
		idx = func(x, y int) int { return y*width + x }
	}

	pq := make(PriorityQueue, 0, 256)
	heap.Init(&pq)

	heap.Push(&pq, &Node{Point: start, Cost: 0, Priority: heuristic(start, goal)})
	costSoFar[idx(start.X, start.Y)] = 0

	neighbors := make([]Point, 0, 8)

	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*Node)

		// Skip stale entries: a cheaper path to this node was already found
		// and processed, so this queued entry is redundant.
		if current.Cost > costSoFar[idx(current.X, current.Y)] {
			continue
		}

		if current.Point == goal {
			pathLen := 1
			for p := goal; p != start; p = cameFrom[idx(p.X, p.Y)] {
				pathLen++
			}
			path := make([]Point, pathLen)
			i := pathLen - 1
			for p := goal; p != start; p = cameFrom[idx(p.X, p.Y)] {
				path[i] = p
				i--
			}
			path[0] = start
			return path, true
		}

		updateNeighbors(g, current, &neighbors)

		for _, neighbor := range neighbors {
			tileType := g.Get(neighbor.X, neighbor.Y)

			currentIdx := idx(current.X, current.Y)
			neighborIdx := idx(neighbor.X, neighbor.Y)
			newCost := costSoFar[currentIdx] + getCost(tileType)

			if newCost < costSoFar[neighborIdx] {
				costSoFar[neighborIdx] = newCost
				priority := newCost + int(0.5*float64(heuristic(neighbor, goal)))
				heap.Push(&pq, &Node{Point: neighbor, Cost: newCost, Priority: priority})
				cameFrom[neighborIdx] = current.Point
			}
		}
	}

	return nil, false
}

func updateNeighbors(grid *Grid, node *Node, neighbors *[]Point) {
	*neighbors = (*neighbors)[:0]

	x, y := node.X, node.Y
	gridWidth, gridHeight := grid.Width, grid.Height

	isBlocked := func(px, py int) bool {
		if px < 0 || px >= gridWidth || py < 0 || py >= gridHeight {
			return true
		}
		return grid.Get(px, py) == CollisionTypeNonWalkable
	}

	for _, d := range directions {
		newX, newY := x+d.X, y+d.Y

		if isBlocked(newX, newY) {
			continue
		}

		// Diagonal moves must not cut a blocked corner.
		if d.X != 0 && d.Y != 0 {
			if isBlocked(x+d.X, y) || isBlocked(x, y+d.Y) {
				continue
			}
		}

		*neighbors = append(*neighbors, Point{X: newX, Y: newY})
	}
}

func getCost(tileType CollisionType) int {
	switch tileType {
	case CollisionTypeWalkable:
		return 1
	case CollisionTypeWater:
		return 8
	case CollisionTypeObject:
		return 4 // Soft blocker
	case CollisionTypeLowPriority:
		return 20
	default:
		return math.MaxInt32
	}
}

func heuristic(a, b Point) int {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	return int(dx + dy + (math.Sqrt(2)-2)*math.Min(dx, dy))
}
