package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sunnyland/common"
	"github.com/milk9111/sunnyland/controller"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeTrigger
	collisionTypeBody
)

const (
	spaceIterations = 20
	staticFriction  = 0.8
)

// World owns the Chipmunk space and maps shapes to collider ids. The world
// is Y-up.
type World struct {
	space     *cp.Space
	gravity   cp.Vector
	colliders map[*cp.Shape]string
}

// NewWorld creates an empty space with gravity along Y.
func NewWorld(gravity float64) *World {
	space := cp.NewSpace()
	space.Iterations = spaceIterations
	g := cp.Vector{X: 0, Y: gravity}
	space.SetGravity(g)
	return &World{
		space:     space,
		gravity:   g,
		colliders: make(map[*cp.Shape]string),
	}
}

func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

func (w *World) Gravity() mgl64.Vec3 {
	return common.Vec3(w.gravity.X, w.gravity.Y)
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	if w == nil || w.space == nil {
		return
	}
	w.space.Step(dt)
}

// AddStaticBox adds a solid axis-aligned box and returns its collider id.
func (w *World) AddStaticBox(minX, minY, maxX, maxY float64) string {
	shape := cp.NewBox2(w.space.StaticBody, cp.BB{L: minX, B: minY, R: maxX, T: maxY}, 0)
	return w.addStatic(shape, collisionTypeSolid)
}

// AddStaticSegment adds a solid line, typically a slope surface.
func (w *World) AddStaticSegment(x1, y1, x2, y2, radius float64) string {
	shape := cp.NewSegment(w.space.StaticBody, cp.Vector{X: x1, Y: y1}, cp.Vector{X: x2, Y: y2}, radius)
	return w.addStatic(shape, collisionTypeSolid)
}

// AddStaticTriangle adds a solid triangle given in any winding.
func (w *World) AddStaticTriangle(a, b, c cp.Vector) string {
	verts := []cp.Vector{a, b, c}
	shape := cp.NewPolyShapeRaw(w.space.StaticBody, 3, verts, 0)
	return w.addStatic(shape, collisionTypeSolid)
}

// AddTrigger adds a sensor box. Sensors report hits flagged as triggers
// and never push bodies.
func (w *World) AddTrigger(minX, minY, maxX, maxY float64) string {
	shape := cp.NewBox2(w.space.StaticBody, cp.BB{L: minX, B: minY, R: maxX, T: maxY}, 0)
	shape.SetSensor(true)
	return w.addStatic(shape, collisionTypeTrigger)
}

// CastDown runs a segment query from origin along direction. Hits are
// returned in the order the space reports them. A shape that already
// contains origin is reported at origin with distance 0 and the reversed
// direction as its normal.
func (w *World) CastDown(origin, direction mgl64.Vec3, maxDistance float64) []controller.Hit {
	if w == nil || w.space == nil || maxDistance <= 0 {
		return nil
	}
	dir := direction
	if dir.Len() == 0 {
		return nil
	}
	dir = dir.Normalize()

	start := cp.Vector{X: origin.X(), Y: origin.Y()}
	end := start.Add(cp.Vector{X: dir.X(), Y: dir.Y()}.Mult(maxDistance))

	var hits []controller.Hit
	back := cp.Vector{X: -dir.X(), Y: -dir.Y()}
	w.space.SegmentQuery(start, end, 0, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, point, normal cp.Vector, alpha float64, data interface{}) {
		if shape.PointQuery(start).Distance < 0 {
			point, normal, alpha = start, back, 0
		}
		hits = append(hits, controller.Hit{
			Point:      common.Vec3(point.X, point.Y),
			Normal:     common.Vec3(normal.X, normal.Y),
			Distance:   alpha * maxDistance,
			ColliderID: w.colliders[shape],
			IsTrigger:  shape.Sensor(),
		})
	}, nil)
	return hits
}

func (w *World) addStatic(shape *cp.Shape, kind cp.CollisionType) string {
	shape.SetFriction(staticFriction)
	shape.SetCollisionType(kind)
	w.space.AddShape(shape)
	return w.register(uuid.NewString(), shape)
}

func (w *World) register(id string, shapes ...*cp.Shape) string {
	for _, shape := range shapes {
		w.colliders[shape] = id
	}
	return id
}

func (w *World) unregister(shapes ...*cp.Shape) {
	for _, shape := range shapes {
		delete(w.colliders, shape)
	}
}
