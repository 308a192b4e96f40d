package canvas

// NewGroup combines children into a group whose box is the union of their
// bounds. Children keep their absolute placement: their positions are
// rebased into the group's local space.
func NewGroup(children ...*Object) *Object {
	g := NewObject(TypeGroup)
	if len(children) == 0 {
		return g
	}
	bounds := children[0].BoundingRect(Identity)
	for _, child := range children[1:] {
		b := child.BoundingRect(Identity)
		bounds = union(bounds, b)
	}
	g.Left, g.Top = bounds.Left, bounds.Top
	g.Width, g.Height = bounds.Width, bounds.Height
	origin := Point{bounds.Left, bounds.Top}
	g.Objects = make([]*Object, 0, len(children))
	for _, child := range children {
		child.SetCenter(child.Center().Sub(origin))
		g.Objects = append(g.Objects, child)
	}
	return g
}

// Ungroup detaches the children of g and returns them placed in g's parent
// space with the group's scale and rotation folded into each child.
func Ungroup(g *Object) []*Object {
	if g == nil || g.Type != TypeGroup {
		return nil
	}
	m := g.Matrix()
	out := g.Objects
	for _, child := range out {
		center := m.Apply(child.Center())
		child.ScaleX *= g.ScaleX
		child.ScaleY *= g.ScaleY
		child.Angle = normalizeAngle(child.Angle + g.Angle)
		child.SetCenter(center)
	}
	g.Objects = nil
	return out
}

func union(a, b Rect) Rect {
	return boundsOf([]Point{
		{a.Left, a.Top}, {a.Right(), a.Bottom()},
		{b.Left, b.Top}, {b.Right(), b.Bottom()},
	})
}
