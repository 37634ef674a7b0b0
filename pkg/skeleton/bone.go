package skeleton

// Bone is a named node of the skeletal hierarchy.
//
// A Bone owns its children; parent is a non-owning back reference. Children
// are kept in insertion order, which is hierarchy order, not draw order.
type Bone struct {
	name     string
	parent   *Bone
	children []*Bone

	position Vec2
	rotation float64
	scale    Vec2

	pivot       Vec2
	zOrder      int
	defaultSize Size
	visible     bool
	image       string

	// hidden is written by animations; visible is the rig's own flag.
	hidden bool
}

// NewBone creates a visible bone with unit scale and a centered pivot.
func NewBone(name string) *Bone {
	return &Bone{
		name:    name,
		scale:   Vec2{X: 1, Y: 1},
		pivot:   Vec2{X: 0.5, Y: 0.5},
		visible: true,
	}
}

// AddChild appends child to b's children and sets its parent.
// It fails if child already has a parent or if b descends from child.
func (b *Bone) AddChild(child *Bone) error {
	if child == nil {
		return ErrNilBone
	}
	if child.parent != nil {
		return ErrBoneHasParent
	}
	for p := b; p != nil; p = p.parent {
		if p == child {
			return ErrBoneCycle
		}
	}
	child.parent = b
	b.children = append(b.children, child)
	return nil
}

func (b *Bone) Name() string      { return b.name }
func (b *Bone) Parent() *Bone     { return b.parent }
func (b *Bone) Children() []*Bone { return b.children }

// SetLocalPosition sets the position relative to the parent's origin.
func (b *Bone) SetLocalPosition(x, y float64) {
	b.position = Vec2{X: x, Y: y}
}

// SetRotation sets the local rotation in degrees.
func (b *Bone) SetRotation(deg float64) {
	b.rotation = deg
}

// SetScale sets the local scale.
func (b *Bone) SetScale(sx, sy float64) {
	b.scale = Vec2{X: sx, Y: sy}
}

func (b *Bone) LocalPosition() Vec2 { return b.position }
func (b *Bone) Rotation() float64   { return b.rotation }
func (b *Bone) Scale() Vec2         { return b.scale }

// SetPivot sets the normalized anchor within the bone's visual bounds.
// (0.5, 0) is top-center, (0.5, 1) bottom-center.
func (b *Bone) SetPivot(px, py float64) {
	b.pivot = Vec2{X: px, Y: py}
}

// SetZOrder sets the draw order. Lower values draw first.
func (b *Bone) SetZOrder(z int) {
	b.zOrder = z
}

// SetDefaultSize sets the size drawn when no texture is bound.
func (b *Bone) SetDefaultSize(w, h float64) {
	b.defaultSize = Size{W: w, H: h}
}

// SetVisible controls whether renderers draw the bone. Invisible bones still
// propagate transforms to their children.
func (b *Bone) SetVisible(visible bool) {
	b.visible = visible
}

// SetImage sets the texture key a renderer uses to look up the bone's image.
func (b *Bone) SetImage(key string) {
	b.image = key
}

func (b *Bone) Pivot() Vec2       { return b.pivot }
func (b *Bone) ZOrder() int       { return b.zOrder }
func (b *Bone) DefaultSize() Size { return b.defaultSize }
func (b *Bone) Visible() bool     { return b.visible }
func (b *Bone) Image() string     { return b.image }

// SetHidden hides or shows the bone on top of its rig visibility.
func (b *Bone) SetHidden(hidden bool) {
	b.hidden = hidden
}

// Hidden reports whether the last applied animation hid the bone.
func (b *Bone) Hidden() bool { return b.hidden }

// Drawn reports whether the bone is visible in the rig and not hidden by
// animation.
func (b *Bone) Drawn() bool { return b.visible && !b.hidden }

// ResolveWorldTransform composes b's local transform onto its parent's
// resolved world transform.
func (b *Bone) ResolveWorldTransform(parent WorldTransform) WorldTransform {
	return WorldTransform{
		Position: parent.Position.Add(rotateAndScale(b.position, parent.Rotation, parent.Scale)),
		Rotation: parent.Rotation + b.rotation,
		Scale: Vec2{
			X: parent.Scale.X * b.scale.X,
			Y: parent.Scale.Y * b.scale.Y,
		},
	}
}

// walk visits b and its descendants depth-first, parents before children.
func (b *Bone) walk(fn func(*Bone)) {
	fn(b)
	for _, c := range b.children {
		c.walk(fn)
	}
}
