package skeleton

import "sort"

// BonePose is one bone's resolved world transform plus its rendering hints.
type BonePose struct {
	Name   string
	Parent string // empty for the root

	Position Vec2
	Rotation float64 // degrees, cumulative
	Scale    Vec2

	ZOrder      int
	Pivot       Vec2
	DefaultSize Size
	Image       string
	Visible     bool
}

// placement is the root's parent transform: the skeleton's own position and
// uniform scale, with no rotation.
func (s *Skeleton) placement() WorldTransform {
	return WorldTransform{
		Position: s.position,
		Scale:    Vec2{X: s.scale, Y: s.scale},
	}
}

// mirror reflects wt about the skeleton's x when flipX is set.
func (s *Skeleton) mirror(wt WorldTransform) WorldTransform {
	if !s.flipX {
		return wt
	}
	wt.Position.X = 2*s.position.X - wt.Position.X
	wt.Rotation = -wt.Rotation
	wt.Scale.X = -wt.Scale.X
	return wt
}

// resolve walks the tree parents-first, calling fn with each bone's world
// transform before mirroring.
func (s *Skeleton) resolve(fn func(b *Bone, wt WorldTransform)) {
	if s.root == nil {
		return
	}
	var visit func(b *Bone, parent WorldTransform)
	visit = func(b *Bone, parent WorldTransform) {
		wt := b.ResolveWorldTransform(parent)
		fn(b, wt)
		for _, c := range b.children {
			visit(c, wt)
		}
	}
	visit(s.root, s.placement())
}

// WorldTransforms resolves every bone, keyed by name.
func (s *Skeleton) WorldTransforms() map[string]WorldTransform {
	out := make(map[string]WorldTransform, len(s.order))
	s.resolve(func(b *Bone, wt WorldTransform) {
		if _, seen := out[b.name]; !seen {
			out[b.name] = s.mirror(wt)
		}
	})
	return out
}

// WorldTransform resolves a single bone by composing its ancestor chain.
func (s *Skeleton) WorldTransform(name string) (WorldTransform, bool) {
	b, ok := s.bones[name]
	if !ok {
		return WorldTransform{}, false
	}
	var chain []*Bone
	for p := b; p != nil; p = p.parent {
		chain = append(chain, p)
	}
	wt := s.placement()
	for i := len(chain) - 1; i >= 0; i-- {
		wt = chain[i].ResolveWorldTransform(wt)
	}
	return s.mirror(wt), true
}

// FullPose returns every bone, visible or not, in hierarchy order.
func (s *Skeleton) FullPose() []BonePose {
	out := make([]BonePose, 0, len(s.order))
	s.resolve(func(b *Bone, wt WorldTransform) {
		out = append(out, s.bonePose(b, s.mirror(wt)))
	})
	return out
}

// Pose returns the visible bones sorted by z-order, lowest first. Bones with
// equal z-order keep hierarchy order.
func (s *Skeleton) Pose() []BonePose {
	full := s.FullPose()
	out := full[:0]
	for _, bp := range full {
		if bp.Visible {
			out = append(out, bp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZOrder < out[j].ZOrder
	})
	return out
}

func (s *Skeleton) bonePose(b *Bone, wt WorldTransform) BonePose {
	bp := BonePose{
		Name:        b.name,
		Position:    wt.Position,
		Rotation:    wt.Rotation,
		Scale:       wt.Scale,
		ZOrder:      b.zOrder,
		Pivot:       b.pivot,
		DefaultSize: b.defaultSize,
		Image:       b.image,
		Visible:     b.Drawn(),
	}
	if b.parent != nil {
		bp.Parent = b.parent.name
	}
	return bp
}
