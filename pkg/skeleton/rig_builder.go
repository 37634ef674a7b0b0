package skeleton

import "fmt"

// BoneDef describes one bone for RigBuilder.
type BoneDef struct {
	Name   string
	Parent string // empty attaches to the root

	X, Y     float64
	Rotation float64
	ScaleX   float64 // 0 means 1
	ScaleY   float64 // 0 means 1

	// Pivot is the normalized anchor; nil means center (0.5, 0.5).
	Pivot *Vec2

	ZOrder int
	Width  float64
	Height float64
	Hidden bool
	Image  string
}

// RigBuilder assembles a bone tree and turns it into a Skeleton whose rest
// pose is captured exactly once, at Build.
type RigBuilder struct {
	root  *Bone
	bones map[string]*Bone
	built bool
}

// NewRigBuilder starts a rig with an invisible root bone.
func NewRigBuilder(rootName string) *RigBuilder {
	root := NewBone(rootName)
	root.SetVisible(false)
	return &RigBuilder{
		root:  root,
		bones: map[string]*Bone{rootName: root},
	}
}

// Root returns the root bone, for adjusting it before Build.
func (rb *RigBuilder) Root() *Bone {
	return rb.root
}

// AddBone creates a bone from def under its parent. Parents must be added
// before their children.
func (rb *RigBuilder) AddBone(def BoneDef) (*Bone, error) {
	if rb.built {
		return nil, fmt.Errorf("add bone %q: rig already built", def.Name)
	}
	if _, dup := rb.bones[def.Name]; dup {
		return nil, fmt.Errorf("add bone %q: %w", def.Name, ErrDuplicateBone)
	}

	parent := rb.root
	if def.Parent != "" {
		p, ok := rb.bones[def.Parent]
		if !ok {
			return nil, fmt.Errorf("add bone %q under %q: %w", def.Name, def.Parent, ErrUnknownParent)
		}
		parent = p
	}

	b := NewBone(def.Name)
	b.SetLocalPosition(def.X, def.Y)
	b.SetRotation(def.Rotation)
	b.SetScale(orOne(def.ScaleX), orOne(def.ScaleY))
	if def.Pivot != nil {
		b.SetPivot(def.Pivot.X, def.Pivot.Y)
	}
	b.SetZOrder(def.ZOrder)
	b.SetDefaultSize(def.Width, def.Height)
	b.SetVisible(!def.Hidden)
	b.SetImage(def.Image)

	if err := parent.AddChild(b); err != nil {
		return nil, fmt.Errorf("add bone %q: %w", def.Name, err)
	}
	rb.bones[def.Name] = b
	return b, nil
}

// Build indexes the tree and captures the rest pose. The builder cannot be
// used afterwards.
func (rb *RigBuilder) Build() (*Skeleton, error) {
	if rb.built {
		return nil, fmt.Errorf("build rig %q: already built", rb.root.name)
	}
	if rb.root == nil {
		return nil, ErrEmptyRig
	}
	rb.built = true
	s := NewSkeleton(rb.root)
	s.StoreRestPose()
	return s, nil
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
