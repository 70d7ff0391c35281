package spatial

import "github.com/go-gl/mathgl/mgl64"

// Transform is a node in the scene hierarchy. The pose is stored relative to
// the parent; world pose accessors walk up the chain.
type Transform struct {
	name     string
	parent   *Transform
	children []*Transform
	localPos Vec3
	localRot Quat
}

func NewTransform(name string) *Transform {
	return &Transform{name: name, localRot: mgl64.QuatIdent()}
}

func (t *Transform) Name() string { return t.name }

func (t *Transform) Parent() *Transform { return t.parent }

func (t *Transform) Children() []*Transform {
	out := make([]*Transform, len(t.children))
	copy(out, t.children)
	return out
}

func (t *Transform) LocalPosition() Vec3 { return t.localPos }

func (t *Transform) SetLocalPosition(p Vec3) { t.localPos = p }

func (t *Transform) LocalRotation() Quat { return t.localRot }

func (t *Transform) SetLocalRotation(q Quat) { t.localRot = q.Normalize() }

func (t *Transform) Position() Vec3 {
	if t.parent == nil {
		return t.localPos
	}
	return t.parent.Position().Add(t.parent.Rotation().Rotate(t.localPos))
}

func (t *Transform) Rotation() Quat {
	if t.parent == nil {
		return t.localRot
	}
	return t.parent.Rotation().Mul(t.localRot).Normalize()
}

func (t *Transform) SetPosition(p Vec3) {
	if t.parent == nil {
		t.localPos = p
		return
	}
	t.localPos = t.parent.Rotation().Inverse().Rotate(p.Sub(t.parent.Position()))
}

func (t *Transform) SetRotation(q Quat) {
	if t.parent == nil {
		t.localRot = q.Normalize()
		return
	}
	t.localRot = t.parent.Rotation().Inverse().Mul(q).Normalize()
}

// Translate moves the node by a world-space offset.
func (t *Transform) Translate(d Vec3) {
	t.SetPosition(t.Position().Add(d))
}

// Forward is the world-space +Z axis of the node.
func (t *Transform) Forward() Vec3 {
	return t.Rotation().Rotate(Forward)
}

// TransformPoint maps a point from local space to world space.
func (t *Transform) TransformPoint(local Vec3) Vec3 {
	return t.Position().Add(t.Rotation().Rotate(local))
}

// IsAncestorOf reports whether t is o or one of o's parents.
func (t *Transform) IsAncestorOf(o *Transform) bool {
	for n := o; n != nil; n = n.parent {
		if n == t {
			return true
		}
	}
	return false
}

// SetParent moves t under p while keeping its world pose. A nil parent
// detaches t to the root. Reparenting under one of t's own descendants is
// refused.
func (t *Transform) SetParent(p *Transform) bool {
	if p == t.parent {
		return true
	}
	if p != nil && t.IsAncestorOf(p) {
		return false
	}

	pos, rot := t.Position(), t.Rotation()

	if t.parent != nil {
		t.parent.removeChild(t)
	}
	t.parent = p
	if p != nil {
		p.children = append(p.children, t)
	}

	t.SetPosition(pos)
	t.SetRotation(rot)
	return true
}

func (t *Transform) removeChild(c *Transform) {
	for i, child := range t.children {
		if child == c {
			t.children = append(t.children[:i], t.children[i+1:]...)
			return
		}
	}
}
