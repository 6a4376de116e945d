package math

func TransformCreate() Transform {
	t := Transform{}
	t.SetPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
	t.Local = NewMat4Identity()
	return t
}

func TransformFromPosition(position Vec3) Transform {
	t := Transform{}
	t.SetPositionRotationScale(position, NewQuatIdentity(), NewVec3One())
	t.Local = NewMat4Identity()
	return t
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) Transform {
	t := Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	t.Local = NewMat4Identity()
	return t
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
	t.IsDirty = true
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
	t.IsDirty = true
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.Rotation = rotation
	t.IsDirty = true
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = scale
	t.IsDirty = true
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.Position = position
	t.Rotation = rotation
	t.Scale = scale
	t.IsDirty = true
}

// GetLocal returns the local matrix, rebuilding it if position, rotation or
// scale changed since the last call. Row-vector convention: scale, then
// rotate, then translate.
func (t *Transform) GetLocal() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.IsDirty {
		m := t.Rotation.ToMat4()
		tr := m.Mul(NewMat4Translation(t.Position))
		s := NewMat4Scale(t.Scale)
		t.Local = s.Mul(tr)
		t.IsDirty = false
	}
	return t.Local
}

// GetWorld composes the local matrix with the world matrix of the parent.
func (t *Transform) GetWorld(parentWorld Mat4) Mat4 {
	l := t.GetLocal()
	return l.Mul(parentWorld)
}

// Equal reports whether position, rotation and scale are bit-identical.
func (t Transform) Equal(other Transform) bool {
	return t.Position == other.Position &&
		t.Rotation == other.Rotation &&
		t.Scale == other.Scale
}

// LerpTransform blends two transforms: position and scale component-wise,
// rotation along the shortest arc.
func LerpTransform(from, to Transform, factor float32) Transform {
	return TransformFromPositionRotationScale(
		from.Position.Lerp(to.Position, factor),
		from.Rotation.Slerp(to.Rotation, factor),
		from.Scale.Lerp(to.Scale, factor),
	)
}
