package skeleton

import "errors"

var (
	ErrNilBone       = errors.New("bone is nil")
	ErrBoneHasParent = errors.New("bone already has a parent")
	ErrBoneCycle     = errors.New("bone would become its own ancestor")
	ErrDuplicateBone = errors.New("duplicate bone name")
	ErrUnknownParent = errors.New("unknown parent bone")
	ErrEmptyRig      = errors.New("rig has no root bone")
)
