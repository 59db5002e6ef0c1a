package patch

import "errors"

// Container and task errors. Every violation is a programming or
// configuration error surfaced at the point of detection; none are
// transient and none are retried internally.
var (
	// ErrMissingFeature is returned when a selector names a (type, name)
	// key absent from the patch where presence is required.
	ErrMissingFeature = errors.New("feature not found in patch")
	// ErrDuplicateFeature is returned when an operation would overwrite an
	// existing destination key where overwrite is not permitted.
	ErrDuplicateFeature = errors.New("feature already exists")
	// ErrShapeMismatch is returned when a payload's rank or axis lengths
	// violate the feature type's requirements or an internal consistency
	// invariant (timestamp count vs. temporal axis length, concatenation
	// compatibility).
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrIndexOutOfRange is returned when a channel index exceeds a
	// payload's channel count.
	ErrIndexOutOfRange = errors.New("band index out of range")
	// ErrInvalidArgument is returned for structurally malformed task or
	// container configuration.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedOperation is returned when an operation requires an
	// explicit combining or mapping function but none was given and no
	// unambiguous default applies.
	ErrUnsupportedOperation = errors.New("operation requires an explicit function")
)

// Store lifecycle and configuration errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrBackendEmpty    = errors.New("backend must not be empty")
	ErrBackendUnknown  = errors.New("unknown backend")
	ErrPatchNotFound   = errors.New("patch not found")
	ErrInvalidID       = errors.New("invalid patch ID")
)
