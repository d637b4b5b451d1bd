package editor

import "errors"

var (
	// ErrSceneNotReady is returned by any command issued before Open or
	// after Close.
	ErrSceneNotReady = errors.New("scene not ready")

	// ErrExportFailed wraps every Export failure, including an export
	// attempted outside the Ready state.
	ErrExportFailed = errors.New("export failed")

	// ErrImageLoad reports a bitmap that could not be fetched or decoded.
	// Nothing is added to the scene.
	ErrImageLoad = errors.New("image load failed")

	// ErrObjectNotFound reports an id that names no object in the scene.
	ErrObjectNotFound = errors.New("object not found")
)
