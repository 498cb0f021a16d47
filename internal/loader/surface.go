package loader

const (
	DisableZoomScript   = "var meta = document.createElement('meta'); meta.name = 'viewport'; meta.content = 'width=device-width, initial-scale=1.0, maximum-scale=1.0, user-scalable=no'; document.getElementsByTagName('head')[0].appendChild(meta);"
	ResetScrollScript   = "window.scrollTo(0, 0);"
	RevealFocusedScript = "var focusedElement = document.activeElement; focusedElement.scrollIntoView({behavior: 'smooth'});"
)

type SurfaceOptions struct {
	ScriptsOpenWindows bool
	ScrollEnabled      bool
	BouncesZoom        bool
	MinZoomScale       float64
	MaxZoomScale       float64
}

// DefaultSurfaceOptions pins zoom at 1.0 and keeps scripts from opening
// windows on their own.
func DefaultSurfaceOptions() SurfaceOptions {
	return SurfaceOptions{
		ScriptsOpenWindows: false,
		ScrollEnabled:      true,
		BouncesZoom:        false,
		MinZoomScale:       1.0,
		MaxZoomScale:       1.0,
	}
}
