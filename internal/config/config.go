package config

const (
	WindowWidth  = 1280
	WindowHeight = 720
	WindowTitle  = "Ambient Hero - S: snapshot, M: mount/unmount, F: stats, Esc/Q: quit"

	FrameRingSize = 120

	// Hero panel placement (logical pixels)
	PanelMargin    = 48
	PanelTop       = 80
	PanelMaxHeight = 580
	PanelRadius    = 28

	// Ambient renderer parameters
	ParticleCount       = 60
	ParticleMinRadius   = 40
	ParticleRadiusSpan  = 80
	ParticleMinSpeed    = 0.2
	ParticleSpeedSpan   = 0.6
	OrbitScaleX         = 3
	OrbitScaleY         = 1.2
	TimeStep            = 0.005
	MaxDevicePixelRatio = 2

	DotBaseRadius = 2
	DotRadiusMod  = 7
	DotBaseAlpha  = 0.06
	DotAlphaStep  = 0.01
	DotAlphaMod   = 5

	GradientInnerRadius = 50

	// Grain texture
	GrainSize          = 100
	GrainFrequency     = 0.65
	GrainOctaves       = 2
	GrainOpacity       = 0.5
	GrainOverlayAlpha  = 0.035
	GrainFallbackAlpha = 0.02

	// Runtime defaults
	DefaultTPS        = 60
	DefaultServeAddr  = "127.0.0.1:8080"
	DefaultServeFPS   = 30
	DefaultRenderOut  = "frames"
	DefaultFrames     = 120
	DefaultFrameEvery = 30
)
