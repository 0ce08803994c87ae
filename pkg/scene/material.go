package scene

// Material is the shading state of one part. Color and Opacity are what is
// displayed; the Original fields are baselines recorded once at build time.
type Material struct {
	Color       Color
	Opacity     float64
	Specular    Color
	Shininess   float64
	DoubleSided bool

	// OriginalStepColor is the colour from the source document
	OriginalStepColor Color
	// OriginalColor is what unhighlight restores; colour randomisation
	// moves it, highlighting never does
	OriginalColor   Color
	OriginalOpacity float64

	baselined bool
}

// NewBasicMaterial creates the flat material a loader attaches to a mesh
func NewBasicMaterial(c Color) *Material {
	return &Material{Color: c, Opacity: 1, OriginalStepColor: c, OriginalColor: c, OriginalOpacity: 1}
}

// phongMaterial is the lit material every part receives when the scene is
// built, keeping the part's colour.
func phongMaterial(c Color) *Material {
	return &Material{
		Color:       c,
		Opacity:     0.8,
		Specular:    c,
		Shininess:   200,
		DoubleSided: true,
	}
}

// setBaseline records the original colour and opacity exactly once
func (m *Material) setBaseline() {
	if m.baselined {
		return
	}
	m.OriginalStepColor = m.Color
	m.OriginalColor = m.Color
	m.OriginalOpacity = m.Opacity
	m.baselined = true
}
