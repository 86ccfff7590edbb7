package mesh

// Print estimation constants for PLA on a typical 0.4mm-nozzle printer.
const (
	plaDensityGPerCm3 = 1.24
	printHoursPerCm3  = 0.15
	printMinimumHours = 0.5
)

// PrintEstimate is a rough material and time projection for slicing the
// mesh. The numbers are indicative, not slicer-accurate.
type PrintEstimate struct {
	VolumeMM3      float64
	MaterialGrams  float64
	PrintTimeHours float64
	LayerCount     int
}

// EstimatePrint projects material use and print time from the mesh volume
// and the configured layer height.
func (m *Mesh) EstimatePrint(layerHeight float64) PrintEstimate {
	est := PrintEstimate{VolumeMM3: m.Volume()}

	cm3 := est.VolumeMM3 / 1000
	est.MaterialGrams = cm3 * plaDensityGPerCm3

	est.PrintTimeHours = cm3 * printHoursPerCm3
	if est.PrintTimeHours < printMinimumHours {
		est.PrintTimeHours = printMinimumHours
	}

	if layerHeight > 0 {
		min, max := m.Bounds()
		est.LayerCount = int((max.Z - min.Z) / layerHeight)
	}
	return est
}
