package answer

type OptimizationMode string

const (
	OptimizeSpeed    OptimizationMode = "speed"
	OptimizeBalanced OptimizationMode = "balanced"
	OptimizeQuality  OptimizationMode = "quality"
)

// ParseOptimization maps a client value to a mode. Unknown and empty values
// fall back to balanced. Quality is not implemented yet and runs as balanced.
func ParseOptimization(s string) OptimizationMode {
	switch OptimizationMode(s) {
	case OptimizeSpeed:
		return OptimizeSpeed
	default:
		return OptimizeBalanced
	}
}
