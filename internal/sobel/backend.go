package sobel

import "strings"

// Backend identifies how the engine schedules row bands.
type Backend string

const (
	BackendSerial   Backend = "serial"
	BackendParallel Backend = "parallel"
)

// NormalizeBackend maps arbitrary user input to a canonical backend identifier.
func NormalizeBackend(name string) Backend {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "parallel", "par", "cpu":
		return BackendParallel
	case "serial", "single", "seq":
		return BackendSerial
	default:
		return Backend(name)
	}
}

// SupportedBackends returns the list of backends understood by NewEngine.
func SupportedBackends() []Backend {
	return []Backend{BackendSerial, BackendParallel}
}

func (b Backend) valid() bool {
	for _, s := range SupportedBackends() {
		if b == s {
			return true
		}
	}
	return false
}
