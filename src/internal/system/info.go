package system

import (
	"fmt"
	"runtime"
)

// Info describes the running binary's platform.
type Info struct {
	OS        string
	Arch      string
	GoVersion string
	CPUs      int
}

func GetInfo() Info {
	return Info{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
		CPUs:      runtime.NumCPU(),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("OS: %s, Architecture: %s, Go Version: %s, CPUs: %d", i.OS, i.Arch, i.GoVersion, i.CPUs)
}
