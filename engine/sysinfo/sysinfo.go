// Package sysinfo reports static host information for the status endpoint.
package sysinfo

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/eduniti/guidance/engine/types"
)

// Collect gathers a static environment snapshot. Fields that cannot be read
// on the current platform are left at their zero value.
func Collect() types.EnvironmentInfo {
	env := types.EnvironmentInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		GoVersion:    runtime.Version(),
		CPUCores:     runtime.NumCPU(),
	}

	if cpuInfo, err := cpu.Info(); err == nil && len(cpuInfo) > 0 {
		env.CPUModel = cpuInfo[0].ModelName
	}

	if memInfo, err := mem.VirtualMemory(); err == nil {
		env.TotalMemoryGB = float64(memInfo.Total) / 1024 / 1024 / 1024
	}

	return env
}
