package main

import "runtime/debug"

// buildVersion reports the module version embedded by the toolchain
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(devel)"
	}
	return info.Main.Version
}
