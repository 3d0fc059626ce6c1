// Package perms provides file and directory permission constants for everything written by urlprobe.
package perms

import "os"

const (
	// RegularFile permissions for standard files (configuration, logs).
	// Mode 0644: owner read/write, group read, others read.
	RegularFile os.FileMode = 0o644

	// RegularDir permissions for generated directories (documentation).
	// Mode 0755: owner read/write/execute, group read/execute, others read/execute.
	RegularDir os.FileMode = 0o755
)
