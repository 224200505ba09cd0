package eurydice

// Version and BuildDate identify a release. Both are overridden at build
// time via -ldflags; the defaults mark a from-source build.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)
