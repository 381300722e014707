package version

// Name is the service identifier used in logs, traces, and the version
// endpoint.
const Name = "ipac"

// Version is overridden at build time via -ldflags.
var Version = "dev"
