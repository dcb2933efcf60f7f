package version

// AppVersion is overridden at build time via -ldflags "-X".
var AppVersion = "0.1.0-dev"
