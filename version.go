package rulecraft

// Version is overridden at build time with -ldflags "-X github.com/aretw0/rulecraft.Version=...".
var Version = "dev"
