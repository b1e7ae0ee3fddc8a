package ward

// Version is the current ward release.
const Version = "0.1.0"
