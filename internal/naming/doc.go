// Package naming builds output paths for converted sequences and resolves
// collisions between sequences whose outputs would share a path.
//
// Collisions are compared case-insensitively: "Door_0.png" and "door_0.png"
// are distinct inputs on Linux but would overwrite each other's output on
// macOS or Windows, so the second claimant gets a " - dupN" suffix.
package naming
