package vm

// DefaultMaxCycles bounds a Run call so a program that never executes HALT
// aborts instead of looping forever. Zero disables the limit.
const DefaultMaxCycles = 1_000_000
