// Package ipmi owns the sole interaction with the external ipmitool binary.
//
// It provides:
//   - The closed Action and PowerStatus enumerations
//   - Tool, which runs ipmitool against one endpoint with a bounded timeout
//   - ParsePowerStatus, which normalizes ipmitool's free-text status output
//   - ExecError, which classifies tool failures for server-side diagnostics
//
// ipmitool's output format is an un-versioned external contract; isolating
// both invocation and parsing here keeps the blast radius of a vocabulary
// change to this package and its test suite.
//
// # Security
//
// The argument vector handed to ipmitool contains the endpoint password.
// Nothing in this package logs arguments, and callers must not either.
package ipmi
