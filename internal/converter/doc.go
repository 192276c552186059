// Package converter is the per-request conversion service.
//
// A call to Service.Convert moves through the states Received, Validated,
// PlanBuilt, Executing and Completed. Validation failures (no file, unknown
// format) are returned before any workspace exists. Once a workspace has
// been allocated it is released on every path out, including errors from
// the delivery callback and panics.
package converter
