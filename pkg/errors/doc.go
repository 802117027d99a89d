// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeTimeout,
//	    "failed to collect interface status",
//	    ctx.Err(),
//	    map[string]interface{}{
//	        "device": dev.ID,
//	        "query":  "interfaces",
//	    },
//	)
package errors
