// Package httputil provides response helpers for the rsolver HTTP API.
//
// # Overview
//
// Handlers answer with JSON in one of two shapes:
//
//   - [WriteJSON]: a success body, any JSON-marshalable value
//   - [WriteError]: an [ErrorBody] carrying the machine-readable code of
//     a coded error from package errors
//
// The HTTP status of an error follows its code through [StatusFor], so the
// CLI's exit messages and the API's error responses stay consistent:
//
//	if err != nil {
//	    httputil.WriteError(w, r, err)
//	    return
//	}
//	httputil.WriteJSON(w, http.StatusOK, result)
//
// # Request IDs
//
// [RequestID] attaches a random UUID to every request, echoes it in the
// X-Request-ID header and makes it available through [RequestIDFrom].
// Error bodies include it so that clients can quote it in bug reports.
package httputil
