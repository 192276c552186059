/*
Package streaming provides timeout-protected HTTP response writing.

A client that stops reading would otherwise block a handler, and with it
the conversion workspace that holds the file being sent, until TCP gives
up. Writer gives each write its own deadline on the connection through
http.ResponseController, so a stalled client fails the response within
WriteTimeout and the handler can clean up.

# Usage

Writer implements http.ResponseWriter, so it can sit underneath
http.ServeContent and keep Range and conditional request support:

	sw := streaming.NewWriter(r.Context(), w, streaming.DefaultConfig())
	http.ServeContent(sw, r, name, modTime, file)
	if err := sw.Finish(); err != nil {
		// the client did not receive the whole file
	}

# Errors

  - ErrWriteTimeout: a single write exceeded WriteTimeout
  - ErrClientGone: the request context was canceled
  - ErrMaxDuration: the response exceeded MaxDuration

After the first failure every later Write returns the same error, which
makes http.ServeContent stop copying.

Writers that do not support deadlines (httptest.ResponseRecorder, for
example) are written to without one.
*/
package streaming
