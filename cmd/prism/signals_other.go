//go:build !unix

package main

// watchSignals is a no-op where SIGHUP and SIGUSR1/2 do not exist; use the
// keyboard controls instead.
func watchSignals(out chan<- control) (stop func()) {
	return func() {}
}
