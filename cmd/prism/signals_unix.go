//go:build unix

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// watchSignals forwards SIGHUP, SIGUSR1 and SIGUSR2 as controls until stop
// is called. Controls are dropped when the channel is full.
func watchSignals(out chan<- control) (stop func()) {
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGUSR2)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-sigs:
				c, ok := signalControl(sig)
				if !ok {
					continue
				}
				select {
				case out <- c:
				default:
				}
			}
		}
	}()
	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

func signalControl(sig os.Signal) (control, bool) {
	switch sig {
	case syscall.SIGHUP:
		return controlReload, true
	case syscall.SIGUSR1:
		return controlPause, true
	case syscall.SIGUSR2:
		return controlResume, true
	}
	return 0, false
}
