//go:build unix

package main

import "golang.org/x/sys/unix"

func privileged() bool {
	return unix.Geteuid() == 0
}
