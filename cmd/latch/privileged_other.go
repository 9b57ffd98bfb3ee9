//go:build !unix

package main

func privileged() bool {
	return false
}
