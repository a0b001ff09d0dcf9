// Package main provides the entry point for the video editor bridge.
package main

func main() {
	Execute()
}
