// Command track-replay runs the IoU tracker over recorded detections and
// queries the confirmed tracks it persisted.
package main

func main() {
	Execute()
}
