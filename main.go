// The main package for the placesync executable.
package main

import "github.com/placepulse/placesync/cmd"

func main() {
	cmd.Execute()
}
