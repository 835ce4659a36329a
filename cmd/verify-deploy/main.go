// Command verify-deploy waits for a freshly released app to report good to go.
//
//	verify-deploy ft-next-front-page --timeout 120000 --interval 5000
package main

import (
	"os"

	"nexttools/cmd"
)

func main() {
	os.Exit(cmd.Run(cmd.NewVerifyDeployCommand(), os.Args[1:]))
}
