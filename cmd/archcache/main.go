// Command archcache inspects the archive cache in Redis.
//
//	archcache --config archcache.yaml kinds
//	archcache get user_profile user:2
//	archcache inspect user_profile:user:2 --json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
