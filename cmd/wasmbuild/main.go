// Command wasmbuild assembles WebAssembly modules from manifests and
// inspects or runs the result.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, styled(isTerminal(os.Stderr), errorStyle, "Error: ")+err.Error())
		os.Exit(1)
	}
}
