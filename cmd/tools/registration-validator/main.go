// registration-validator checks a step-registration manifest before it is
// shipped with a deployment.
package main

import (
	"flag"
	"fmt"
	"os"

	"crm-handlers/pkg/registry"
)

func main() {
	path := flag.String("file", "configs/registrations.json", "path to the registrations manifest")
	flag.Parse()

	reg, err := registry.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *path, err)
		os.Exit(1)
	}

	if err := reg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid manifest %s: %v\n", *path, err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d step(s) valid (version %s)\n", *path, len(reg.Steps), reg.Version)
}
