package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/phazer/pkg/errors"
	"github.com/arthur-debert/phazer/pkg/ui/styles"
)

func main() {
	if err := Execute(); err != nil {
		errorStyle := styles.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))

		// Usage mistakes exit 2, everything else exits 1.
		if errors.GetErrorCode(err) == errors.ErrInvalidInput {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
