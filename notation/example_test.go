// SPDX-License-Identifier: EPL-2.0

package notation_test

import (
	"fmt"
	"log"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/keyfind"
	"github.com/Stepan-Kasyanenko/keyfinder-cli/notation"
)

func ExampleLookup() {
	table, err := notation.Lookup("camelot")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(table.Label(keyfind.KeyAMinor))
	fmt.Println(table.Label(keyfind.KeyCMajor))
	// Output:
	// 8A
	// 8B
}
